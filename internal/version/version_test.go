package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullVersionInfo(t *testing.T) {
	SetBuildInfo("2024-01-02T03:04:05Z", "abc123")
	t.Cleanup(func() { SetBuildInfo("unknown", "unknown") })

	info := GetFullVersionInfo()
	assert.Contains(t, info, VersionWithPrefix)
	assert.Contains(t, info, "2024-01-02T03:04:05Z")
	assert.Contains(t, info, "abc123")
	assert.Contains(t, info, runtime.Version())
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}
