package converter

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GenesisAN/gbk2utf8/config"
	"github.com/GenesisAN/gbk2utf8/core/charset"
)

const sampleSource = "#include <stdio.h>\n// 你好世界\nint main() { return 0; }\n"

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	data, err := charset.EncodeGBK([]byte(s))
	require.NoError(t, err)
	return data
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func newTestEngine(t *testing.T, backup bool) *Engine {
	return NewEngine(config.ConversionConfig{Backup: backup}, zaptest.NewLogger(t))
}

// TestEngineConvertRoundTrip 转换后内容等于原始文本
func TestEngineConvertRoundTrip(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.c", gbk(t, sampleSource))

	outcome := newTestEngine(t, false).Convert(path)
	require.True(t, outcome.Success, "%v", outcome.Err)
	assert.Empty(t, outcome.BackupPath)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleSource, string(got))
	assert.NoFileExists(t, path+BackupSuffix)
}

// TestEngineBackup 备份文件与原始字节完全一致
func TestEngineBackup(t *testing.T) {
	original := gbk(t, sampleSource)
	path := writeFile(t, t.TempDir(), "a.c", original)

	outcome := newTestEngine(t, true).Convert(path)
	require.True(t, outcome.Success, "%v", outcome.Err)
	assert.Equal(t, path+".bak", outcome.BackupPath)

	backup, err := os.ReadFile(outcome.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, original, backup)
}

// TestEngineDecodeFailureLeavesFile 解码失败时原文件与备份均不产生变化
func TestEngineDecodeFailureLeavesFile(t *testing.T) {
	original := append(gbk(t, sampleSource), 0xFF)
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.c", original)

	outcome := newTestEngine(t, true).Convert(path)
	require.False(t, outcome.Success)
	assert.ErrorIs(t, outcome.Err, ErrDecodeFailure)
	assert.Equal(t, KindDecode, KindOf(outcome.Err))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, got)
	assert.NoFileExists(t, path+BackupSuffix)

	// 不残留临时文件
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// TestEngineBackupFailure 备份失败时中止转换，原文件保持不变
func TestEngineBackupFailure(t *testing.T) {
	original := gbk(t, sampleSource)
	path := writeFile(t, t.TempDir(), "a.c", original)
	require.NoError(t, os.Mkdir(path+BackupSuffix, 0755))

	outcome := newTestEngine(t, true).Convert(path)
	require.False(t, outcome.Success)
	assert.Equal(t, KindBackup, KindOf(outcome.Err))
	assert.Empty(t, outcome.BackupPath)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestEngineMissingFile(t *testing.T) {
	outcome := newTestEngine(t, false).Convert(filepath.Join(t.TempDir(), "missing.c"))
	require.False(t, outcome.Success)
	assert.Equal(t, KindIO, KindOf(outcome.Err))
	assert.True(t, errors.Is(outcome.Err, os.ErrNotExist))
}

func TestEnginePreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("文件权限位在 Windows 上不适用")
	}
	path := writeFile(t, t.TempDir(), "a.c", gbk(t, sampleSource))
	require.NoError(t, os.Chmod(path, 0640))

	outcome := newTestEngine(t, false).Convert(path)
	require.True(t, outcome.Success, "%v", outcome.Err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestConversionErrorMessage(t *testing.T) {
	err := newError(KindBackup, "备份原文件", "/tmp/a.c", errors.New("disk full"))
	assert.Equal(t, "[backup] 备份原文件: disk full", err.Error())
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}
