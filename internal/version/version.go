package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version 信息统一管理
const (
	// Version 完整版本号（不带v前缀）
	Version = "1.2.0"
	// VersionWithPrefix 带v前缀的版本号
	VersionWithPrefix = "v" + Version
)

// BuildInfo 构建信息
var (
	// BuildTime 构建时间（通过ldflags设置）
	BuildTime = "unknown"
	// GitCommit Git提交哈希（通过ldflags设置）
	GitCommit = "unknown"
)

// GetBuildTime 获取构建时间
func GetBuildTime() string {
	return BuildTime
}

// GetGitCommit 获取Git提交哈希，未通过 ldflags 设置时尝试读取 vcs 信息
func GetGitCommit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	return GitCommit
}

// Target 构建目标平台
func Target() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// SetBuildInfo 设置构建信息（用于构建时通过ldflags设置）
func SetBuildInfo(buildTime, gitCommit string) {
	BuildTime = buildTime
	GitCommit = gitCommit
}

// GetFullVersionInfo 获取完整版本信息
func GetFullVersionInfo() string {
	return fmt.Sprintf("版本 %s，编译于 [%s]，提交 %s，由 %s 构建（目标: %s）",
		VersionWithPrefix, GetBuildTime(), GetGitCommit(), runtime.Version(), Target())
}
