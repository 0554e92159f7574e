package converter

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/GenesisAN/gbk2utf8/core/charset"
)

// NormalizePath 展开 ~ 并转换为绝对路径
func NormalizePath(input string) (string, error) {
	path := strings.TrimSpace(input)
	if path == "" {
		path = "."
	}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(homeDir, path[1:])
	}

	return filepath.Abs(path)
}

// DisplayPath 返回便于显示的路径：尽量相对于 root，
// 文件名本身是 GBK 字节时解码后再显示
func DisplayPath(root, path string) string {
	shown := path
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			shown = rel
		}
	}
	return fixEncoding(shown)
}

// fixEncoding 修复非 UTF-8 的路径，失败时原样返回
func fixEncoding(path string) string {
	if utf8.ValidString(path) {
		return path
	}
	if decoded, err := charset.DecodeGBK([]byte(path)); err == nil {
		return string(decoded)
	}
	return strings.ToValidUTF8(path, "�")
}
