package converter

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// AtomicFileOperations 基于临时文件加重命名的原子写入
type AtomicFileOperations struct {
	logger *zap.Logger
}

// NewAtomicFileOperations 创建原子操作实例
func NewAtomicFileOperations(logger *zap.Logger) *AtomicFileOperations {
	return &AtomicFileOperations{logger: logger}
}

// Replace 原子替换文件内容
// 步骤1: 在同一目录创建临时文件
// 步骤2: 写入新内容并同步到磁盘
// 步骤3: 恢复原文件权限
// 步骤4: 重命名覆盖目标文件
// 步骤5: 同步包含目录
// 任一步骤失败时目标文件保持不变。
func (afo *AtomicFileOperations) Replace(path string, content []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tempPath := tempFile.Name()

	closed, renamed := false, false
	defer func() {
		if renamed {
			return
		}
		if !closed {
			if err := tempFile.Close(); err != nil {
				afo.logger.Debug("清理临时文件时关闭失败", zap.String("temp_path", tempPath), zap.Error(err))
			}
		}
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			afo.logger.Warn("清理临时文件时删除失败", zap.String("temp_path", tempPath), zap.Error(err))
		}
	}()

	if _, err := tempFile.Write(content); err != nil {
		return err
	}
	if err := tempFile.Sync(); err != nil {
		return err
	}
	closed = true
	if err := tempFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		return err
	}
	renamed = true

	if err := syncDir(dir); err != nil {
		afo.logger.Debug("无法同步目录", zap.String("directory", dir), zap.Error(err))
	}
	return nil
}

// Copy 复制文件并同步到磁盘，目标已存在时覆盖
func (afo *AtomicFileOperations) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// syncDir 同步目录到磁盘
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Sync()
}
