package converter

import (
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/GenesisAN/gbk2utf8/config"
	"github.com/GenesisAN/gbk2utf8/core/charset"
)

// BackupSuffix 备份文件后缀，追加在原扩展名之后：foo.c -> foo.c.bak
const BackupSuffix = ".bak"

// Outcome 单次转换的结果
type Outcome struct {
	Success    bool
	BackupPath string
	Err        error
}

// Engine GBK 到 UTF-8 的转换引擎
type Engine struct {
	backup bool
	ops    *AtomicFileOperations
	logger *zap.Logger
}

// NewEngine 创建转换引擎
func NewEngine(cfg config.ConversionConfig, logger *zap.Logger) *Engine {
	logger = logger.Named("engine")
	return &Engine{
		backup: cfg.Backup,
		ops:    NewAtomicFileOperations(logger),
		logger: logger,
	}
}

// BackupPath 返回文件对应的备份路径
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Convert 将 GBK 文件就地转换为 UTF-8
//
// 顺序固定为：读取 → 严格解码 → 备份 → 原子覆盖。
// 解码或备份失败时不会写入原文件。
func (e *Engine) Convert(path string) Outcome {
	info, err := os.Stat(path)
	if err != nil {
		return e.fail(newError(KindIO, "读取文件信息", path, err))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return e.fail(newError(KindIO, "读取文件", path, err))
	}

	decoded, err := charset.DecodeGBK(content)
	if err != nil {
		if errors.Is(err, charset.ErrInvalidGBK) {
			err = ErrDecodeFailure
		}
		return e.fail(newError(KindDecode, "GBK 解码", path, err))
	}

	var outcome Outcome
	if e.backup {
		backupPath := BackupPath(path)
		if err := e.ops.Copy(path, backupPath); err != nil {
			return e.fail(newError(KindBackup, "备份原文件", path, err))
		}
		outcome.BackupPath = backupPath
		e.logger.Debug("已备份", zap.String("path", path), zap.String("backup", backupPath))
	}

	if err := e.ops.Replace(path, decoded, info.Mode().Perm()); err != nil {
		failed := e.fail(newError(KindIO, "写入 UTF-8 内容", path, err))
		failed.BackupPath = outcome.BackupPath
		return failed
	}

	outcome.Success = true
	e.logger.Debug("转换完成", zap.String("path", path), zap.Int("bytes", len(decoded)))
	return outcome
}

func (e *Engine) fail(err *ConversionError) Outcome {
	logError(e.logger, err)
	return Outcome{Err: err}
}
