package converter

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrorKind 转换失败的类别
type ErrorKind string

const (
	// 读写文件失败
	KindIO ErrorKind = "io"
	// GBK 严格解码失败
	KindDecode ErrorKind = "decode"
	// 备份失败，原文件未被改动
	KindBackup ErrorKind = "backup"
)

// ErrDecodeFailure 内容通过了检测但无法按 GBK 严格解码
var ErrDecodeFailure = errors.New("GBK 解码失败")

// ConversionError 单个文件处理失败的错误
type ConversionError struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

// Error 实现error接口
func (ce *ConversionError) Error() string {
	var builder strings.Builder
	builder.WriteString("[")
	builder.WriteString(string(ce.Kind))
	builder.WriteString("] ")
	builder.WriteString(ce.Op)
	if ce.Err != nil {
		builder.WriteString(": ")
		builder.WriteString(ce.Err.Error())
	}
	return builder.String()
}

// Unwrap 支持错误链
func (ce *ConversionError) Unwrap() error {
	return ce.Err
}

// newError 创建转换错误
func newError(kind ErrorKind, op, path string, err error) *ConversionError {
	return &ConversionError{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf 返回错误链中的错误类别，非 ConversionError 时返回空字符串
func KindOf(err error) ErrorKind {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// logError 记录错误日志
func logError(logger *zap.Logger, err *ConversionError) {
	logger.Warn("文件处理失败",
		zap.String("path", err.Path),
		zap.String("kind", string(err.Kind)),
		zap.String("operation", err.Op),
		zap.Error(err.Err),
	)
}
