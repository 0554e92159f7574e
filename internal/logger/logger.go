package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GenesisAN/gbk2utf8/config"
)

// DefaultLogDir 未配置目录时的日志位置
const DefaultLogDir = "./logs"

// LoggerConfig 日志配置
type LoggerConfig struct {
	Verbose    bool
	EnableFile bool
	LogLevel   zapcore.Level
	LogDir     string
	Component  string
}

// DefaultLoggerConfig 默认日志配置
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Verbose:    false,
		EnableFile: false,
		LogLevel:   zapcore.ErrorLevel,
		LogDir:     DefaultLogDir,
		Component:  "gbk2utf8",
	}
}

// FromConfig 由应用配置生成日志配置
func FromConfig(cfg *config.Config) (*LoggerConfig, error) {
	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Logging.Level, err)
	}

	lc := DefaultLoggerConfig()
	lc.Verbose = cfg.Output.Verbose
	lc.EnableFile = cfg.Logging.EnableFile
	lc.LogLevel = level
	if cfg.Logging.LogDir != "" {
		lc.LogDir = cfg.Logging.LogDir
	}
	return lc, nil
}

// NewLogger 创建新的日志实例
func NewLogger(verbose bool) (*zap.Logger, error) {
	config := DefaultLoggerConfig()
	config.Verbose = verbose
	return NewLoggerWithConfig(config)
}

// NewLoggerWithConfig 使用配置创建日志实例
func NewLoggerWithConfig(config *LoggerConfig) (*zap.Logger, error) {
	// 控制台默认只显示 ERROR，verbose 时放开到 DEBUG
	consoleLevel := config.LogLevel
	if config.Verbose && consoleLevel > zapcore.DebugLevel {
		consoleLevel = zapcore.DebugLevel
	}

	consoleConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    colorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(os.Stderr), consoleLevel),
	}

	if config.EnableFile {
		fileConfig := zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}

		logFile, err := logFilePath(config)
		if err != nil {
			return nil, err
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}

		// 文件记录所有级别
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), zapcore.AddSync(file), zapcore.DebugLevel))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// colorLevelEncoder 彩色级别编码器
func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var coloredLevel string
	switch level {
	case zapcore.DebugLevel:
		coloredLevel = color.CyanString("[DEBUG]")
	case zapcore.InfoLevel:
		coloredLevel = color.GreenString("[INFO] ")
	case zapcore.WarnLevel:
		coloredLevel = color.YellowString("[WARN] ")
	case zapcore.ErrorLevel:
		coloredLevel = color.RedString("[ERROR]")
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		coloredLevel = color.MagentaString("[" + level.CapitalString() + "]")
	case zapcore.FatalLevel:
		coloredLevel = color.RedString("[FATAL]")
	default:
		coloredLevel = level.CapitalString()
	}
	enc.AppendString(coloredLevel)
}

// logFilePath 生成按日期命名的日志文件路径
func logFilePath(config *LoggerConfig) (string, error) {
	logDir := config.LogDir
	if logDir == "" {
		logDir = DefaultLogDir
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("创建日志目录失败: %w", err)
	}

	component := config.Component
	if component == "" {
		component = "gbk2utf8"
	}
	return filepath.Join(logDir, component+"_"+time.Now().Format("20060102")+".log"), nil
}
