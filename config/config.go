package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// 检测策略
const (
	StrategyHeuristic   = "heuristic"
	StrategyStatistical = "statistical"
)

// Config 应用配置结构，一次运行内不可变
type Config struct {
	// 扫描设置
	Scan ScanConfig `mapstructure:"scan" toml:"scan"`

	// 编码检测设置
	Detection DetectionConfig `mapstructure:"detection" toml:"detection"`

	// 转换设置
	Conversion ConversionConfig `mapstructure:"conversion" toml:"conversion"`

	// 输出设置
	Output OutputConfig `mapstructure:"output" toml:"output"`

	// 日志设置
	Logging LoggingConfig `mapstructure:"logging" toml:"logging"`

	// 运行记录设置
	Journal JournalConfig `mapstructure:"journal" toml:"journal"`
}

// ScanConfig 扫描配置
type ScanConfig struct {
	// 要扫描的目录，递归处理
	Dir string `mapstructure:"dir" toml:"dir"`

	// 要处理的扩展名，不区分大小写，不带点
	Extensions []string `mapstructure:"extensions" toml:"extensions"`
}

// DetectionConfig 编码检测配置
type DetectionConfig struct {
	// heuristic 或 statistical
	Strategy string `mapstructure:"strategy" toml:"strategy"`

	// 最小置信度 [0,1]
	MinConfidence float64 `mapstructure:"min_confidence" toml:"min_confidence"`

	// GBK 汉字字节对的最小总数
	MinTotalCount int `mapstructure:"min_total_count" toml:"min_total_count"`

	// GBK 汉字字节对的最小连续数
	MinConsecutiveRun int `mapstructure:"min_consecutive_run" toml:"min_consecutive_run"`

	// 地区提示（cn、jp、kr...），用于统计猜测
	LocaleHint string `mapstructure:"locale_hint" toml:"locale_hint"`
}

// ConversionConfig 转换配置
type ConversionConfig struct {
	// 只扫描不转换
	ScanOnly bool `mapstructure:"scan_only" toml:"scan_only"`

	// 转换前备份为 .bak
	Backup bool `mapstructure:"backup" toml:"backup"`

	// 转换前交互确认
	Confirm bool `mapstructure:"confirm" toml:"confirm"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	// 显示每个文件的检测结果和置信度
	Verbose bool `mapstructure:"verbose" toml:"verbose"`

	// 禁用彩色输出
	NoColor bool `mapstructure:"no_color" toml:"no_color"`

	// 结束后等待回车再退出（双击运行时保留窗口）
	Pause bool `mapstructure:"pause" toml:"pause"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	// 日志级别 (debug, info, warn, error)
	Level string `mapstructure:"level" toml:"level"`

	// 是否启用文件日志
	EnableFile bool `mapstructure:"enable_file" toml:"enable_file"`

	// 日志目录
	LogDir string `mapstructure:"log_dir" toml:"log_dir"`
}

// JournalConfig 运行记录配置
type JournalConfig struct {
	// bbolt 数据库路径，为空时不记录
	Path string `mapstructure:"path" toml:"path"`
}

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	var builder strings.Builder
	builder.WriteString("配置验证失败 [")
	builder.WriteString(e.Field)
	builder.WriteString("]: ")
	builder.WriteString(e.Message)
	builder.WriteString(" (当前值: ")
	builder.WriteString(fmt.Sprint(e.Value))
	builder.WriteString(")")
	return builder.String()
}

// New 创建带默认值的 viper 实例，调用方可在 Load 前绑定命令行参数
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// Load 读取配置文件与环境变量并解析为 Config
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".gbk2utf8")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("GBK2UTF8")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	return decode(v)
}

// decode 将 viper 中的值解析、规范化并验证
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.Scan.Extensions = NormalizeExtensions(cfg.Scan.Extensions)
	cfg.Detection.Strategy = strings.ToLower(strings.TrimSpace(cfg.Detection.Strategy))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg, err := decode(New())
	if err != nil {
		panic(err)
	}
	return cfg
}

// NormalizeExtensions 统一扩展名格式：小写、去掉前导点和空白、去重
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, raw := range exts {
		for _, part := range strings.Split(raw, ",") {
			ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
			if ext == "" || seen[ext] {
				continue
			}
			seen[ext] = true
			out = append(out, ext)
		}
	}
	return out
}

// Validate 验证配置
func Validate(cfg *Config) error {
	if len(cfg.Scan.Extensions) == 0 {
		return &ValidationError{
			Field:   "scan.extensions",
			Value:   cfg.Scan.Extensions,
			Message: "至少需要一个扩展名",
		}
	}

	switch cfg.Detection.Strategy {
	case StrategyHeuristic, StrategyStatistical:
	default:
		return &ValidationError{
			Field:   "detection.strategy",
			Value:   cfg.Detection.Strategy,
			Message: "检测策略必须是 heuristic, statistical 之一",
		}
	}

	if cfg.Detection.MinConfidence < 0 || cfg.Detection.MinConfidence > 1 {
		return &ValidationError{
			Field:   "detection.min_confidence",
			Value:   cfg.Detection.MinConfidence,
			Message: "最小置信度必须在0-1之间",
		}
	}

	if cfg.Detection.MinTotalCount < 0 {
		return &ValidationError{
			Field:   "detection.min_total_count",
			Value:   cfg.Detection.MinTotalCount,
			Message: "最小汉字数不能为负数",
		}
	}

	if cfg.Detection.MinConsecutiveRun < 0 {
		return &ValidationError{
			Field:   "detection.min_consecutive_run",
			Value:   cfg.Detection.MinConsecutiveRun,
			Message: "最小连续汉字数不能为负数",
		}
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{
			Field:   "logging.level",
			Value:   cfg.Logging.Level,
			Message: "日志级别必须是 debug, info, warn, error 之一",
		}
	}

	return nil
}
