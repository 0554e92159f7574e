package config

import "github.com/spf13/viper"

// 默认值
const (
	DefaultDir               = "./"
	DefaultMinConfidence     = 0.8
	DefaultMinTotalCount     = 4
	DefaultMinConsecutiveRun = 2
	DefaultLocaleHint        = "cn"
	DefaultLogLevel          = "error"
)

// DefaultExtensions 默认处理的扩展名
var DefaultExtensions = []string{"c", "h"}

// setDefaults 设置所有默认配置值
func setDefaults(v *viper.Viper) {
	setScanDefaults(v)
	setDetectionDefaults(v)
	setConversionDefaults(v)

	v.SetDefault("output.verbose", false)
	v.SetDefault("output.no_color", false)
	v.SetDefault("output.pause", false)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.enable_file", false)
	v.SetDefault("logging.log_dir", "")

	v.SetDefault("journal.path", "")
}

func setScanDefaults(v *viper.Viper) {
	v.SetDefault("scan.dir", DefaultDir)
	v.SetDefault("scan.extensions", DefaultExtensions)
}

// setDetectionDefaults 阈值默认值偏严格，避免零星字节巧合被当作 GBK
func setDetectionDefaults(v *viper.Viper) {
	v.SetDefault("detection.strategy", StrategyHeuristic)
	v.SetDefault("detection.min_confidence", DefaultMinConfidence)
	v.SetDefault("detection.min_total_count", DefaultMinTotalCount)
	v.SetDefault("detection.min_consecutive_run", DefaultMinConsecutiveRun)
	v.SetDefault("detection.locale_hint", DefaultLocaleHint)
}

func setConversionDefaults(v *viper.Viper) {
	v.SetDefault("conversion.scan_only", false)
	v.SetDefault("conversion.backup", false)
	v.SetDefault("conversion.confirm", false)
}
