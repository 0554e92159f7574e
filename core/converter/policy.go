package converter

import (
	"os"

	"go.uber.org/zap"

	"github.com/GenesisAN/gbk2utf8/config"
	"github.com/GenesisAN/gbk2utf8/core/charset"
)

// FileState 单个文件的最终状态
type FileState string

const (
	StateSkipped     FileState = "skipped"
	StateConvertible FileState = "convertible"
	StateConverted   FileState = "converted"
	StateFailed      FileState = "failed"
)

// SkipReason 跳过原因
type SkipReason string

const (
	ReasonNone         SkipReason = ""
	ReasonUTF8         SkipReason = "utf8"
	ReasonBinary       SkipReason = "binary"
	ReasonInsufficient SkipReason = "insufficient"
	ReasonNotGBK       SkipReason = "not-gbk"
)

// FileResult 单个文件的处理结果
type FileResult struct {
	Path       string
	State      FileState
	Reason     SkipReason
	Verdict    charset.Verdict
	BackupPath string
	Err        error
}

// Policy 单文件处理策略：检测、套用阈值、决定扫描或转换
type Policy struct {
	detection config.DetectionConfig
	scanOnly  bool
	detector  *charset.Detector
	engine    *Engine
	logger    *zap.Logger
}

// NewPolicy 创建处理策略
func NewPolicy(cfg *config.Config, detector *charset.Detector, logger *zap.Logger) *Policy {
	return &Policy{
		detection: cfg.Detection,
		scanOnly:  cfg.Conversion.ScanOnly,
		detector:  detector,
		engine:    NewEngine(cfg.Conversion, logger),
		logger:    logger.Named("policy"),
	}
}

// Qualifies 判断 gbk 结论是否满足当前策略定义的阈值
func (p *Policy) Qualifies(v charset.Verdict) bool {
	if v.Label != charset.LabelGBK {
		return false
	}
	if v.Confidence < p.detection.MinConfidence {
		return false
	}
	if p.detection.Strategy == config.StrategyHeuristic {
		return v.ChineseCount >= p.detection.MinTotalCount &&
			v.MaxRun >= p.detection.MinConsecutiveRun
	}
	return true
}

// Handle 处理单个文件
func (p *Policy) Handle(path string) FileResult {
	result := FileResult{Path: path}

	verdict, err := p.detect(path)
	if err != nil {
		cerr := newError(KindIO, "读取文件", path, err)
		logError(p.logger, cerr)
		result.State = StateFailed
		result.Err = cerr
		return result
	}
	result.Verdict = verdict

	p.logger.Debug("检测完成",
		zap.String("path", path),
		zap.String("label", string(verdict.Label)),
		zap.Float64("confidence", verdict.Confidence),
		zap.Int("chinese_count", verdict.ChineseCount),
		zap.Int("max_run", verdict.MaxRun),
	)

	switch {
	case verdict.Label == charset.LabelUTF8:
		return skip(result, ReasonUTF8)
	case verdict.Binary != "":
		return skip(result, ReasonBinary)
	case verdict.Label != charset.LabelGBK:
		if verdict.HasGBKEvidence() {
			return skip(result, ReasonInsufficient)
		}
		return skip(result, ReasonNotGBK)
	case !p.Qualifies(verdict):
		return skip(result, ReasonInsufficient)
	}

	if p.scanOnly {
		result.State = StateConvertible
		return result
	}

	outcome := p.engine.Convert(path)
	result.BackupPath = outcome.BackupPath
	if !outcome.Success {
		result.State = StateFailed
		result.Err = outcome.Err
		return result
	}
	result.State = StateConverted
	return result
}

// detect 读取文件并检测，缓冲区在返回后即可回收
func (p *Policy) detect(path string) (charset.Verdict, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return charset.Verdict{}, err
	}
	return p.detector.Detect(content), nil
}

func skip(result FileResult, reason SkipReason) FileResult {
	result.State = StateSkipped
	result.Reason = reason
	return result
}
