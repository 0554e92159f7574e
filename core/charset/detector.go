package charset

import (
	"github.com/h2non/filetype"

	"github.com/GenesisAN/gbk2utf8/config"
)

// Label 检测结论
type Label string

const (
	LabelUTF8  Label = "utf8"
	LabelGBK   Label = "gbk"
	LabelOther Label = "other"
)

const (
	// rejectConfidence 启发式策略判定为非 GBK 时给出的固定低置信度
	rejectConfidence = 0.1
	// uncertainConfidence 统计猜测器不确定时的置信度
	uncertainConfidence = 0.5
)

// Verdict 单个文件的编码检测结果，生成后不再修改
type Verdict struct {
	Label      Label
	Confidence float64

	// ChineseCount 与 MaxRun 来自同一次 GBK 字节对扫描；合法 UTF-8 内容不做扫描，二者为 0
	ChineseCount int
	MaxRun       int

	// Charset 统计猜测器给出的原始字符集名称，仅用于展示
	Charset string
	// UTF8Chinese 合法 UTF-8 内容中的中文字符数，仅用于展示
	UTF8Chinese int
	// Binary 识别出的二进制格式 MIME 类型
	Binary string
}

// HasGBKEvidence 判断结论虽非 gbk，但内容中存在 GBK 迹象（数量或置信度不足）
func (v Verdict) HasGBKEvidence() bool {
	if v.Label != LabelOther || v.Binary != "" {
		return false
	}
	if v.Charset != "" {
		return NormalizeName(v.Charset) == string(LabelGBK)
	}
	return v.ChineseCount > 0
}

// Detector 编码检测器，启发式与统计两种策略共用同一入口
type Detector struct {
	cfg     config.DetectionConfig
	guesser Guesser
}

// NewDetector 创建检测器；统计策略下 guesser 为空时使用 chardet
func NewDetector(cfg config.DetectionConfig, guesser Guesser) *Detector {
	if guesser == nil && cfg.Strategy == config.StrategyStatistical {
		guesser = NewChardetGuesser()
	}
	return &Detector{cfg: cfg, guesser: guesser}
}

// Detect 检测字节内容的编码
func (d *Detector) Detect(data []byte) Verdict {
	// 合法 UTF-8 直接返回，不做任何 GBK 扫描
	if IsValidUTF8(data) {
		return Verdict{
			Label:       LabelUTF8,
			Confidence:  1.0,
			UTF8Chinese: CountChineseUTF8(data),
		}
	}

	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return Verdict{
			Label:  LabelOther,
			Binary: kind.MIME.Value,
		}
	}

	v := Verdict{
		ChineseCount: CountGBKPairs(data),
		MaxRun:       MaxConsecutiveGBKPairs(data),
	}

	switch d.cfg.Strategy {
	case config.StrategyStatistical:
		d.guess(data, &v)
	default:
		if v.ChineseCount >= d.cfg.MinTotalCount && v.MaxRun >= d.cfg.MinConsecutiveRun {
			v.Label = LabelGBK
			v.Confidence = 1.0
		} else {
			v.Label = LabelOther
			v.Confidence = rejectConfidence
		}
	}

	return v
}

// guess 使用统计猜测器补全结论
func (d *Detector) guess(data []byte, v *Verdict) {
	v.Label = LabelOther
	name, confident, err := d.guesser.Guess(data, d.cfg.LocaleHint)
	if err != nil {
		return
	}

	v.Charset = name
	v.Confidence = uncertainConfidence
	if confident {
		v.Confidence = 1.0
	}

	if NormalizeName(name) == string(LabelGBK) && v.Confidence >= d.cfg.MinConfidence {
		v.Label = LabelGBK
	}
}
