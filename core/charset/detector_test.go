package charset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GenesisAN/gbk2utf8/config"
)

// spyGuesser 记录调用次数并返回预设结果
type spyGuesser struct {
	calls     int
	hint      string
	name      string
	confident bool
	err       error
}

func (s *spyGuesser) Guess(data []byte, hint string) (string, bool, error) {
	s.calls++
	s.hint = hint
	return s.name, s.confident, s.err
}

func heuristicConfig() config.DetectionConfig {
	return config.Default().Detection
}

func statisticalConfig() config.DetectionConfig {
	cfg := config.Default().Detection
	cfg.Strategy = config.StrategyStatistical
	return cfg
}

// TestDetectUTF8ShortCircuit 合法 UTF-8 不做扫描，也不调用猜测器
func TestDetectUTF8ShortCircuit(t *testing.T) {
	spy := &spyGuesser{name: "GB18030", confident: true}
	d := NewDetector(statisticalConfig(), spy)

	v := d.Detect([]byte("// 你好世界\nint x;\n"))

	assert.Equal(t, LabelUTF8, v.Label)
	assert.Equal(t, 1.0, v.Confidence)
	assert.Equal(t, 0, v.ChineseCount)
	assert.Equal(t, 0, v.MaxRun)
	assert.Equal(t, 4, v.UTF8Chinese)
	assert.Zero(t, spy.calls)
}

func TestDetectEmptyIsUTF8(t *testing.T) {
	v := NewDetector(heuristicConfig(), nil).Detect(nil)
	assert.Equal(t, LabelUTF8, v.Label)
}

func TestDetectHeuristic(t *testing.T) {
	d := NewDetector(heuristicConfig(), nil)

	v := d.Detect(gbk(t, "// 你好世界\n"))
	assert.Equal(t, LabelGBK, v.Label)
	assert.Equal(t, 1.0, v.Confidence)
	assert.Equal(t, 4, v.ChineseCount)
	assert.Equal(t, 4, v.MaxRun)

	// 只有三个汉字，低于默认总数阈值
	v = d.Detect(gbk(t, "// 你好世\n"))
	assert.Equal(t, LabelOther, v.Label)
	assert.Equal(t, rejectConfidence, v.Confidence)
	assert.Equal(t, 3, v.ChineseCount)
	assert.True(t, v.HasGBKEvidence())

	// 总数足够但没有连续两个汉字
	v = d.Detect(gbk(t, "你a好b世c界"))
	assert.Equal(t, LabelOther, v.Label)
	assert.Equal(t, 4, v.ChineseCount)
	assert.Equal(t, 1, v.MaxRun)
}

func TestDetectBinary(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
	v := NewDetector(heuristicConfig(), nil).Detect(png)

	assert.Equal(t, LabelOther, v.Label)
	assert.Equal(t, "image/png", v.Binary)
	assert.False(t, v.HasGBKEvidence())
}

func TestDetectStatistical(t *testing.T) {
	data := gbk(t, "// 你好世界\n")

	t.Run("可信", func(t *testing.T) {
		spy := &spyGuesser{name: "GB-18030", confident: true}
		v := NewDetector(statisticalConfig(), spy).Detect(data)

		assert.Equal(t, LabelGBK, v.Label)
		assert.Equal(t, 1.0, v.Confidence)
		assert.Equal(t, "GB-18030", v.Charset)
		assert.Equal(t, 4, v.ChineseCount)
		assert.Equal(t, "cn", spy.hint)
	})

	t.Run("不可信", func(t *testing.T) {
		spy := &spyGuesser{name: "GB-18030", confident: false}
		v := NewDetector(statisticalConfig(), spy).Detect(data)

		assert.Equal(t, LabelOther, v.Label)
		assert.Equal(t, uncertainConfidence, v.Confidence)
		assert.True(t, v.HasGBKEvidence())
	})

	t.Run("不可信但阈值放宽", func(t *testing.T) {
		cfg := statisticalConfig()
		cfg.MinConfidence = 0.5
		spy := &spyGuesser{name: "GB2312", confident: false}
		v := NewDetector(cfg, spy).Detect(data)

		assert.Equal(t, LabelGBK, v.Label)
		assert.Equal(t, uncertainConfidence, v.Confidence)
	})

	t.Run("其他编码", func(t *testing.T) {
		spy := &spyGuesser{name: "Shift_JIS", confident: true}
		v := NewDetector(statisticalConfig(), spy).Detect(data)

		assert.Equal(t, LabelOther, v.Label)
		assert.Equal(t, "Shift_JIS", v.Charset)
		assert.False(t, v.HasGBKEvidence())
	})

	t.Run("猜测失败", func(t *testing.T) {
		spy := &spyGuesser{err: errors.New("boom")}
		v := NewDetector(statisticalConfig(), spy).Detect(data)

		assert.Equal(t, LabelOther, v.Label)
		assert.Zero(t, v.Confidence)
		assert.Empty(t, v.Charset)
	})
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"GB2312":    "gbk",
		"gbk":       "gbk",
		"GB-18030":  "gbk",
		"GB18030":   "gbk",
		"UTF-8":     "utf8",
		"utf8":      "utf8",
		"Shift_JIS": "shift_jis",
		"Big5":      "big5",
		"":          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), in)
	}
}

// TestDetectStatisticalChardet 使用真实的 chardet 猜测器
func TestDetectStatisticalChardet(t *testing.T) {
	d := NewDetector(statisticalConfig(), nil)

	cases := map[string]string{
		"短文本":  "中文测试文件",
		"源代码":  "#include <stdio.h>\n// 你好世界\nint main() { return 0; }\n",
		"注释较多": "// 这是一个用于测试编码检测的源文件\n// 其中包含足够多的中文注释内容\nint main() { return 0; }\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			v := d.Detect(gbk(t, text))
			assert.Equal(t, LabelGBK, v.Label)
			assert.Equal(t, 1.0, v.Confidence)
			assert.Equal(t, string(LabelGBK), NormalizeName(v.Charset))
		})
	}

	t.Run("拉丁文", func(t *testing.T) {
		v := d.Detect([]byte("caf\xe9 ol\xe9"))
		assert.NotEqual(t, LabelGBK, v.Label)
		assert.False(t, v.HasGBKEvidence())
	})
}

func TestChardetGuesserHint(t *testing.T) {
	g := NewChardetGuesser()
	data := gbk(t, "中文测试文件")

	name, confident, err := g.Guess(data, " CN ")
	assert.NoError(t, err)
	assert.True(t, confident)
	assert.Equal(t, "GB-18030", name)

	// 非法 GBK 序列不会因为地区提示被采信
	name, confident, err = g.Guess(append(data, 0xFF), "cn")
	if err == nil {
		assert.False(t, confident && NormalizeName(name) == string(LabelGBK))
	}
}
