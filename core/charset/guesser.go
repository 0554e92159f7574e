package charset

import (
	"strings"

	"github.com/saintfish/chardet"
	htmlcharset "golang.org/x/net/html/charset"
)

// Guesser 统计型字符集猜测器
type Guesser interface {
	// Guess 返回猜测的字符集名称，以及猜测结果是否可信
	Guess(data []byte, hint string) (name string, confident bool, err error)
}

const (
	// confidentScore chardet 给出的分值（0-100）达到该值才视为可信
	confidentScore = 50
	// hintMargin 与最高分相差不超过该值的候选中，优先采用符合地区提示的结果
	hintMargin = 10
)

// hintLanguages 顶级域名风格的地区提示到 chardet 语言代码的映射
var hintLanguages = map[string]string{
	"cn": "zh",
	"sg": "zh",
	"tw": "zh",
	"hk": "zh",
	"jp": "ja",
	"kr": "ko",
	"ru": "ru",
}

// hintPreferred 地区提示下同分候选的优先字符集（规范名）
var hintPreferred = map[string]string{
	"cn": "gbk",
	"sg": "gbk",
	"tw": "big5",
	"hk": "big5",
}

// ChardetGuesser 基于 saintfish/chardet 的猜测器
type ChardetGuesser struct {
	detector *chardet.Detector
}

// NewChardetGuesser 创建文本字符集猜测器
func NewChardetGuesser() *ChardetGuesser {
	return &ChardetGuesser{detector: chardet.NewTextDetector()}
}

// Guess 实现 Guesser 接口
func (g *ChardetGuesser) Guess(data []byte, hint string) (string, bool, error) {
	results, err := g.detector.DetectAll(data)
	if err != nil {
		return "", false, err
	}
	if len(results) == 0 {
		return "", false, chardet.NotDetectedError
	}

	best := results[0]
	hint = strings.ToLower(strings.TrimSpace(hint))
	lang, ok := hintLanguages[hint]
	if !ok {
		return best.Charset, best.Confidence >= confidentScore, nil
	}

	// 短文本中 chardet 的多字节识别器一律只给 10 分，
	// 地区提示为 GBK 系列时，存在汉字字节对且能严格解码即采信
	if hintPreferred[hint] == string(LabelGBK) && CountGBKPairs(data) > 0 {
		if r, found := pickHinted(results, lang, string(LabelGBK), true); found {
			if _, err := DecodeGBK(data); err == nil {
				return r.Charset, true, nil
			}
		}
	}

	if r, found := pickHinted(results, lang, hintPreferred[hint], false); found && r.Confidence >= best.Confidence-hintMargin {
		best = r
	}
	return best.Charset, best.Confidence >= confidentScore, nil
}

// pickHinted 在指定语言的候选中选出分值最高者，同分时优先 preferred，再按名称排序；
// only 为 true 时只考虑规范名等于 preferred 的候选
func pickHinted(results []chardet.Result, lang, preferred string, only bool) (chardet.Result, bool) {
	var picked chardet.Result
	found := false
	for _, r := range results {
		if r.Language != lang {
			continue
		}
		isPreferred := NormalizeName(r.Charset) == preferred
		if only && !isPreferred {
			continue
		}
		if !found || better(r, picked, preferred) {
			picked = r
			found = true
		}
	}
	return picked, found
}

func better(a, b chardet.Result, preferred string) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	ap := NormalizeName(a.Charset) == preferred
	bp := NormalizeName(b.Charset) == preferred
	if ap != bp {
		return ap
	}
	return a.Charset < b.Charset
}

// NormalizeName 将字符集名称规范化为 WHATWG 标签，GBK 系列统一为 "gbk"
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}

	if _, canonical := htmlcharset.Lookup(n); canonical != "" {
		n = canonical
	} else if _, canonical := htmlcharset.Lookup(strings.ReplaceAll(n, "-", "")); canonical != "" {
		n = canonical
	}

	switch n {
	case "gbk", "gb2312", "gb18030":
		return string(LabelGBK)
	case "utf-8":
		return string(LabelUTF8)
	}
	return n
}
