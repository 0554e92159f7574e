package output

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GenesisAN/gbk2utf8/core/charset"
	"github.com/GenesisAN/gbk2utf8/core/converter"
	"github.com/GenesisAN/gbk2utf8/core/scanner"
)

func init() {
	DisableColor()
}

func TestConsoleVerboseLines(t *testing.T) {
	var buf bytes.Buffer
	root := filepath.Join("proj")
	c := NewConsole(&buf, root, true, false)

	c.FileDone(converter.FileResult{
		Path:    filepath.Join(root, "u.c"),
		State:   converter.StateSkipped,
		Reason:  converter.ReasonUTF8,
		Verdict: charset.Verdict{Label: charset.LabelUTF8, Confidence: 1},
	})
	c.FileDone(converter.FileResult{
		Path:       filepath.Join(root, "g.c"),
		State:      converter.StateConverted,
		Verdict:    charset.Verdict{Label: charset.LabelGBK, Confidence: 1, ChineseCount: 4, MaxRun: 4},
		BackupPath: filepath.Join(root, "g.c.bak"),
	})
	c.FileDone(converter.FileResult{
		Path:    filepath.Join(root, "few.c"),
		State:   converter.StateSkipped,
		Reason:  converter.ReasonInsufficient,
		Verdict: charset.Verdict{Label: charset.LabelOther, Confidence: 0.1, ChineseCount: 3, MaxRun: 3},
	})

	out := buf.String()
	assert.Contains(t, out, "u.c: 明确是 UTF-8，跳过")
	assert.Contains(t, out, "g.c: 猜测编码 = gbk, 置信度 = 1.00，已转换")
	assert.Contains(t, out, "📦 已备份至：g.c.bak")
	assert.Contains(t, out, "few.c: 无法确定为 GBK 或置信度不足，跳过")
}

func TestConsoleQuietShowsOnlyFailures(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "", false, true)

	c.FileDone(converter.FileResult{Path: "a.c", State: converter.StateConvertible})
	assert.Empty(t, buf.String())

	c.FileDone(converter.FileResult{Path: "b.c", State: converter.StateFailed, Err: errors.New("boom")})
	assert.Contains(t, buf.String(), "b.c: ❌ boom")
}

func TestConsoleScanOnlyLabel(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "", true, true)

	c.FileDone(converter.FileResult{
		Path:    "a.c",
		State:   converter.StateConvertible,
		Verdict: charset.Verdict{Label: charset.LabelGBK, Charset: "GB-18030", Confidence: 1},
	})
	assert.Contains(t, buf.String(), "a.c: 猜测编码 = GB-18030, 置信度 = 1.00，可转换")
}

func TestConsoleSummary(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "", false, false)

	summary := &scanner.Summary{Visited: 3, Converted: 2, Skipped: 1, Ledger: scanner.NewErrorLedger()}
	c.Summary(summary)
	assert.Contains(t, buf.String(), "✅ 所有文件处理完成")

	buf.Reset()
	summary.Ledger.Record("z.c", errors.New("last"))
	summary.Ledger.Record("a.c", errors.New("first"))
	c.Summary(summary)

	out := buf.String()
	assert.Contains(t, out, "以下文件转换失败：")
	assert.NotContains(t, out, "✅")
	first := bytes.Index(buf.Bytes(), []byte("a.c: first"))
	last := bytes.Index(buf.Bytes(), []byte("z.c: last"))
	assert.True(t, first >= 0 && last > first, out)
}
