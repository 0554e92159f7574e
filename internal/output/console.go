package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/GenesisAN/gbk2utf8/core/charset"
	"github.com/GenesisAN/gbk2utf8/core/converter"
	"github.com/GenesisAN/gbk2utf8/core/scanner"
)

// Console 控制台输出，实现 core/output.Reporter
type Console struct {
	w        io.Writer
	root     string
	verbose  bool
	scanOnly bool

	pathColor *color.Color
	okColor   *color.Color
	skipColor *color.Color
	warnColor *color.Color
	errColor  *color.Color
}

// NewConsole 创建控制台输出；verbose 时打印每个文件的检测结果
func NewConsole(w io.Writer, root string, verbose, scanOnly bool) *Console {
	return &Console{
		w:         w,
		root:      root,
		verbose:   verbose,
		scanOnly:  scanOnly,
		pathColor: color.New(color.FgCyan),
		okColor:   color.New(color.FgGreen),
		skipColor: color.New(color.FgHiBlack),
		warnColor: color.New(color.FgYellow),
		errColor:  color.New(color.FgRed, color.Bold),
	}
}

// DisableColor 关闭所有彩色输出
func DisableColor() {
	color.NoColor = true
	pterm.DisableColor()
}

// FileDone 实现 Reporter 接口
func (c *Console) FileDone(result converter.FileResult) {
	if result.State == converter.StateFailed {
		fmt.Fprintf(c.w, "%s: %s\n", c.path(result.Path), c.errColor.Sprintf("❌ %v", result.Err))
		return
	}
	if !c.verbose {
		return
	}

	v := result.Verdict
	switch result.State {
	case converter.StateSkipped:
		switch result.Reason {
		case converter.ReasonUTF8:
			fmt.Fprintf(c.w, "%s: %s\n", c.path(result.Path), c.skipColor.Sprint("明确是 UTF-8，跳过"))
		case converter.ReasonBinary:
			fmt.Fprintf(c.w, "%s: %s\n", c.path(result.Path), c.skipColor.Sprintf("二进制文件 (%s)，跳过", v.Binary))
		case converter.ReasonNotGBK:
			fmt.Fprintf(c.w, "%s: %s\n", c.path(result.Path), c.skipColor.Sprintf("猜测编码 = %s, 置信度 = %.2f，跳过", guessedName(v), v.Confidence))
		default:
			fmt.Fprintf(c.w, "%s: %s %s\n", c.path(result.Path),
				c.warnColor.Sprint("无法确定为 GBK 或置信度不足，跳过"),
				c.skipColor.Sprintf("(汉字对 %d, 最长连续 %d, 置信度 %.2f)", v.ChineseCount, v.MaxRun, v.Confidence))
		}
	case converter.StateConvertible:
		fmt.Fprintf(c.w, "%s: %s\n", c.path(result.Path), c.okColor.Sprintf("猜测编码 = %s, 置信度 = %.2f，可转换", guessedName(v), v.Confidence))
	case converter.StateConverted:
		fmt.Fprintf(c.w, "%s: %s\n", c.path(result.Path), c.okColor.Sprintf("猜测编码 = %s, 置信度 = %.2f，已转换", guessedName(v), v.Confidence))
		if result.BackupPath != "" {
			fmt.Fprintf(c.w, "📦 已备份至：%s\n", c.path(result.BackupPath))
		}
	}
}

// DirFailed 实现 Reporter 接口
func (c *Console) DirFailed(path string, err error) {
	fmt.Fprintf(c.w, "%s: %s\n", c.path(path), c.errColor.Sprintf("❌ %v", err))
}

// Banner 打印版本行
func (c *Console) Banner(line string) {
	fmt.Fprintln(c.w, line)
}

// RootFailed 根目录无法读取
func (c *Console) RootFailed(err error) {
	fmt.Fprintln(c.w, c.errColor.Sprintf("❌ 扫描目录失败: %v", err))
}

// Summary 打印统计表和失败列表
func (c *Console) Summary(summary *scanner.Summary) {
	converted := "已转换"
	count := summary.Converted
	if c.scanOnly {
		converted = "可转换"
		count = summary.Convertible
	}

	fmt.Fprintln(c.w)
	table := pterm.TableData{
		{"已检查", converted, "已跳过", "失败"},
		{
			strconv.Itoa(summary.Visited),
			strconv.Itoa(count),
			strconv.Itoa(summary.Skipped),
			strconv.Itoa(summary.Failed),
		},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(table).WithWriter(c.w).Render(); err != nil {
		fmt.Fprintf(c.w, "已检查 %d, %s %d, 已跳过 %d, 失败 %d\n", summary.Visited, converted, count, summary.Skipped, summary.Failed)
	}

	entries := summary.Ledger.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(c.w, c.okColor.Sprint("✅ 所有文件处理完成"))
		return
	}

	fmt.Fprintln(c.w, c.errColor.Sprint("\n以下文件转换失败："))
	for _, entry := range entries {
		fmt.Fprintf(c.w, "%s: %v\n", c.path(entry.Path), entry.Err)
	}
}

// Labels 打印 analyze 的标签统计
func (c *Console) Labels(counts map[string]int) {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	table := pterm.TableData{{"标签", "文件数"}}
	for _, label := range labels {
		table = append(table, []string{label, strconv.Itoa(counts[label])})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(table).WithWriter(c.w).Render(); err != nil {
		for _, label := range labels {
			fmt.Fprintf(c.w, "%s: %d\n", label, counts[label])
		}
	}
}

func (c *Console) path(p string) string {
	return c.pathColor.Sprint(converter.DisplayPath(c.root, p))
}

// guessedName 优先显示统计检测器给出的原始名称
func guessedName(v charset.Verdict) string {
	if v.Charset != "" {
		return v.Charset
	}
	return string(v.Label)
}
