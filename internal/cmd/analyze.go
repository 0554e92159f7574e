package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GenesisAN/gbk2utf8/config"
	"github.com/GenesisAN/gbk2utf8/core/charset"
	"github.com/GenesisAN/gbk2utf8/core/converter"
	"github.com/GenesisAN/gbk2utf8/internal/output"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "analyze [directory]",
		Short: "分析指定目录文件的编码，不进行转换",
		Long: `分析指定目录中目标扩展名的文件，显示每个文件的检测结果：
- 检测标签与置信度
- GBK 汉字字节对总数与最长连续数
- 处理结论（可转换或跳过原因）

示例：
  gbk2utf8 analyze ./src
  gbk2utf8 analyze --strategy statistical ./src
  gbk2utf8 analyze --report report.txt ./src`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetDir := a.cfg.Scan.Dir
			if len(args) > 0 {
				targetDir = args[0]
			}
			analyzer := NewEncodingAnalyzer(a.cfg, a.log, cmd.OutOrStdout())
			return analyzer.AnalyzeDirectory(cmd, a, targetDir, reportPath)
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "将分析报告保存为文本表格")
	return cmd
}

// EncodingAnalyzer 编码分析器，只检测不修改
type EncodingAnalyzer struct {
	config *config.Config
	logger *zap.Logger
	w      io.Writer
	report *AnalysisReport
}

// AnalysisReport 分析报告
type AnalysisReport struct {
	Dir         string
	GeneratedAt time.Time
	Strategy    string
	TotalFiles  int
	LabelStats  map[string]int
	ReasonStats map[string]int
	Files       []AnalyzedFile
	Failures    map[string]string
}

// AnalyzedFile 单个文件的分析结果
type AnalyzedFile struct {
	Path         string
	Label        string
	Charset      string
	Confidence   float64
	ChineseCount int
	MaxRun       int
	UTF8Chinese  int
	Binary       string
	Outcome      string
}

// NewEncodingAnalyzer 创建分析器
func NewEncodingAnalyzer(cfg *config.Config, logger *zap.Logger, w io.Writer) *EncodingAnalyzer {
	// 分析永远不写文件
	analysisCfg := *cfg
	analysisCfg.Conversion.ScanOnly = true
	analysisCfg.Conversion.Backup = false

	return &EncodingAnalyzer{
		config: &analysisCfg,
		logger: logger.Named("analyze"),
		w:      w,
	}
}

// AnalyzeDirectory 分析目录
func (e *EncodingAnalyzer) AnalyzeDirectory(cmd *cobra.Command, a *app, targetDir, reportPath string) error {
	root, err := converter.NormalizePath(targetDir)
	if err != nil {
		return fmt.Errorf("解析目录失败: %w", err)
	}

	e.report = &AnalysisReport{
		Dir:         root,
		GeneratedAt: time.Now(),
		Strategy:    e.config.Detection.Strategy,
		LabelStats:  make(map[string]int),
		ReasonStats: make(map[string]int),
	}

	fmt.Fprintf(e.w, "🔍 正在分析 %s ...\n\n", root)

	detector := charset.NewDetector(e.config.Detection, nil)
	policy := converter.NewPolicy(e.config, detector, e.logger)
	console := output.NewConsole(e.w, root, true, true)

	summary, walkErr := a.walk(cmd, root, e.config.Scan.Extensions, policy, e)
	if summary == nil {
		console.RootFailed(walkErr)
		return reportedError{walkErr}
	}

	e.report.TotalFiles = summary.Visited
	fmt.Fprintln(e.w)
	console.Labels(e.report.LabelStats)
	console.Summary(summary)

	if reportPath != "" {
		if err := e.saveAnalysisReport(reportPath); err != nil {
			e.logger.Error("保存分析报告失败", zap.Error(err))
			return err
		}
		fmt.Fprintf(e.w, "📄 分析报告已保存至：%s\n", reportPath)
	}

	return walkErr
}

// FileDone 实现 output.Reporter，逐行显示检测细节
func (e *EncodingAnalyzer) FileDone(result converter.FileResult) {
	v := result.Verdict
	outcome := string(result.State)
	if result.Reason != converter.ReasonNone {
		outcome += ":" + string(result.Reason)
	}

	file := AnalyzedFile{
		Path:         converter.DisplayPath(e.report.Dir, result.Path),
		Label:        string(v.Label),
		Charset:      v.Charset,
		Confidence:   v.Confidence,
		ChineseCount: v.ChineseCount,
		MaxRun:       v.MaxRun,
		UTF8Chinese:  v.UTF8Chinese,
		Binary:       v.Binary,
		Outcome:      outcome,
	}
	e.report.Files = append(e.report.Files, file)

	if result.State == converter.StateFailed {
		if e.report.Failures == nil {
			e.report.Failures = make(map[string]string)
		}
		e.report.Failures[file.Path] = result.Err.Error()
		fmt.Fprintf(e.w, "%s: %s\n", color.CyanString(file.Path), color.RedString("❌ %v", result.Err))
		return
	}

	e.report.LabelStats[file.Label]++
	if result.Reason != converter.ReasonNone {
		e.report.ReasonStats[string(result.Reason)]++
	}

	labelColor := color.New(color.FgHiBlack)
	switch v.Label {
	case charset.LabelGBK:
		labelColor = color.New(color.FgGreen)
	case charset.LabelUTF8:
		labelColor = color.New(color.FgBlue)
	}

	fmt.Fprintf(e.w, "%s: %s 置信度 = %.2f, 汉字对 = %d, 最长连续 = %d → %s\n",
		color.CyanString(file.Path),
		labelColor.Sprint(file.Label),
		file.Confidence,
		file.ChineseCount,
		file.MaxRun,
		outcome,
	)
}

// DirFailed 实现 output.Reporter
func (e *EncodingAnalyzer) DirFailed(path string, err error) {
	if e.report.Failures == nil {
		e.report.Failures = make(map[string]string)
	}
	shown := converter.DisplayPath(e.report.Dir, path)
	e.report.Failures[shown] = err.Error()
	fmt.Fprintf(e.w, "%s: %s\n", color.CyanString(shown), color.RedString("❌ %v", err))
}

// saveAnalysisReport 将报告渲染为纯文本表格写入文件
func (e *EncodingAnalyzer) saveAnalysisReport(path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "目录: %s\n", e.report.Dir)
	fmt.Fprintf(&b, "生成时间: %s\n", e.report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "检测策略: %s\n", e.report.Strategy)
	fmt.Fprintf(&b, "文件总数: %d\n\n", e.report.TotalFiles)

	table := pterm.TableData{{"文件", "标签", "字符集", "置信度", "汉字对", "最长连续", "结论"}}
	for _, f := range e.report.Files {
		table = append(table, []string{
			f.Path,
			f.Label,
			f.Charset,
			strconv.FormatFloat(f.Confidence, 'f', 2, 64),
			strconv.Itoa(f.ChineseCount),
			strconv.Itoa(f.MaxRun),
			f.Outcome,
		})
	}
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(table).Srender()
	if err != nil {
		return fmt.Errorf("渲染报告失败: %w", err)
	}
	b.WriteString(pterm.RemoveColorFromString(rendered))
	b.WriteString("\n")

	if len(e.report.Failures) > 0 {
		paths := make([]string, 0, len(e.report.Failures))
		for p := range e.report.Failures {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		b.WriteString("\n失败：\n")
		for _, p := range paths {
			fmt.Fprintf(&b, "%s: %s\n", p, e.report.Failures[p])
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// Report 返回最近一次分析的报告
func (e *EncodingAnalyzer) Report() *AnalysisReport {
	return e.report
}
