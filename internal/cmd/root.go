package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/GenesisAN/gbk2utf8/config"
	"github.com/GenesisAN/gbk2utf8/core/charset"
	"github.com/GenesisAN/gbk2utf8/core/converter"
	"github.com/GenesisAN/gbk2utf8/core/input"
	coreoutput "github.com/GenesisAN/gbk2utf8/core/output"
	"github.com/GenesisAN/gbk2utf8/core/scanner"
	"github.com/GenesisAN/gbk2utf8/core/state"
	"github.com/GenesisAN/gbk2utf8/internal/logger"
	"github.com/GenesisAN/gbk2utf8/internal/output"
	"github.com/GenesisAN/gbk2utf8/internal/version"
)

// reportedError 已经打印给用户的错误，Execute 不再重复输出
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// app 一次命令执行的共享状态
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
	confirm *input.Manager
}

// Execute 构建并执行根命令
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(root.ErrOrStderr(), "❌", err)
		}
	}
	return err
}

// NewRootCommand 创建根命令及全部子命令
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New(), confirm: input.NewManager()}

	rootCmd := &cobra.Command{
		Use:   "gbk2utf8",
		Short: "批量将 GBK 编码的源文件就地转换为 UTF-8",
		Long: `gbk2utf8 递归扫描目录，识别 GBK 编码的文件并就地转换为 UTF-8。

已经是合法 UTF-8 的文件永远不会被修改；检测不确定的文件会被跳过。

示例：
  gbk2utf8 -d ./src
  gbk2utf8 -d ./src -s -i
  gbk2utf8 -d ./src -b -e c,h,cpp`,
		Version:           version.VersionWithPrefix,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runConvert,
	}
	rootCmd.SetVersionTemplate(version.GetFullVersionInfo() + "\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "配置文件 (默认: $HOME/.gbk2utf8.yaml 或 ./.gbk2utf8.yaml)")
	pf.StringP("dir", "d", config.DefaultDir, "要扫描的目录")
	pf.BoolP("show-info", "i", false, "显示每个文件的检测信息")
	pf.StringSliceP("extensions", "e", config.DefaultExtensions, "要处理的扩展名，逗号分隔")
	pf.Float64P("min-confidence", "m", config.DefaultMinConfidence, "最小置信度 [0,1]")
	pf.Int("min-count", config.DefaultMinTotalCount, "GBK 汉字字节对的最小总数")
	pf.Int("min-run", config.DefaultMinConsecutiveRun, "GBK 汉字字节对的最小连续数")
	pf.StringP("tld", "t", config.DefaultLocaleHint, "地区提示，用于统计检测 (cn, tw, jp, kr...)")
	pf.String("strategy", config.StrategyHeuristic, "检测策略: heuristic（默认，按汉字字节对计数）, statistical（chardet，依赖 --tld 提示）")
	pf.String("journal", "", "运行日志数据库路径 (bbolt)，为空时不记录")
	pf.Bool("no-color", false, "禁用彩色输出")

	f := rootCmd.Flags()
	f.BoolP("scan-only", "s", false, "只扫描，不转换")
	f.BoolP("backup", "b", false, "转换前备份为 .bak")
	f.Bool("confirm", false, "转换前交互确认")
	f.Bool("pause", false, "结束后等待回车再退出")

	bindings := map[string]string{
		"scan.dir":                      "dir",
		"output.verbose":                "show-info",
		"scan.extensions":               "extensions",
		"detection.min_confidence":      "min-confidence",
		"detection.min_total_count":     "min-count",
		"detection.min_consecutive_run": "min-run",
		"detection.locale_hint":         "tld",
		"detection.strategy":            "strategy",
		"journal.path":                  "journal",
		"output.no_color":               "no-color",
	}
	for key, name := range bindings {
		_ = a.v.BindPFlag(key, pf.Lookup(name))
	}
	localBindings := map[string]string{
		"conversion.scan_only": "scan-only",
		"conversion.backup":    "backup",
		"conversion.confirm":   "confirm",
		"output.pause":         "pause",
	}
	for key, name := range localBindings {
		_ = a.v.BindPFlag(key, f.Lookup(name))
	}

	rootCmd.AddCommand(
		newAnalyzeCommand(a),
		newHistoryCommand(a),
		newConfigCommand(a),
		newCompletionCommand(),
	)

	return rootCmd
}

// setup 加载配置并初始化日志
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Output.NoColor {
		output.DisableColor()
	}

	lc, err := logger.FromConfig(cfg)
	if err != nil {
		return err
	}
	log, err := logger.NewLoggerWithConfig(lc)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	a.log = log

	a.log.Debug("配置已加载",
		zap.String("dir", cfg.Scan.Dir),
		zap.Strings("extensions", cfg.Scan.Extensions),
		zap.String("strategy", cfg.Detection.Strategy),
		zap.Float64("min_confidence", cfg.Detection.MinConfidence),
	)
	return nil
}

// runConvert 根命令：扫描并转换
func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	defer func() { _ = a.log.Sync() }()

	cfg := a.cfg
	out := cmd.OutOrStdout()

	root, err := converter.NormalizePath(cfg.Scan.Dir)
	if err != nil {
		return fmt.Errorf("解析目录失败: %w", err)
	}

	console := output.NewConsole(out, root, cfg.Output.Verbose, cfg.Conversion.ScanOnly)
	console.Banner(version.GetFullVersionInfo())

	if cfg.Conversion.Confirm && !cfg.Conversion.ScanOnly {
		ok, err := a.confirm.Confirm(fmt.Sprintf("将就地转换 %s 下的 GBK 文件，是否继续", root))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "已取消")
			return nil
		}
	}

	detector := charset.NewDetector(cfg.Detection, nil)
	policy := converter.NewPolicy(cfg, detector, a.log)

	reporters := coreoutput.Multi{console}
	recorder, closeJournal, err := a.openRecorder(root)
	if err != nil {
		return err
	}
	defer closeJournal()
	if recorder != nil {
		reporters = append(reporters, recorder)
	}

	summary, walkErr := a.walk(cmd, root, cfg.Scan.Extensions, policy, reporters)
	if summary == nil {
		console.RootFailed(walkErr)
		return reportedError{walkErr}
	}

	if recorder != nil {
		if err := recorder.Finish(); err != nil {
			a.log.Warn("保存运行日志失败", zap.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📒 运行记录 ID：%s\n", recorder.Run().ID)
	}

	console.Summary(summary)

	if cfg.Output.Pause {
		a.confirm.WaitForEnter("\n按回车键退出...")
	}

	if walkErr != nil {
		return walkErr
	}
	if summary.Ledger.Len() > 0 {
		return reportedError{fmt.Errorf("%d 个路径处理失败", summary.Ledger.Len())}
	}
	return nil
}

// walk 在可被 Ctrl-C 取消的上下文中遍历目录
func (a *app) walk(cmd *cobra.Command, root string, exts []string, handler scanner.FileHandler, reporter coreoutput.Reporter) (*scanner.Summary, error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	walker := scanner.NewWalker(exts, handler, reporter, a.log)
	return walker.Walk(ctx, root)
}

// openRecorder 配置了运行日志时打开数据库并开始一次运行
func (a *app) openRecorder(root string) (*state.Recorder, func(), error) {
	if a.cfg.Journal.Path == "" {
		return nil, func() {}, nil
	}

	manager, err := state.NewManager(a.cfg.Journal.Path, a.log)
	if err != nil {
		return nil, nil, fmt.Errorf("打开运行日志失败: %w", err)
	}
	closeFn := func() {
		if err := manager.Close(); err != nil {
			a.log.Warn("关闭运行日志失败", zap.Error(err))
		}
	}

	run, err := manager.BeginRun(root, a.cfg.Conversion.ScanOnly, a.cfg.Conversion.Backup)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("记录运行失败: %w", err)
	}
	return state.NewRecorder(manager, run), closeFn, nil
}
