package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/GenesisAN/gbk2utf8/core/state"
)

// errNoJournal 未配置运行日志
var errNoJournal = errors.New("未配置运行日志，请使用 --journal 或 journal.path 指定数据库")

func newHistoryCommand(a *app) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "查看运行日志",
		Long: `列出运行日志中记录的历史运行，或查看某次运行的每个文件结果。

示例：
  gbk2utf8 history --journal runs.db
  gbk2utf8 history --journal runs.db --run 01HZX...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Journal.Path == "" {
				return errNoJournal
			}

			manager, err := state.NewManager(a.cfg.Journal.Path, a.log)
			if err != nil {
				return fmt.Errorf("打开运行日志失败: %w", err)
			}
			defer manager.Close()

			if runID != "" {
				return showRunFiles(cmd, manager, runID)
			}
			return listRuns(cmd, manager, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "最多显示的运行数，0 表示全部")
	cmd.Flags().StringVar(&runID, "run", "", "显示指定运行的文件记录")
	return cmd
}

func listRuns(cmd *cobra.Command, manager *state.Manager, limit int) error {
	runs, err := manager.ListRuns(limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "暂无运行记录")
		return nil
	}

	table := pterm.TableData{{"运行", "开始时间", "目录", "模式", "已检查", "已转换", "可转换", "已跳过", "失败"}}
	for _, run := range runs {
		mode := "转换"
		if run.ScanOnly {
			mode = "扫描"
		} else if run.Backup {
			mode = "转换+备份"
		}
		table = append(table, []string{
			run.ID,
			run.Started.Local().Format("2006-01-02 15:04:05"),
			run.Dir,
			mode,
			strconv.Itoa(run.Visited),
			strconv.Itoa(run.Converted),
			strconv.Itoa(run.Convertible),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(table).WithWriter(out).Render()
}

func showRunFiles(cmd *cobra.Command, manager *state.Manager, runID string) error {
	records, err := manager.Files(runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "该运行没有文件记录")
		return nil
	}

	table := pterm.TableData{{"路径", "状态", "原因", "标签", "置信度", "汉字对", "最长连续", "错误"}}
	for _, r := range records {
		table = append(table, []string{
			r.Path,
			r.State,
			r.Reason,
			r.Label,
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			strconv.Itoa(r.ChineseCount),
			strconv.Itoa(r.MaxRun),
			r.Error,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(table).WithWriter(out).Render()
}
