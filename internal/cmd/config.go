package cmd

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "以 TOML 格式显示当前生效的配置",
		Long: `显示合并默认值、配置文件、环境变量 (GBK2UTF8_*) 与命令行参数之后的最终配置。

示例：
  gbk2utf8 config
  gbk2utf8 config -e c,h,cpp --strategy statistical`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := toml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("序列化配置失败: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
