package cmd

import (
	"github.com/spf13/cobra"
)

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "🔧 生成shell自动补全脚本",
		Long: `生成指定shell的自动补全脚本。

要启用自动补全，请运行以下命令之一：

Bash:
  source <(gbk2utf8 completion bash)
  # 或者将其添加到 ~/.bashrc:
  echo 'source <(gbk2utf8 completion bash)' >> ~/.bashrc

Zsh:
  source <(gbk2utf8 completion zsh)

Fish:
  gbk2utf8 completion fish | source

PowerShell:
  gbk2utf8 completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
