// Package cli 命令行入口：serve / import / template
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"starsoftflow/internal/config"
)

// Version 构建时注入
var Version = "0.1.0"

var (
	configPath string
	dataDirArg string
	logLevel   string

	cfg        *config.AppConfig
	cfgInfo    config.LoadConfigInfo
	dataDir    string
	logger     *slog.Logger
	logCleanup func() error
)

var rootCmd = &cobra.Command{
	Use:   "starsoftflow",
	Short: "预算工作簿导入为项目草稿",
	Long: `starsoftflow 读取预算工作簿（HOME / BUDGET / RH_Budget_SUBM / Outros_Budget），
与用户目录和融资方案目录对账，并把结果写入项目草稿。`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, cfgInfo, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dataDirArg != "" {
			cfg.Data.DataDir = dataDirArg
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		dataDir, err = config.EnsureDataDir(cfg)
		if err != nil {
			return fmt.Errorf("prepare data dir: %w", err)
		}
		logger, logCleanup = config.SetupLogger(config.LogPath(cfg, dataDir), cfg.SlogLevel())
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute 执行根命令
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认为可执行文件同目录的 config.toml）")
	rootCmd.PersistentFlags().StringVar(&dataDirArg, "data-dir", "", "数据目录（覆盖配置文件）")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 debug/info/warn/error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(templateCmd)
}
