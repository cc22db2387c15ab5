package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"starsoftflow/internal/config"
	"starsoftflow/internal/server"
	"starsoftflow/internal/store"
	"starsoftflow/internal/util"
)

var (
	servePort      int
	serveDev       bool
	serveNoBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "服务端口（覆盖配置文件）")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "开发模式")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "不自动打开浏览器")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveDev {
		cfg.Server.DevMode = true
	}
	switch {
	case servePort > 0:
		cfg.Server.Port = servePort
	case !cfgInfo.PortSpecified:
		// 未显式配置端口时避开已被占用的默认端口
		if p, err := util.FindAvailablePort(cfg.Server.Port, 20); err == nil {
			cfg.Server.Port = p
		}
	}

	st, err := store.New(config.DatabasePath(dataDir))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, st, logger)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d/api/status", cfg.Server.Port)

	logger.Info("server starting", "addr", addr, "data_dir", dataDir)
	fmt.Fprintf(cmd.OutOrStdout(), "服务已启动: %s\n按 Ctrl+C 停止服务...\n", url)
	if !cfg.Server.DevMode && !serveNoBrowser {
		if err := util.OpenBrowser(url); err != nil {
			logger.Warn("open browser failed", "error", err)
		}
	}

	return srv.Run(ctx, addr)
}
