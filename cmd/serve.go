package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/server"
	"github.com/spf13/cobra"
)

var (
	srvAddr       string
	srvAssetsHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the dashboard, JSON API and exports over HTTP",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(args)
		if err != nil {
			return err
		}
		addr := cfg.ListenAddr
		if srvAddr != "" {
			addr = srvAddr
		}
		srv := server.New(eng, server.Options{
			Logger:     appLog,
			Theme:      dashboard.ParseTheme(cfg.ChartTheme),
			AssetsHost: srvAssetsHost,
		})
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		fmt.Printf("✓ Serving %s on %s\n", eng.Dataset().Name(), addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().StringVar(&srvAssetsHost, "assets-host", "", "serve echarts assets from this host instead of the CDN")
	addSourceFlags(serveCmd)
}
