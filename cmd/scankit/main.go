package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goran-ethernal/ScanKit/internal/common"
	"github.com/goran-ethernal/ScanKit/internal/config"
	"github.com/goran-ethernal/ScanKit/internal/logger"
	"github.com/goran-ethernal/ScanKit/internal/metrics"
	pkgconfig "github.com/goran-ethernal/ScanKit/pkg/config"
	"github.com/goran-ethernal/ScanKit/pkg/etherscan"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	configPath string

	// clientOptions are appended to every client the commands create.
	clientOptions []etherscan.Option
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scankit",
	Short: "ScanKit - Etherscan family explorer client",
	Long: `ScanKit talks to Etherscan compatible block explorers. It streams complete
transaction, transfer and log listings of an address by walking the chain in
adaptive block windows, and can sync those listings into a local SQLite store.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")

	rootCmd.AddCommand(txsCmd, syncCmd, blockNumberCmd, configCmd)
}

// session holds what a command needs to talk to the explorer.
type session struct {
	cfg    *pkgconfig.Config
	client *etherscan.Client
	log    *logger.Logger
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewComponentLoggerFromConfig(common.ComponentCLI, cfg.Logging)

	client, err := etherscan.New(ctx, cfg, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &session{cfg: cfg, client: client, log: log}, nil
}

// startMetrics starts the metrics server when enabled and returns its stop function.
func (s *session) startMetrics(ctx context.Context) (func(), error) {
	if s.cfg.Metrics == nil || !s.cfg.Metrics.Enabled {
		return func() {}, nil
	}

	server := metrics.NewServer(s.cfg.Metrics, s.log)
	if err := server.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start metrics server: %w", err)
	}

	return func() {
		if err := server.Stop(context.Background()); err != nil {
			s.log.Warnf("failed to stop metrics server: %v", err)
		}
	}, nil
}

func (s *session) Close() {
	s.client.Close()
	_ = s.log.Sync()
}
