package cli

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/hugr-lab/lazyscan"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve relations over Arrow Flight",
		Long: `Serve the relations listed in a YAML config file over Arrow Flight.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, rootOpts, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lazyscan.yaml", "config file")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, rootOpts *RootOptions, configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		rootOpts.LogLevel = cfg.LogLevel
	}
	logger := rootOpts.logger(cmd)

	opened, err := OpenCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer opened.Close()

	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
	}

	config := lazyscan.ServerConfig{
		Catalog:        opened.Catalog,
		Logger:         logger,
		MaxMessageSize: cfg.MaxMessageSize,
		Address:        lis.Addr().String(),
	}
	if cfg.Auth != nil {
		config.Auth = lazyscan.StaticTokens(cfg.Auth.Tokens)
	}

	grpcServer := grpc.NewServer(lazyscan.ServerOptions(config)...)
	if err := lazyscan.NewServer(grpcServer, config); err != nil {
		lis.Close()
		return err
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		grpcServer.GracefulStop()
	}()

	logger.Info("lazyscan listening", "address", lis.Addr().String(), "relations", opened.Catalog.Names())
	return grpcServer.Serve(lis)
}
