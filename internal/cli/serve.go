package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorproxy/flexo/internal/cache"
	"github.com/mirrorproxy/flexo/internal/config"
	"github.com/mirrorproxy/flexo/internal/discovery"
	"github.com/mirrorproxy/flexo/internal/mirror"
	"github.com/mirrorproxy/flexo/internal/web"
)

// NewServeCmd creates the serve command.
// Usage: flexo serve --config <path>
func NewServeCmd(app *App) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the caching download proxy",
		Long: `Starts the caching download proxy: on each request it schedules a
fetch from the best-ranked mirror, caching the result to disk and serving
subsequent requests for the same file straight from the cache.

Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			providers := buildProviders(cfg)
			if cfg.MirrorStatusEndpoint != "" {
				discovered, err := discoverProviders(cmd.Context(), cfg)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: mirror discovery failed: %v\n", err)
				} else {
					providers = append(providers, discovered...)
				}
			}
			if len(providers) == 0 {
				return fmt.Errorf("serve: no providers configured and mirror discovery found none")
			}

			initialCache, err := mirror.InitializeCache(cfg.CacheDir)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}

			jc := cache.NewJobContext(providers, mirror.Properties{CacheDir: cfg.CacheDir}, initialCache)

			srv, err := web.New(web.Config{Addr: cfg.ListenAddr, CacheDir: cfg.CacheDir}, jc)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "flexo listening on http://%s (cache: %s)\n", srv.Addr(), cfg.CacheDir)
			fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Stop(ctx); err != nil {
				return fmt.Errorf("stop server: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "flexo.yaml", "path to config file")
	return cmd
}

func buildProviders(cfg *config.Config) []cache.Provider {
	providers := make([]cache.Provider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providers = append(providers, mirror.NewHTTPProvider(p.URL, p.StaticRank))
	}
	return providers
}

func discoverProviders(ctx context.Context, cfg *config.Config) ([]cache.Provider, error) {
	descs, err := discovery.FetchMirrorList(ctx, cfg.MirrorStatusEndpoint)
	if err != nil {
		return nil, err
	}

	ranked := discovery.RankMirrors(descs, discovery.RankOptions{
		HTTPSRequired: cfg.Discovery.HTTPSRequired,
		MaxScore:      cfg.Discovery.MaxScore,
	})

	providers := make([]cache.Provider, 0, len(ranked))
	for _, d := range ranked {
		providers = append(providers, mirror.NewHTTPProvider(d.URL, d.StaticRank()))
	}
	log.Printf("cli: discovered %d usable mirrors from %s", len(providers), cfg.MirrorStatusEndpoint)
	return providers, nil
}
