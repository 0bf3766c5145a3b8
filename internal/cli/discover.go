package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirrorproxy/flexo/internal/config"
	"github.com/mirrorproxy/flexo/internal/discovery"
)

// NewDiscoverCmd creates the discover command.
// Usage: flexo discover --config <path>
func NewDiscoverCmd(app *App) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Fetch and rank mirrors from the configured status endpoint",
		Long: `Fetches the configured mirror_status_endpoint, ranks every mirror
that passes the discovery filters, and prints the ranked list. Use this to
populate a config file's static providers list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.MirrorStatusEndpoint == "" {
				return fmt.Errorf("discover: mirror_status_endpoint is not set in %s", configPath)
			}

			descs, err := discovery.FetchMirrorList(cmd.Context(), cfg.MirrorStatusEndpoint)
			if err != nil {
				return fmt.Errorf("fetch mirror list: %w", err)
			}

			ranked := discovery.RankMirrors(descs, discovery.RankOptions{
				HTTPSRequired: cfg.Discovery.HTTPSRequired,
				MaxScore:      cfg.Discovery.MaxScore,
			})

			for i, d := range ranked {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %-60s rank=%-12d score=%.4f\n",
					i+1, d.URL, d.StaticRank(), d.Score)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d mirrors passed discovery filters\n", len(ranked), len(descs))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "flexo.yaml", "path to config file")
	return cmd
}
