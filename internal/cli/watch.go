package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fdg312/careview/internal/dashboard"
	"github.com/fdg312/careview/internal/effect"
	"github.com/fdg312/careview/internal/viewstate"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	var (
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:       "watch dashboard|effect",
		Short:     "Reload a view on an interval",
		Long:      "Reload a view on an interval. A reload that starts before the previous one finished replaces it; the older result is never shown.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dashboard", "effect"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}
			out := cmd.OutOrStdout()
			auth := opts.authorization()

			switch args[0] {
			case "dashboard":
				svc := opts.dashboardService()
				return watch(cmd.Context(), svc.NewLoader(), interval, count,
					func(ctx context.Context) (dashboard.Summary, error) { return svc.Fetch(ctx, auth) },
					func(st viewstate.State[dashboard.Summary]) error {
						return opts.printDashboard(out, dashboard.NewView(st))
					})
			default:
				svc := opts.effectService()
				return watch(cmd.Context(), svc.NewLoader(), interval, count,
					func(ctx context.Context) (*effect.Projection, error) { return svc.Fetch(ctx, auth) },
					func(st viewstate.State[*effect.Projection]) error {
						return opts.printEffect(out, effect.NewView(st))
					})
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "reload interval")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many renders (0 = until interrupted)")
	return cmd
}

// watch drives one loader: every tick starts a new load that supersedes the
// previous one, every settled load is rendered once.
func watch[T any](
	ctx context.Context,
	loader *viewstate.Loader[T],
	interval time.Duration,
	count int,
	fetch viewstate.Fetch[T],
	render func(viewstate.State[T]) error,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer loader.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := loader.Load(ctx, fetch)
	rendered := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			done = loader.Load(ctx, fetch)
		case <-done:
			done = nil
			if err := render(loader.Snapshot()); err != nil {
				return err
			}
			rendered++
			if count > 0 && rendered >= count {
				return nil
			}
		}
	}
}
