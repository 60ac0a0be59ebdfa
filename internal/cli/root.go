// Package cli implements the careview terminal client: the dashboard and
// expected-effect views rendered straight from the upstream backend.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fdg312/careview/internal/config"
	"github.com/fdg312/careview/internal/dashboard"
	"github.com/fdg312/careview/internal/effect"
	"github.com/fdg312/careview/internal/logging"
	"github.com/fdg312/careview/internal/upstream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options shared by all subcommands
type options struct {
	cfg      *config.Config
	token    string
	jsonOut  bool
	verbose  bool
	upstream string
	logger   *zap.Logger
}

// NewRootCommand builds the command tree. cfg supplies defaults that the
// persistent flags may override.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	opts := &options{cfg: cfg}

	root := &cobra.Command{
		Use:           "careview",
		Short:         "Weekly health records and expected effect in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.upstream, "upstream", cfg.Upstream.BaseURL, "backend base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("CAREVIEW_TOKEN"), "bearer token forwarded to the backend (env CAREVIEW_TOKEN)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print the view envelope as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log upstream requests to stderr")

	root.AddCommand(
		newDashboardCmd(opts),
		newEffectCmd(opts),
		newWatchCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// Execute runs the CLI with configuration from the environment.
func Execute() error {
	return NewRootCommand(config.Load()).Execute()
}

func (o *options) init() error {
	o.logger = zap.NewNop()
	if o.verbose {
		logger, err := logging.New("local", "debug")
		if err != nil {
			return err
		}
		o.logger = logger
	}
	o.cfg.Upstream.BaseURL = strings.TrimRight(o.upstream, "/")
	return nil
}

// authorization renders the token as an Authorization header value.
func (o *options) authorization() string {
	t := strings.TrimSpace(o.token)
	if t == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(t), "bearer ") {
		return t
	}
	return "Bearer " + t
}

func (o *options) client() *upstream.Client {
	return upstream.NewClient(o.cfg.Upstream, o.logger)
}

func (o *options) dashboardService() *dashboard.Service {
	return dashboard.NewService(o.client(), o.cfg.Upstream.WeeklyRecordsPath, o.logger)
}

func (o *options) effectService() *effect.Service {
	return effect.NewService(o.client(), o.cfg.Upstream.ExpectedEffectPath, o.logger)
}

func fprintln(w io.Writer, a ...any) {
	fmt.Fprintln(w, a...)
}
