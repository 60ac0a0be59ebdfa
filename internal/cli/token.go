package cli

import (
	"fmt"

	"github.com/fdg312/careview/internal/auth"
	"github.com/fdg312/careview/internal/config"
	"github.com/spf13/cobra"
)

func newTokenCmd(opts *options) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a dev token signed with JWT_SECRET",
		Long:  "Issue a dev token signed with JWT_SECRET, the same token POST /v1/auth/dev returns when AUTH_MODE=dev.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *opts.cfg
			cfg.AuthMode = config.AuthModeDev

			resp, err := auth.NewService(&cfg).SignInDev(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fprintln(cmd.OutOrStdout(), resp.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", auth.DevUserID, "subject of the token")
	return cmd
}
