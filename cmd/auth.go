package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/gcalevents/internal/google"
)

func newAuthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize calendar access and store an OAuth token",
		Long: `Run the OAuth installed-app flow for a Google account.

Requires an OAuth client configured via client_id and client_secret in the
config file or the GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment
variables. The token is written to token_file (GOOGLE_TOKEN_FILE).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := google.OAuthConfig(a.cfg.ClientID, a.cfg.ClientSecret)
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Go to the following link in your browser then type the authorization code:\n%s\n\n", google.AuthURL(conf))
			fmt.Fprint(out, "Enter Authorization Code: ")

			code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			code = strings.TrimSpace(code)
			if code == "" {
				if err != nil {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
				return fmt.Errorf("authorization code is required")
			}

			if _, err := google.ExchangeAndSave(cmd.Context(), conf, code, a.cfg.TokenFile); err != nil {
				return err
			}
			a.logger.Info("saved token", "file", a.cfg.TokenFile)
			return nil
		},
	}
}
