package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"agency-contact-api/internal/domain"
)

// check-config: report missing settings for the selected provider.
func checkConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Verify the contact provider configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				var cerr *domain.ConfigurationError
				if errors.As(err, &cerr) {
					for _, key := range cerr.Missing {
						fmt.Fprintf(cmd.OutOrStdout(), "missing %s\n", key)
					}
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "provider %s: ok (auto-reply %t)\n", cfg.ContactProvider, cfg.ContactAutoReply)
			return nil
		},
	}
}
