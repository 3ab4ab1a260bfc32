package commands

import (
	"github.com/spf13/cobra"

	"agency-contact-api/config"
	"agency-contact-api/internal/domain"
	"agency-contact-api/pkg/logger"
)

var (
	cfg      *config.Config
	logLevel string
	provider string

	form domain.SubmissionForm
)

func Execute() error {
	root := &cobra.Command{
		Use:          "contactctl",
		Short:        "Operate the agency contact service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.ContactProvider = provider
			}
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			logger.Init(logLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default LOG_LEVEL)")
	root.PersistentFlags().StringVar(&provider, "provider", "", "override CONTACT_PROVIDER")

	root.AddCommand(checkConfigCmd(), validateCmd(), sendCmd())
	return root.Execute()
}

// formFlags binds the submission fields to cmd
func formFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&form.Name, "name", "", "sender name")
	cmd.Flags().StringVar(&form.Email, "email", "", "sender email")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "sender phone (optional)")
	cmd.Flags().StringVar(&form.Message, "message", "", "message body")
}
