package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"agency-contact-api/internal/domain"
	"agency-contact-api/internal/usecase"
	"agency-contact-api/pkg/email"
	"agency-contact-api/pkg/logger"
	"agency-contact-api/pkg/validation"
)

// send: submit one form through a ContactSession and print every status transition.
func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a form through the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transports, err := email.NewTransports(cfg, email.NewHTTPClient(cfg.ContactTimeout), logger.Log)
			if err != nil {
				return err
			}

			flow := usecase.NewContactUsecase(transports.Notify, validation.New(), usecase.ContactOptions{
				AutoReply:         transports.AutoReply,
				AutoReplyRequired: cfg.ContactAutoReplyRequired,
				Timeout:           cfg.ContactTimeout,
				Logger:            logger.Log,
			})

			out := cmd.OutOrStdout()
			session := usecase.NewContactSession(flow, usecase.WithStatusObserver(func(st domain.SubmissionStatus) {
				fmt.Fprintln(out, st.String())
			}))
			session.SetForm(form)

			st, err := session.Submit(cmd.Context())
			if err != nil {
				return err
			}
			if st.Kind != domain.StatusSucceeded {
				return errors.New(st.Message)
			}
			fmt.Fprintln(out, domain.MsgSent)
			return nil
		},
	}
	formFlags(cmd)
	return cmd
}
