package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"agency-contact-api/internal/usecase"
	"agency-contact-api/pkg/validation"
)

// validate: apply the form rules without sending anything.
func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a form against the validation rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flow := usecase.NewContactUsecase(nil, validation.New(), usecase.ContactOptions{})
			if err := flow.Validate(form).Err(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	formFlags(cmd)
	return cmd
}
