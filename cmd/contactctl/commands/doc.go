// Package commands defines the contactctl operator CLI.
//
// Commands
//
//   - check-config  Verify the selected provider has all required settings
//   - validate      Run the form validation rules against flag values
//   - send          Submit a form through the configured provider
//
// The root command loads the same environment configuration as the API
// server, so a successful send here means the deployed service can send too.
package commands
