package main

import (
	"os"

	"agency-contact-api/cmd/contactctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
