package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "remoteuserctl",
	Short: "Run and manage the remote-user authentication server",
	Long: `Run and manage a server that trusts a reverse proxy to authenticate users
and reads the username and roles from the remote-user, x-remote-user and
x-remote-user-roles request headers.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
