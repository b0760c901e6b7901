package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cedadev/remoteuser/pkg/config"
)

// configurationApplyCmd represents the configuration apply command
var configurationApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Signal the server to apply new configuration",
	Long: `Validate the current state of the configuration file and then signal the
running server to reload it.

Note that this will NOT incorporate changes to environment variables because
Linux process environments are static once a process has started.

Use --test to validate configuration without signalling the server.

Example:
  remoteuserctl configuration apply
  remoteuserctl configuration apply --test`,
	Run: func(cmd *cobra.Command, args []string) {
		testMode, _ := cmd.Flags().GetBool("test")

		if err := applyConfiguration(cmd.OutOrStdout(), testMode); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationApplyCmd)
	configurationApplyCmd.Flags().Bool("test", false, "Validate configuration without reloading the server")
}

func applyConfiguration(w io.Writer, testMode bool) error {
	fmt.Fprintln(w, "Validating configuration...")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Fprintf(w, "Config file: %s\n", cfg.ConfigFilePath())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Fprintln(w, "Configuration is valid.")

	if testMode {
		fmt.Fprintln(w, "Test mode: not reloading server.")
		return nil
	}

	fmt.Fprintln(w, "Sending reload signal to server...")

	pgrep := exec.Command("pgrep", "-f", "remoteuserctl server")
	output, err := pgrep.Output()
	if err != nil {
		return fmt.Errorf("no running remoteuserctl server found")
	}

	var pid int
	if _, err := fmt.Sscanf(string(output), "%d", &pid); err != nil {
		return fmt.Errorf("failed to parse PID: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGHUP); err != nil {
		return fmt.Errorf("failed to send signal: %w", err)
	}

	fmt.Fprintf(w, "Sent reload signal to process %d\n", pid)
	return nil
}
