package commands

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagURL     string
	flagToken   string
	flagJSON    bool
	flagVerbose bool
	flagTimeout time.Duration
	flagYes     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "Bloglist CLI Client",
	Long: `blogctl is a command-line client for the bloglist REST API.

It provides user registration, token-based login, and full CRUD
operations for blog entries.`,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Server URL (or use BLOGCTL_URL env var)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Bearer token (or use BLOGCTL_SESSION_TOKEN env var)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "HTTP request timeout")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompts")
}
