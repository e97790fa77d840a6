package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mazurov/bloglist-server/internal/cli"
)

var version = "1.0.0"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bloglist",
	Short: "Bloglist API Server",
	Long: `Bloglist server provides a REST API for blog entries: public listing,
authenticated creation and update, owner-only deletion, user registration
and token-based login.`,
	Version: version,
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(cli.ServerCmd)

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Version}}
`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
