package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mazurov/bloglist-server/internal/client"
	"github.com/mazurov/bloglist-server/internal/client/config"
	"github.com/mazurov/bloglist-server/internal/client/errors"
	"github.com/mazurov/bloglist-server/internal/client/output"
	"github.com/mazurov/bloglist-server/internal/client/prompts"
)

var registerName string

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a new user account",
	Long: `Create a new user account on the bloglist server.

Prompts for a password (minimum 3 characters). Registration does not
log you in; run 'blogctl login' afterwards.`,
	Args: cobra.ExactArgs(1),
	Run:  runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) {
	username := args[0]

	serverURL, err := config.ResolveURL(flagURL)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	password, err := prompts.PromptPassword()
	if err != nil {
		errors.ExitWithError(err, "failed to read password")
	}

	reqBody := map[string]string{
		"username": username,
		"password": password,
	}
	if registerName != "" {
		reqBody["name"] = registerName
	}

	c := client.NewClient(serverURL, "", flagTimeout, flagVerbose)
	resp, err := c.Post("/api/users", reqBody)
	if err != nil {
		errors.ExitWithError(err, "failed to connect to server")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("registration failed: %s", string(body)))
	}

	var user struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(user, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Registered user '%s'", user.Username))
		fmt.Println("Run 'blogctl login' to authenticate")
	}
}
