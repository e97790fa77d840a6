package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mazurov/bloglist-server/internal/client"
	"github.com/mazurov/bloglist-server/internal/client/auth"
	"github.com/mazurov/bloglist-server/internal/client/config"
	"github.com/mazurov/bloglist-server/internal/client/errors"
	"github.com/mazurov/bloglist-server/internal/client/output"
	"github.com/mazurov/bloglist-server/internal/client/prompts"
)

var loginCmd = &cobra.Command{
	Use:   "login [server-url]",
	Short: "Authenticate with a bloglist server",
	Long: `Authenticate with a bloglist server and store the session token securely.

Server URL can be provided as an argument or via BLOGCTL_URL environment variable.
If both are provided, the argument takes precedence.

Credentials are stored:
- macOS: Token in Keychain, URL in config file
- Linux: Both in config file with 0600 permissions

Only one server's credentials are stored at a time. Logging into a new server
replaces existing credentials.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) {
	var serverURL string

	// Resolve server URL: argument takes precedence over environment variable
	if len(args) > 0 {
		serverURL = args[0]
	} else {
		var err error
		serverURL, err = config.ResolveURL("")
		if err != nil {
			errors.ExitWithCode(errors.ExitInvalidArguments, "no server URL specified. Provide server URL as argument or set BLOGCTL_URL environment variable")
		}
	}

	// Normalize URL (remove trailing slash)
	serverURL = config.NormalizeURL(serverURL)

	// Prompt for credentials
	username, err := prompts.PromptUsername()
	if err != nil {
		errors.ExitWithError(err, "failed to read username")
	}

	password, err := prompts.PromptPassword()
	if err != nil {
		errors.ExitWithError(err, "failed to read password")
	}

	// Exchange credentials for a session token
	c := client.NewClient(serverURL, "", flagTimeout, flagVerbose)
	resp, err := c.Post("/api/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		errors.ExitWithError(err, "failed to connect to server")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		errors.ExitWithCode(errors.ExitAuthError, "authentication failed: invalid username or password")
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("login failed: %s", string(body)))
	}

	var loginResp struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		errors.ExitWithError(err, "failed to parse login response")
	}
	if loginResp.Token == "" {
		errors.ExitWithCode(errors.ExitGeneralError, "server did not return a token")
	}

	// Authentication successful - store credentials
	if err := auth.SaveCredentials(serverURL, loginResp.Token); err != nil {
		errors.ExitWithError(err, "failed to save credentials")
	}

	if flagJSON {
		output.OutputJSON(map[string]string{
			"server": serverURL,
			"user":   loginResp.Username,
		}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Logged in to %s as %s", serverURL, loginResp.Username))
	}
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
