package commands

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/mazurov/bloglist-server/internal/client/auth"
	"github.com/mazurov/bloglist-server/internal/client/config"
	"github.com/mazurov/bloglist-server/internal/client/errors"
	"github.com/mazurov/bloglist-server/internal/client/output"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show authentication status and server information",
	Long: `Show the identity encoded in the stored session token.

Resolves server URL and token using normal precedence:
- URL: --url flag > BLOGCTL_URL env var > stored URL
- Token: --token flag > BLOGCTL_SESSION_TOKEN env var > stored token

The token is inspected locally without contacting the server, so an
expired or revoked token may still be shown here.`,
	Args: cobra.NoArgs,
	Run:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) {
	// Resolve URL
	serverURL, err := config.ResolveURL(flagURL)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	// Resolve token
	token, err := auth.ResolveToken(flagToken)
	if err != nil {
		errors.ExitWithError(err, "failed to resolve authentication token")
	}

	if token == "" {
		if flagJSON {
			output.OutputJSON(map[string]interface{}{
				"server":        serverURL,
				"authenticated": false,
			}, nil)
		} else {
			output.PrintError(fmt.Sprintf("Not authenticated to %s", serverURL))
			fmt.Println("Run 'blogctl login' to authenticate")
		}
		errors.ExitWithCode(errors.ExitAuthError, "")
	}

	// Decode token claims without verifying the signature. Only the
	// server knows the secret; this just reads what the token says.
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		errors.ExitWithCode(errors.ExitAuthError, "stored token is not a valid JWT. Run 'blogctl login' to authenticate")
	}

	username, _ := claims["username"].(string)
	userID, _ := claims["id"].(string)

	var expiry string
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiry = exp.Format(time.RFC3339)
	}

	if flagJSON {
		result := map[string]interface{}{
			"server":        serverURL,
			"authenticated": true,
			"username":      username,
			"id":            userID,
		}
		if expiry != "" {
			result["expires_at"] = expiry
		}
		output.OutputJSON(result, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Authenticated to %s as %s", serverURL, username))
		if expiry != "" {
			fmt.Printf("Token expires at %s\n", expiry)
		}
	}
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
