package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mazurov/bloglist-server/internal/client/errors"
	"github.com/mazurov/bloglist-server/internal/client/output"
)

// userEntry mirrors the API's user representation
type userEntry struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Blogs    []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"blogs"`
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long:  `List registered users and the blogs they own.`,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	Run:   runUserList,
}

func init() {
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserList(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	resp, err := c.Get("/api/users")
	if err != nil {
		errors.ExitWithError(err, "failed to list users")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to list users: %s", string(body)))
	}

	var users []userEntry
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(users, nil)
		return
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return
	}

	table := output.NewTableWriter()
	table.WriteHeader("ID", "USERNAME", "NAME", "BLOGS")
	for _, user := range users {
		table.WriteRow(user.ID, user.Username, user.Name, strconv.Itoa(len(user.Blogs)))
	}
	table.Flush()
}
