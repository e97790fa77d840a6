package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mazurov/bloglist-server/internal/client"
	"github.com/mazurov/bloglist-server/internal/client/auth"
	"github.com/mazurov/bloglist-server/internal/client/config"
	"github.com/mazurov/bloglist-server/internal/client/errors"
	"github.com/mazurov/bloglist-server/internal/client/output"
	"github.com/mazurov/bloglist-server/internal/client/prompts"
)

var (
	// Blog command flags
	blogAuthor      string
	blogURL         string
	blogCreateLikes int
	blogUpdateLikes int
)

// blogEntry mirrors the API's blog representation
type blogEntry struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	User   *struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"user,omitempty"`
}

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Manage blog entries",
	Long:  `Create, list, get, update, like, and delete blog entries.`,
}

var blogCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new blog entry",
	Args:  cobra.ExactArgs(1),
	Run:   runBlogCreate,
}

var blogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all blog entries",
	Args:  cobra.NoArgs,
	Run:   runBlogList,
}

var blogGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get blog entry details",
	Args:  cobra.ExactArgs(1),
	Run:   runBlogGet,
}

var blogUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a blog entry",
	Args:  cobra.ExactArgs(1),
	Run:   runBlogUpdate,
}

var blogLikeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Increment the like count of a blog entry",
	Args:  cobra.ExactArgs(1),
	Run:   runBlogLike,
}

var blogDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a blog entry (owner only)",
	Args:  cobra.ExactArgs(1),
	Run:   runBlogDelete,
}

func init() {
	// Add subcommands
	blogCmd.AddCommand(blogCreateCmd)
	blogCmd.AddCommand(blogListCmd)
	blogCmd.AddCommand(blogGetCmd)
	blogCmd.AddCommand(blogUpdateCmd)
	blogCmd.AddCommand(blogLikeCmd)
	blogCmd.AddCommand(blogDeleteCmd)

	// Create flags
	blogCreateCmd.Flags().StringVar(&blogAuthor, "author", "", "Blog author")
	blogCreateCmd.Flags().StringVar(&blogURL, "blog-url", "", "Blog URL (required)")
	blogCreateCmd.Flags().IntVar(&blogCreateLikes, "likes", 0, "Initial like count")
	blogCreateCmd.MarkFlagRequired("blog-url")

	// Update flags
	blogUpdateCmd.Flags().StringVar(&blogAuthor, "author", "", "Blog author")
	blogUpdateCmd.Flags().StringVar(&blogURL, "blog-url", "", "Blog URL")
	blogUpdateCmd.Flags().IntVar(&blogUpdateLikes, "likes", -1, "Like count")

	rootCmd.AddCommand(blogCmd)
}

func getAuthenticatedClient() *client.Client {
	serverURL, err := config.ResolveURL(flagURL)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	token, err := auth.ResolveToken(flagToken)
	if err != nil {
		errors.ExitWithError(err, "failed to resolve authentication token")
	}

	// Send token if available; server decides which routes require it
	return client.NewClient(serverURL, token, flagTimeout, flagVerbose)
}

func fetchBlog(c *client.Client, id string) blogEntry {
	resp, err := c.Get("/api/blogs/" + id)
	if err != nil {
		errors.ExitWithError(err, "failed to get blog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to get blog: %s", string(body)))
	}

	var blog blogEntry
	if err := json.NewDecoder(resp.Body).Decode(&blog); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}
	return blog
}

func runBlogCreate(cmd *cobra.Command, args []string) {
	title := args[0]
	c := getAuthenticatedClient()

	reqBody := map[string]interface{}{
		"title": title,
		"url":   blogURL,
	}
	if blogAuthor != "" {
		reqBody["author"] = blogAuthor
	}
	if blogCreateLikes > 0 {
		reqBody["likes"] = blogCreateLikes
	}

	resp, err := c.Post("/api/blogs", reqBody)
	if err != nil {
		errors.ExitWithError(err, "failed to create blog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to create blog: %s", string(body)))
	}

	var blog blogEntry
	if err := json.NewDecoder(resp.Body).Decode(&blog); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(blog, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Created blog '%s' (%s)", blog.Title, blog.ID))
	}
}

func runBlogList(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()

	resp, err := c.Get("/api/blogs")
	if err != nil {
		errors.ExitWithError(err, "failed to list blogs")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to list blogs: %s", string(body)))
	}

	var blogs []blogEntry
	if err := json.NewDecoder(resp.Body).Decode(&blogs); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(blogs, nil)
		return
	}

	if len(blogs) == 0 {
		fmt.Println("No blogs found")
		return
	}

	table := output.NewTableWriter()
	table.WriteHeader("ID", "TITLE", "AUTHOR", "LIKES", "OWNER")
	for _, blog := range blogs {
		owner := ""
		if blog.User != nil {
			owner = blog.User.Username
		}
		table.WriteRow(blog.ID, blog.Title, blog.Author, strconv.Itoa(blog.Likes), owner)
	}
	table.Flush()
}

func runBlogGet(cmd *cobra.Command, args []string) {
	c := getAuthenticatedClient()
	blog := fetchBlog(c, args[0])

	if flagJSON {
		output.OutputJSON(blog, nil)
		return
	}

	fmt.Printf("ID: %s\n", blog.ID)
	fmt.Printf("Title: %s\n", blog.Title)
	fmt.Printf("Author: %s\n", blog.Author)
	fmt.Printf("URL: %s\n", blog.URL)
	fmt.Printf("Likes: %d\n", blog.Likes)
	if blog.User != nil {
		fmt.Printf("Owner: %s (%s)\n", blog.User.Username, blog.User.Name)
	}
}

func runBlogUpdate(cmd *cobra.Command, args []string) {
	id := args[0]
	c := getAuthenticatedClient()

	// Update is full replacement on the server, so start from the
	// current state and overlay the provided flags.
	current := fetchBlog(c, id)

	reqBody := map[string]interface{}{
		"title":  current.Title,
		"author": current.Author,
		"url":    current.URL,
		"likes":  current.Likes,
	}
	if blogAuthor != "" {
		reqBody["author"] = blogAuthor
	}
	if blogURL != "" {
		reqBody["url"] = blogURL
	}
	if blogUpdateLikes >= 0 {
		reqBody["likes"] = blogUpdateLikes
	}

	resp, err := c.Put("/api/blogs/"+id, reqBody)
	if err != nil {
		errors.ExitWithError(err, "failed to update blog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to update blog: %s", string(body)))
	}

	var blog blogEntry
	if err := json.NewDecoder(resp.Body).Decode(&blog); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(blog, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Updated blog '%s'", blog.Title))
	}
}

func runBlogLike(cmd *cobra.Command, args []string) {
	id := args[0]
	c := getAuthenticatedClient()

	current := fetchBlog(c, id)

	reqBody := map[string]interface{}{
		"title":  current.Title,
		"author": current.Author,
		"url":    current.URL,
		"likes":  current.Likes + 1,
	}

	resp, err := c.Put("/api/blogs/"+id, reqBody)
	if err != nil {
		errors.ExitWithError(err, "failed to like blog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to like blog: %s", string(body)))
	}

	var blog blogEntry
	if err := json.NewDecoder(resp.Body).Decode(&blog); err != nil {
		errors.ExitWithError(err, "failed to parse response")
	}

	if flagJSON {
		output.OutputJSON(blog, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Liked '%s' (%d likes)", blog.Title, blog.Likes))
	}
}

func runBlogDelete(cmd *cobra.Command, args []string) {
	id := args[0]
	c := getAuthenticatedClient()

	// Prompt for confirmation unless --yes flag is set
	if !flagYes {
		blog := fetchBlog(c, id)
		if !prompts.ConfirmDeletion("blog", blog.Title) {
			fmt.Println("Deletion cancelled")
			return
		}
	}

	resp, err := c.Delete("/api/blogs/" + id)
	if err != nil {
		errors.ExitWithError(err, "failed to delete blog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		errors.HandleHTTPError(resp.StatusCode, fmt.Sprintf("failed to delete blog: %s", string(body)))
	}

	if flagJSON {
		output.OutputJSON(map[string]bool{"deleted": true}, nil)
	} else {
		output.PrintSuccess(fmt.Sprintf("Deleted blog '%s'", id))
	}
}
