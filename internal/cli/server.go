package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mazurov/bloglist-server/internal/auth"
	"github.com/mazurov/bloglist-server/internal/config"
	"github.com/mazurov/bloglist-server/internal/server"
	"github.com/mazurov/bloglist-server/internal/server/handlers"
	"github.com/mazurov/bloglist-server/internal/storage"
)

var configFile string

// ServerCmd represents the server command
var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the bloglist HTTP server",
	Long:  `Start the HTTP server that provides the bloglist REST API: blog CRUD, user registration and token-based login.`,
	RunE:  runServer,
}

func init() {
	ServerCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (optional, can also use BLOGLIST_CONFIG_FILE env var)")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Check for config file from environment variable if not provided via flag
	if configFile == "" {
		configFile = os.Getenv("BLOGLIST_CONFIG_FILE")
	}

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create logger
	logger := server.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	// Log startup
	logger.Info("Server starting",
		"port", cfg.Server.Port,
		"config_file", configFile,
		"secret", cfg.MaskSecret())

	// Open storage
	store, err := storage.Open(cfg.Database.DSN, logger)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Create token service
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	// Create server
	srv := server.NewServer(cfg, logger, store, tokens)

	// Create all handlers
	blogHandler := handlers.NewBlogHandler(store, logger)
	userHandler := handlers.NewUserHandler(store, logger)
	loginHandler := handlers.NewLoginHandler(store, tokens, logger)
	healthHandler := handlers.NewHealthHandler(store, logger)

	// Set all handlers
	srv.SetHandlers(server.HandlerSet{
		Health:     healthHandler.GetHealth,
		ListBlogs:  blogHandler.ListBlogs,
		GetBlog:    blogHandler.GetBlog,
		CreateBlog: blogHandler.CreateBlog,
		UpdateBlog: blogHandler.UpdateBlog,
		DeleteBlog: blogHandler.DeleteBlog,
		ListUsers:  userHandler.ListUsers,
		CreateUser: userHandler.CreateUser,
		Login:      loginHandler.Login,
	})

	// Start server
	logger.Info("Server ready to accept connections",
		"address", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port))

	if err := srv.Start(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}

	return nil
}
