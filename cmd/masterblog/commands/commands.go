package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/masterblog/core/internal/adapters/repository"
	"github.com/masterblog/core/internal/application/services"
	"github.com/masterblog/core/internal/infrastructure/config"
	"github.com/masterblog/core/internal/infrastructure/database"
	"github.com/masterblog/core/internal/infrastructure/logger"
	"github.com/masterblog/core/internal/infrastructure/server"
	"github.com/masterblog/core/internal/ports"
)

// Set at build time with -ldflags "-X .../commands.Version=..."
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var validate = validator.New()

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Masterblog web server",
		Long:  "Start the Masterblog web server with the blog pages, the books API and the health and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// NewPostsCommand creates the offline post management command
func NewPostsCommand() *cobra.Command {
	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage blog posts",
		Long:  "List, add, like, update and delete posts directly in the configured store",
	}

	postsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostService(func(ctx context.Context, svc ports.PostService) error {
				posts, err := svc.ListPosts(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tAUTHOR\tTITLE\tLIKES")
				for _, p := range posts {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", p.ID, p.Author, p.Title, p.Likes)
				}
				return w.Flush()
			})
		},
	})

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req ports.CreatePostRequest
			req.Author, _ = cmd.Flags().GetString("author")
			req.Title, _ = cmd.Flags().GetString("title")
			req.Content, _ = cmd.Flags().GetString("content")
			if err := validate.Struct(&req); err != nil {
				return fmt.Errorf("invalid post: %w", err)
			}

			return withPostService(func(ctx context.Context, svc ports.PostService) error {
				post, err := svc.CreatePost(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Post %d created\n", post.ID)
				return nil
			})
		},
	}
	addPostFlags(addCmd)
	postsCmd.AddCommand(addCmd)

	postsCmd.AddCommand(&cobra.Command{
		Use:   "like [id]",
		Short: "Like a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withPostService(func(ctx context.Context, svc ports.PostService) error {
				post, err := svc.LikePost(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Post %d now has %d likes\n", post.ID, post.Likes)
				return nil
			})
		},
	})

	updateCmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace the author, title and content of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req ports.UpdatePostRequest
			req.Author, _ = cmd.Flags().GetString("author")
			req.Title, _ = cmd.Flags().GetString("title")
			req.Content, _ = cmd.Flags().GetString("content")
			if err := validate.Struct(&req); err != nil {
				return fmt.Errorf("invalid post: %w", err)
			}

			return withPostService(func(ctx context.Context, svc ports.PostService) error {
				if _, err := svc.UpdatePost(ctx, id, req); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Post %d updated\n", id)
				return nil
			})
		},
	}
	addPostFlags(updateCmd)
	postsCmd.AddCommand(updateCmd)

	postsCmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withPostService(func(ctx context.Context, svc ports.PostService) error {
				if err := svc.DeletePost(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Post %d deleted\n", id)
				return nil
			})
		},
	})

	return postsCmd
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the PostgreSQL schema (up, down, version) and import the JSON document into it",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				changed, err := m.Up()
				if err != nil {
					return err
				}
				printMigrationResult(cmd, "up", changed)
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				changed, err := m.Down()
				if err != nil {
					return err
				}
				printMigrationResult(cmd, "down", changed)
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
				fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
				return nil
			})
		},
	})

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the JSON post document into PostgreSQL",
		Long:  "Read every post from the JSON document and replace the contents of the posts table with them, keeping ids and likes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			n, err := runImport(cmd.Context(), from)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d posts\n", n)
			return nil
		},
	}
	importCmd.Flags().String("from", "", "JSON document to import (defaults to storage.path)")
	migrateCmd.AddCommand(importCmd)

	return migrateCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Masterblog version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Masterblog %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}
}

func addPostFlags(cmd *cobra.Command) {
	cmd.Flags().String("author", "", "Post author (required)")
	cmd.Flags().String("title", "", "Post title (required)")
	cmd.Flags().String("content", "", "Post content (required)")
	_ = cmd.MarkFlagRequired("author")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}

func printMigrationResult(cmd *cobra.Command, direction string, changed bool) {
	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migration %s completed successfully\n", direction)
}

func loadRuntime() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, appLogger, nil
}

// openPostRepository builds the store selected by storage.driver. The returned
// *database.DB is nil for the json driver.
func openPostRepository(cfg *config.Config, appLogger *logger.Logger) (ports.PostRepository, *database.DB, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		appLogger.Infow("Using PostgreSQL post store", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return repository.NewPostgresPostRepository(db.DB), db, nil

	default:
		repo := repository.NewJSONPostRepository(cfg.Storage.Path)
		if cfg.Storage.CreateIfMissing {
			if err := repo.Init(); err != nil {
				return nil, nil, err
			}
		}
		appLogger.Infow("Using JSON post store", "path", repo.Path())
		return repo, nil, nil
	}
}

func withPostService(fn func(ctx context.Context, svc ports.PostService) error) error {
	cfg, appLogger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	repo, _, err := openPostRepository(cfg, appLogger)
	if err != nil {
		return err
	}
	defer repo.Close()

	return fn(context.Background(), services.NewPostService(repo, appLogger, nil))
}

func withMigrator(fn func(m *database.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	m, err := database.NewMigrator(cfg.Database)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

func runImport(ctx context.Context, from string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, appLogger, err := loadRuntime()
	if err != nil {
		return 0, err
	}
	defer appLogger.Sync()

	if from == "" {
		from = cfg.Storage.Path
	}

	posts, err := repository.NewJSONPostRepository(from).Load(ctx)
	if err != nil {
		return 0, err
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := repository.NewPostgresPostRepository(db.DB).Save(ctx, posts); err != nil {
		return 0, err
	}

	appLogger.Infow("Imported posts into PostgreSQL", "count", len(posts), "from", from)
	return len(posts), nil
}

func runServer() error {
	cfg, appLogger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	repo, db, err := openPostRepository(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open post store: %w", err)
	}
	defer repo.Close()

	srv, err := server.New(cfg, repo, db, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		appLogger.Infow("Starting Masterblog server",
			"address", cfg.Server.GetAddr(),
			"environment", cfg.App.Environment,
			"storage_driver", cfg.Storage.Driver,
		)
		if err := srv.Start(cfg.Server.GetAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	appLogger.Infow("Shutting down server...")

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Infow("Server exited gracefully")
	return nil
}
