package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	auth "github.com/goliatone/go-blog-auth"
	"github.com/goliatone/go-blog-auth/activitymap"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server exposing the signup, login, password, profile
and user administration routes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			opts.ListenAddr = addr
		}

		if err := opts.Validate(); err != nil {
			return err
		}

		logger := newLogger(opts)

		repo, closeDB, err := openRepository(cmd, opts)
		if err != nil {
			return err
		}
		defer closeDB()

		app, err := NewApp(repo, opts, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("server listening", "addr", opts.ListenAddr)
			return app.Listen(opts.ListenAddr)
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("server shutting down")
			return app.ShutdownWithTimeout(10 * time.Second)
		})

		return g.Wait()
	},
}

// NewApp builds the fiber application with the auth routes mounted. A nil
// logger falls back to the one described by opts.
func NewApp(repo auth.RepositoryManager, opts auth.Options, logger auth.Logger) (*fiber.App, error) {
	if logger == nil {
		logger = newLogger(opts)
	}

	auther, err := auth.NewAuthenticator(repo, opts)
	if err != nil {
		return nil, err
	}
	auther.WithLogger(logger).WithActivitySink(activitymap.Sink(func(_ context.Context, record activitymap.Normalized) error {
		logger.Info("activity",
			"verb", record.Verb,
			"actor", record.ActorID,
			"object", record.ObjectID,
			"channel", record.Channel,
			"metadata", record.Metadata,
		)
		return nil
	}, activitymap.WithRedactedKeys("email")))

	routes, err := auth.NewHTTPAuthenticator(auther, opts)
	if err != nil {
		return nil, err
	}
	routes.WithLogger(logger)

	app := fiber.New(fiber.Config{
		AppName:               "blogauth",
		DisableStartupMessage: true,
		ErrorHandler:          routes.ErrorHandler,
	})

	controller := auth.NewHTTPController(auther, routes,
		auth.WithControllerLogger(logger),
		auth.WithControllerDebug(opts.Debug),
	)
	controller.RegisterRoutes(app)

	return app, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default BLOG_HTTP_ADDR or :8080)")
}
