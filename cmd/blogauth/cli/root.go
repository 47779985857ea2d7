package cli

import (
	"os"

	auth "github.com/goliatone/go-blog-auth"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "blogauth",
	Short:         "Blog authentication service",
	Long:          `Run and administer the blog authentication service. Configuration is read from BLOG_ prefixed environment variables; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db-driver", "", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string")
	rootCmd.PersistentFlags().String("log-format", "", "log format (json, text)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// loadOptions reads the environment and applies flag overrides
func loadOptions(cmd *cobra.Command) (auth.Options, error) {
	opts, err := auth.LoadOptions()
	if err != nil {
		return opts, err
	}

	flags := cmd.Flags()
	if flags.Changed("db-driver") {
		opts.DatabaseDriver, _ = flags.GetString("db-driver")
	}
	if flags.Changed("db-dsn") {
		opts.DatabaseDSN, _ = flags.GetString("db-dsn")
	}
	if flags.Changed("log-format") {
		opts.LogFormat, _ = flags.GetString("log-format")
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		opts.Debug = true
	}

	return opts, nil
}

func newLogger(opts auth.Options) auth.Logger {
	return auth.NewSlogLogger(os.Stderr, opts.LogFormat, opts.Debug)
}

// openRepository opens the configured database and applies migrations
func openRepository(cmd *cobra.Command, opts auth.Options) (auth.RepositoryManager, func() error, error) {
	db, err := auth.OpenDatabase(opts.DatabaseDriver, opts.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	repo := auth.NewRepositoryManager(db)
	if err := repo.Migrate(cmd.Context()); err != nil {
		db.Close()
		return nil, nil, err
	}

	return repo, db.Close, nil
}
