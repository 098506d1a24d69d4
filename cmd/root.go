package cmd

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"game-catalog/pkg/backend"
	"game-catalog/pkg/config"
	"game-catalog/pkg/logging"
	"game-catalog/pkg/services"
	"game-catalog/pkg/storage"
)

// Configuration flags
var (
	apiURL     string
	portNumber string
	adminKey   string
	stateFile  string
	bucketName string
	logLevel   string
	logFile    string
)

// logCloser flushes the rotating log file, if any
var logCloser io.Closer

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "game-catalog",
		Short: "Game Catalog is a front end for a community game catalog",
		Long: `Game Catalog serves the listing, detail, upload and moderation pages of a
community game catalog backed by a REST API. The same operations are
available from the command line.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			applyFlags()
			logCloser = logging.Setup(logging.Options{Level: os.Getenv("LOG_LEVEL"), File: os.Getenv("LOG_FILE")})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "a", "", "Set the API_URL (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&adminKey, "admin-key", "k", "", "Set the ADMIN_KEY (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state-file", "", "Set the STATE_FILE (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&bucketName, "bucket", "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set the LOG_LEVEL (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Set the LOG_FILE (overrides environment variable)")

	// Add commands to root
	rootCmd.AddCommand(newListCategoriesCmd())
	rootCmd.AddCommand(newListGamesCmd())
	rootCmd.AddCommand(newShowGameCmd())
	rootCmd.AddCommand(newFavoriteCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// applyFlags sets environment variables from flags if provided
func applyFlags() {
	for env, value := range map[string]string{
		"API_URL":     apiURL,
		"PORT":        portNumber,
		"ADMIN_KEY":   adminKey,
		"STATE_FILE":  stateFile,
		"BUCKET_NAME": bucketName,
		"LOG_LEVEL":   logLevel,
		"LOG_FILE":    logFile,
	} {
		if value != "" {
			os.Setenv(env, value)
		}
	}
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	applyFlags()
	// Load configuration from environment variables (potentially set above)
	return config.Load()
}

// setup loads the configuration and initializes the catalog service
func setup() (*config.Config, *backend.Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	client := backend.New(cfg.APIURL, nil)
	services.InitService(cfg, client)
	return cfg, client, nil
}

// stateStore is the CLI's stand-in for browser storage
func stateStore(cfg *config.Config) *storage.FileStore {
	return storage.NewFileStore(afero.NewOsFs(), cfg.StateFile)
}
