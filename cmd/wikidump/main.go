package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/app"
	"github.com/yourusername/wikidump-go/internal/domain"
	"github.com/yourusername/wikidump-go/internal/infrastructure"
	"github.com/yourusername/wikidump-go/pkg/logger"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "wikidump",
		Short: "wikidump - Wikimedia enterprise HTML dump fetcher",
		Long: `Locates the latest Wikimedia enterprise HTML dump for a language, project and
namespace, downloads it once into a local directory and streams its records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: ./configs, $HOME/.wikidump, /etc/wikidump)")
	flags.String("dir", "", "Download directory")
	flags.StringP("lang", "l", "", "Language code, e.g. en")
	flags.StringP("type", "t", "", "Dump type: wiki, wiktionary, wikibooks, wikinews, wikisource, wikiquote, wikiversity, wikivoyage")
	flags.IntP("ns", "n", 0, "Namespace number")
	flags.Bool("strict", false, "Anchor archive names on <lang><type>-NS<ns>- instead of substring matching")
	flags.String("index-url", "", "Run index URL")

	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// application holds the wired components for one command run
type application struct {
	config *domain.Config
	log    *zap.Logger
	events *logger.MultiLogger
	repo   *infrastructure.SQLiteDumpRepository
	svc    *app.DumpService
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(cmd *cobra.Command) (*domain.Config, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, config); err != nil {
		return nil, err
	}

	if err := config.Dump.Descriptor().Validate(); err != nil {
		return nil, fmt.Errorf("invalid dump selection: %w", err)
	}
	if config.Download.Dir == "" {
		return nil, fmt.Errorf("download directory not configured")
	}
	return config, nil
}

// applyFlags copies the persistent flags the user set into config
func applyFlags(cmd *cobra.Command, config *domain.Config) error {
	flags := cmd.Flags()
	if flags.Changed("dir") {
		config.Download.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("lang") {
		config.Dump.Language, _ = flags.GetString("lang")
	}
	if flags.Changed("type") {
		value, _ := flags.GetString("type")
		dumpType, err := domain.ParseDumpType(value)
		if err != nil {
			return err
		}
		config.Dump.Type = string(dumpType)
	}
	if flags.Changed("ns") {
		config.Dump.Namespace, _ = flags.GetInt("ns")
	}
	if flags.Changed("strict") {
		config.Dump.StrictMatch, _ = flags.GetBool("strict")
	}
	if flags.Changed("index-url") {
		config.Dump.IndexURL, _ = flags.GetString("index-url")
		if config.Dump.IndexURL != "" && config.Dump.IndexURL[len(config.Dump.IndexURL)-1] != '/' {
			config.Dump.IndexURL += "/"
		}
	}

	if f := flags.Lookup("bytes"); f != nil && f.Changed {
		config.Extract.Mode = string(domain.ModeBytes)
	}
	return nil
}

// newApplication wires the pipeline from configuration
func newApplication(cmd *cobra.Command) (*application, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &application{config: config, log: log}

	if config.Logging.EventsDir != "" {
		a.events, err = logger.NewMultiLogger(logger.MultiLoggerConfig{
			Level:   config.Logging.Level,
			LogsDir: config.Logging.EventsDir,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize event logs: %w", err)
		}
	}

	var repo domain.DumpRepository
	if config.Catalog.Enabled {
		a.repo, err = infrastructure.NewSQLiteDumpRepository(config.Catalog.DatabasePath)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open dump catalog: %w", err)
		}
		repo = a.repo
	}

	notifier := infrastructure.NewNotificationService(&config.Notification, log)
	fetcher := infrastructure.NewHTTPListingFetcher(&config.HTTP, log)
	transferer := infrastructure.NewHTTPTransferer(&config.HTTP, &config.Download, log)
	policy := config.Dump.Policy()

	a.svc = app.NewDumpService(
		config,
		app.NewRunResolver(fetcher, log),
		app.NewDumpMatcher(fetcher, policy, log),
		app.NewDownloadManager(transferer, repo, notifier, a.events, policy, log),
		infrastructure.NewTarExtractor(&config.Extract, log),
		repo,
		log,
	)

	return a, nil
}

// Close releases the catalog and flushes logs
func (a *application) Close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn("Failed to close dump catalog", zap.Error(err))
		}
	}
	if a.events != nil {
		a.events.Close()
	}
	a.log.Sync()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
