package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stranadev/helpdesk-client/config"
	"github.com/stranadev/helpdesk-client/helpdesk"
)

var (
	cfgFile     string
	cfg         *config.Config
	logger      zerolog.Logger
	client      *helpdesk.Client
	asyncClient *helpdesk.AsyncClient
	formatter   *ConsoleFormatter

	// Global flags
	jsonOutput bool

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "A command line client for the ServiceDesk v3 API",
	Long: `helpdesk is a CLI for a ServiceDesk portal. It reads and creates tickets,
adds notes and attachments, browses the service catalog and downloads files
through the v3 REST API.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records the build information printed by the version command
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print decoded responses as JSON")

	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
		return nil
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	userAgent := cfg.Helpdesk.UserAgent
	if userAgent == "" {
		userAgent = "helpdesk-cli/" + version
	}

	transport, err := helpdesk.NewHTTPTransport(cfg.Helpdesk.URL,
		helpdesk.WithAPIKey(cfg.Helpdesk.AuthHeader, cfg.Helpdesk.APIKey),
		helpdesk.WithTimeout(cfg.Helpdesk.Timeout),
		helpdesk.WithUserAgent(userAgent),
	)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	client, err = helpdesk.NewClient(transport,
		helpdesk.WithLogger(logger),
		helpdesk.WithAttachmentField(helpdesk.AttachmentField(cfg.Helpdesk.AttachmentField)),
	)
	if err != nil {
		return fmt.Errorf("failed to create helpdesk client: %w", err)
	}

	asyncClient = helpdesk.NewAsyncClient(client)
	formatter = NewConsoleFormatter()

	logger.Debug().Str("url", transport.BaseURL()).Msg("Helpdesk client ready")
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No config needed
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "helpdesk %s (built %s)\n", version, buildTime)
	},
}

// render prints v as JSON when --json is set and text otherwise
func render(v any, text func() string) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Print(text())
	return nil
}

// parseIDs parses command line identifiers
func parseIDs(args []string) ([]helpdesk.ID, error) {
	ids := make([]helpdesk.ID, 0, len(args))
	for _, arg := range args {
		id, err := helpdesk.ParseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
