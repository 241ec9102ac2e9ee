package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"markdownd/internal/api"
	"markdownd/internal/config"
	"markdownd/internal/converter"
	"markdownd/internal/monitoring"
	"markdownd/internal/urlconv"
)

// Exit codes for granular error handling
const (
	ExitSuccess      = 0
	ExitNetworkError = 1
	ExitProcessError = 2
	ExitInvalidInput = 3
	ExitConfigError  = 4
	ExitFileIOError  = 5
)

var (
	cfgFile string
	port    int
	verbose bool
	quiet   bool
)

const version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:   "markdownd",
	Short: "Convert documents and URLs to markdown",
	Long: `markdownd converts documents and URLs to markdown, over HTTP or from
the command line. YouTube URLs resolve to the video transcript.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	RunE:  runServe,
}

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a local file to markdown on stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var urlCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Convert a URL to markdown on stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runURL,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitErr); ok {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(ExitInvalidInput)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/markdownd/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all non-content output")

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(urlCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			if !quiet {
				fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			}
			return
		}
		configHome = filepath.Join(home, ".config")
	}

	configDir := filepath.Join(configHome, "markdownd")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("toml")
	viper.SetConfigName("config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Auto-create config on first run
			configPath := filepath.Join(configDir, "config.toml")
			if createErr := config.Default().CreateExampleConfig(configPath); createErr == nil {
				if !quiet {
					fmt.Fprintf(os.Stderr, "Created config file: %s\n", configPath)
				}
				viper.ReadInConfig()
			}
		} else if verbose && !quiet {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	} else if verbose && !quiet {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	if quiet {
		level = "error"
	}

	zapCfg := zap.NewProductionConfig()
	if err := zapCfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zapCfg.Build()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return exitError(ExitConfigError, "failed to load config: %v", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return exitError(ExitConfigError, "%v", err)
	}
	defer logger.Sync()

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	files := converter.NewAdapter(converter.DefaultRegistry())
	urls := urlconv.New(cfg, logger, metrics)
	server := api.NewServer(cfg, files, urls, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port))
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return exitError(ExitNetworkError, "server error: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return exitError(ExitNetworkError, "shutdown error: %v", err)
		}
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return exitError(ExitFileIOError, "failed to open %s: %v", args[0], err)
	}
	defer f.Close()

	adapter := converter.NewAdapter(converter.DefaultRegistry())
	result, _, err := adapter.Convert(cmd.Context(), f, filepath.Base(args[0]))
	if err != nil {
		return exitError(ExitProcessError, "conversion failed: %v", err)
	}

	fmt.Print(result.Markdown)
	return nil
}

func runURL(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return exitError(ExitConfigError, "failed to load config: %v", err)
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = newLogger(cfg); err != nil {
			return exitError(ExitConfigError, "%v", err)
		}
		defer logger.Sync()
	}

	service := urlconv.New(cfg, logger, nil)
	result, err := service.Convert(cmd.Context(), args[0])
	if err != nil {
		return exitError(ExitNetworkError, "url conversion failed: %v", err)
	}

	fmt.Print(result.Markdown)
	return nil
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string {
	return e.msg
}

func exitError(code int, format string, args ...interface{}) *exitErr {
	msg := fmt.Sprintf(format, args...)
	if msg != "" && !quiet {
		fmt.Fprintf(os.Stderr, "%s\n", msg)
	}
	return &exitErr{code: code, msg: msg}
}
