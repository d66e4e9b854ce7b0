// Command pdfworkbench merges, splits, rotates, compresses and converts PDF
// files locally and saves the results to a directory or a GCS bucket.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfworkbench/internal/config"
	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	v       = config.New()
	cfg     config.Config
	initErr error
)

var rootCmd = &cobra.Command{
	Use:   "pdfworkbench",
	Short: "Local PDF tools: merge, split, rotate, compress and convert",
	Long: `pdfworkbench runs PDF utilities entirely on this machine. Every tool
takes its input files as arguments, checks them against the tool's accepted
types and size limit, and saves the results to --out, which is a local
directory or a gs://bucket/prefix location.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if initErr != nil {
			return initErr
		}
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./pdfworkbench.yaml or ~/.config/pdfworkbench/pdfworkbench.yaml)")
	flags.StringP("out", "o", ".", "output directory or gs://bucket/prefix")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "json", "log format: json or text")
	flags.Int("workers", 0, "parallel files/pages per operation (default: number of CPUs)")

	mustBind(config.KeyOutputTarget, flags.Lookup("out"))
	mustBind(config.KeyLogLevel, flags.Lookup("log-level"))
	mustBind(config.KeyLogFormat, flags.Lookup("log-format"))
	mustBind(config.KeyWorkers, flags.Lookup("workers"))
}

func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		initErr = err
		return
	}
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	used, err := config.ReadFile(v, cfgFile)
	if err != nil {
		initErr = err
		return
	}
	if used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

// setupLogging installs the default logger. Logs go to stderr so tool output
// on stdout stays readable.
func setupLogging(c config.Config) {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	var handler slog.Handler
	if c.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, notification(err))
		os.Exit(1)
	}
}

// notification is the one line printed for a failed run.
func notification(err error) string {
	var opErr *models.OpError
	if errors.As(err, &opErr) {
		return models.Notification(err)
	}
	return "Error: " + err.Error()
}
