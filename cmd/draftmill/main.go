// Command draftmill converts Markdown and other text documents to DOCX,
// either one-shot from the command line or as an HTTP service.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/draftmill/draftmill/internal/api"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagDebug   bool

	log *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "draftmill",
		Short: "A configurable Markdown to DOCX converter with natural language configuration support",
		Long: `Convert Markdown files to Microsoft DOCX format with flexible YAML
configuration and natural language configuration updates via LLM
integration.`,
		Version: api.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; the real environment wins.
			_ = godotenv.Load()
			log = newLogger(flagVerbose, flagDebug)
			slog.SetDefault(log)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Logs go to stderr as JSON so
// stdout stays free for command output.
func newLogger(verbose, debug bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
