package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	figmameta "github.com/hellenic-development/figma-meta"
	"github.com/hellenic-development/figma-meta/internal/config"
	"github.com/hellenic-development/figma-meta/internal/observability"
	"github.com/hellenic-development/figma-meta/internal/web"
	"github.com/hellenic-development/figma-meta/pkg/formatter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = figmameta.Version

// Flags shared by the extract and serve commands, keyed by setting name.
var inputFlags = map[string]string{
	"token":     "token",
	"file_key":  "file-key",
	"node_ids":  "node-ids",
	"max_depth": "depth",
}

var serveFlags = map[string]string{
	"server.addr":     "addr",
	"logger.level":    "log-level",
	"logger.format":   "log-format",
	"logger.log_file": "log-file",
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		outputFile string
		toStdout   bool
		outline    bool
	)

	rootCmd := &cobra.Command{
		Use:   "figma-meta",
		Short: "Extract trimmed node metadata from Figma files",
		Long: "Fetches node subtrees from the Figma API and keeps only the fields needed for code generation, " +
			"down to a maximum depth. Every input falls back to an environment variable " +
			"(FIGMA_TOKEN, FIGMA_FILE_KEY, FIGMA_NODE_IDS, FIGMA_MAX_DEPTH).",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, inputFlags)
			if err != nil {
				color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}
			return runExtract(cmd.Context(), cfg, outputFile, toStdout, outline)
		},
	}

	addInputFlags(rootCmd)
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output JSON file (default figma_<file-key>_meta.json)")
	rootCmd.Flags().BoolVar(&toStdout, "stdout", false, "Write the JSON to stdout instead of a file")
	rootCmd.Flags().BoolVar(&outline, "outline", false, "Print an outline of the extracted tree")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("figma-meta version %s\n", version)
		},
	})

	return rootCmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser front end",
		Long:  "Serves a form collecting the token, file key, node IDs and depth, renders the extracted JSON and offers it for download.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := serve(cmd); err != nil {
				color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}
			return nil
		},
	}

	addInputFlags(cmd)
	cmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8501, env FIGMA_META_ADDR)")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error (env FIGMA_META_LOG_LEVEL)")
	cmd.Flags().String("log-format", "", "Log format: console or json (env FIGMA_META_LOG_FORMAT)")
	cmd.Flags().String("log-file", "", "Also write JSON logs to this file, rotated (env FIGMA_META_LOG_FILE)")

	return cmd
}

func serve(cmd *cobra.Command) error {
	keys := make(map[string]string, len(inputFlags)+len(serveFlags))
	for k, v := range inputFlags {
		keys[k] = v
	}
	for k, v := range serveFlags {
		keys[k] = v
	}

	cfg, err := loadConfig(cmd, keys)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting figma-meta web UI", zap.String("version", version), zap.String("addr", cfg.Server.Addr))
	return web.New(cfg, logger, web.WithFigmaBaseURL(cfg.APIBaseURL)).ListenAndServe(ctx)
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("token", "t", "", "Figma personal access token (env FIGMA_TOKEN)")
	cmd.Flags().StringP("file-key", "f", "", "Figma file key or file URL (env FIGMA_FILE_KEY)")
	cmd.Flags().StringP("node-ids", "n", "", "Comma-separated node IDs (env FIGMA_NODE_IDS)")
	cmd.Flags().IntP("depth", "d", 0, "Maximum tree depth, 1-8 (default 4, env FIGMA_MAX_DEPTH)")
}

// loadConfig resolves flags, environment and defaults into a Config once.
func loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)
	if err := config.BindFlags(v, cmd.Flags(), keys); err != nil {
		return nil, err
	}
	return config.Load(v)
}

func runExtract(ctx context.Context, cfg *config.Config, outputFile string, toStdout, outline bool) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	// Keep stdout clean for the JSON when piping.
	status := os.Stdout
	if toStdout {
		status = os.Stderr
	}

	cyan.Fprintln(status, "\n🎨 Figma Metadata Extractor")
	cyan.Fprintln(status, "===========================")

	result, err := figmameta.Run(ctx, figmameta.Options{
		AccessToken: cfg.Token,
		FileKey:     cfg.FileKey,
		NodeIDs:     cfg.NodeIDs,
		MaxDepth:    cfg.MaxDepth,
		BaseURL:     cfg.APIBaseURL,
		Logger:      &cliLogger{out: status},
	})
	if err != nil {
		red.Fprintf(os.Stderr, "Error: %s\n", figmameta.UserMessage(err))
		return err
	}

	cyan.Fprintln(status, "\n📊 Extraction Summary:")
	fmt.Fprintf(status, "  • Nodes requested: %d\n", len(result.NodeIDs))
	fmt.Fprintf(status, "  • Nodes extracted: %d\n", len(result.Nodes))
	if len(result.Skipped) > 0 {
		fmt.Fprintf(status, "  • Not found: %v\n", result.Skipped)
	}

	if outline {
		cyan.Fprintln(status, "\n🌳 Tree:")
		fmt.Fprint(status, formatter.ToOutline(result.Nodes))
	}

	if toStdout {
		_, err := os.Stdout.Write(result.JSON)
		return err
	}

	if outputFile == "" {
		outputFile = result.FileName
	}

	green.Fprintf(status, "\n💾 Writing to %s... ", outputFile)
	if err := os.WriteFile(outputFile, result.JSON, 0644); err != nil {
		red.Fprintf(status, "✗\n")
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	green.Fprintln(status, "✓")

	green.Fprintf(status, "\n✨ Successfully extracted node metadata to %s\n\n", outputFile)
	return nil
}

// cliLogger implements figmameta.Logger with colored terminal output.
type cliLogger struct {
	out *os.File
}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(l.out, format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(l.out, "⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Fprintf(l.out, "✗ "+format+"\n", args...)
}
