package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/app"
	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/models"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	sourceURL    = flag.String("url", "", "Source URL of the document (audit mode)")
	task         = flag.String("task", "title-variants", "Variant task: title-variants, description-variants, keyword-suggestions")
	title        = flag.String("title", "", "Page title payload (variants mode)")
	description  = flag.String("description", "", "Meta description payload (variants mode)")
	keywords     = flag.String("keywords", "", "Comma-separated target keywords (variants mode)")
	count        = flag.Int("count", 0, "Variant count (0 uses the configured default)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  censeo [flags] audit <file.html>     score a local document\n")
	fmt.Fprintf(os.Stderr, "  censeo [flags] variants              generate ranked variants\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Censeo version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("censeo.toml"); err == nil {
			configFiles = append(configFiles, "censeo.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Debug().
		Str("log_level", config.Logging.Level).
		Str("badger_path", config.Storage.Badger.Path).
		Strs("priority", config.Orchestrator.Priority).
		Msg("Resolved configuration")

	ctx := context.Background()

	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	switch flag.Arg(0) {
	case "audit":
		runAudit(ctx, application, flag.Arg(1))
	case "variants":
		runVariants(ctx, application)
	default:
		usage()
		os.Exit(2)
	}
}

// runAudit scores a local HTML file and prints the result as JSON.
func runAudit(ctx context.Context, application *app.App, path string) {
	if path == "" {
		logger.Fatal().Msg("audit mode requires a file path")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal().Str("path", path).Err(err).Msg("Failed to read document")
	}

	result, err := application.RunAudit(ctx, app.AuditInput{
		SourceURL: *sourceURL,
		RawHTML:   string(raw),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Audit failed")
	}

	printJSON(result)
}

// runVariants generates a ranked variant set from the flag payload.
func runVariants(ctx context.Context, application *app.App) {
	payload := make(map[string]string)
	if *title != "" {
		payload["title"] = *title
	}
	if *description != "" {
		payload["description"] = *description
	}
	if *keywords != "" {
		payload["keywords"] = *keywords
	}
	if len(payload) == 0 {
		logger.Fatal().Msg("variants mode requires at least one of -title, -description, -keywords")
	}

	set, err := application.GenerateVariants(ctx, &models.CompletionRequest{
		Task:         models.TaskType(strings.TrimSpace(*task)),
		Payload:      payload,
		VariantCount: *count,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Variant generation failed")
	}

	printJSON(set)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}
