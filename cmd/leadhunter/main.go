package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/classify"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/config"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/logger"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/pipeline"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/store"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

func main() {
	// Define command-line flags
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	query := flag.String("query", "", "Business category or keyword to search for")
	location := flag.String("location", "", "City or area to search in")
	maxResults := flag.Int("max", 0, "Maximum number of results per source")
	source := flag.String("source", "", "Source to search: google_maps, yellow_pages or both")
	emails := flag.Bool("emails", false, "Visit business websites to extract email addresses")
	output := flag.String("output", "", "Spreadsheet file to merge results into")
	headless := flag.Bool("headless", true, "Run the browser headless")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Credentials come from the environment; a local .env is a convenience,
	// its absence is not an error.
	_ = godotenv.Load()

	fmt.Println("Lead Hunter Starting...")

	var cfg *config.AppConfig
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded configuration from %s\n", *configFile)
	} else {
		cfg = config.CreateDefault()
	}

	passed := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { passed[f.Name] = true })

	applyOptions(cfg, runOptions{
		query:      *query,
		location:   *location,
		maxResults: *maxResults,
		source:     *source,
		emails:     *emails,
		output:     *output,
		headless:   *headless,
		debug:      *debug,
		fromConfig: *configFile != "",
		passed:     passed,
	})

	promptMissing(cfg)

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	log, closer := logger.New(level, cfg.Log.File)
	defer closer.Close()
	defer log.Sync()

	ctx := context.Background()

	classifier := classify.New(&cfg.Classify, log)
	if cfg.Classify.APIKey == "" {
		log.Warn("no classifier API key set, leads keep their original category and description")
	}

	var documents *store.Mongo
	if cfg.Store.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		documents, err = store.NewMongo(connectCtx, &cfg.Store, log)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to document store: %v\n", err)
			os.Exit(1)
		}
		defer documents.Close(ctx)
	} else {
		log.Info("no store URI set, persisting to spreadsheet only")
	}

	runner := pipeline.New(cfg, log, classifier, documents)
	stats, err := runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDone. Found %d, qualified %d, skipped %d duplicates, appended %d to %s\n",
		stats.Found, stats.Qualified, stats.Duplicates, stats.Appended, cfg.Search.OutputFile)
}

// runOptions carries the parsed flag values plus which flags were passed
// explicitly, so flag defaults never clobber config-file settings.
type runOptions struct {
	query      string
	location   string
	maxResults int
	source     string
	emails     bool
	output     string
	headless   bool
	debug      bool

	fromConfig bool            // a config file provided the baseline
	passed     map[string]bool // flags given on the command line
}

// applyOptions overrides the configuration with command-line values. Search
// parameters without a flag or config value are blanked so promptMissing
// asks for them.
func applyOptions(cfg *config.AppConfig, o runOptions) {
	if o.query != "" {
		cfg.Search.Query = o.query
	}
	if o.location != "" {
		cfg.Search.Location = o.location
	}
	if o.maxResults > 0 {
		cfg.Search.MaxResults = o.maxResults
	} else if !o.fromConfig {
		cfg.Search.MaxResults = 0 // ask interactively
	}
	if o.source != "" {
		cfg.Search.Sources = parseSourceChoice(o.source)
	} else if !o.fromConfig {
		cfg.Search.Sources = nil // ask interactively
	}
	if o.emails {
		cfg.Search.ExtractEmails = true
	}
	if o.output != "" {
		cfg.Search.OutputFile = o.output
	} else if !o.fromConfig {
		cfg.Search.OutputFile = "" // ask interactively
	}
	if o.passed["headless"] {
		cfg.Browser.Headless = o.headless
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}
}

// promptMissing interactively collects whatever the flags and config file
// left blank.
func promptMissing(cfg *config.AppConfig) {
	reader := bufio.NewReader(os.Stdin)

	if cfg.Search.Query == "" {
		cfg.Search.Query = prompt(reader, "What kind of business are you looking for? ")
	}
	if cfg.Search.Location == "" {
		cfg.Search.Location = prompt(reader, "In which city or area? ")
	}
	if cfg.Search.MaxResults <= 0 {
		cfg.Search.MaxResults = 50
		if n, err := strconv.Atoi(prompt(reader, "How many results? [50]: ")); err == nil && n > 0 {
			cfg.Search.MaxResults = n
		}
	}
	if len(cfg.Search.Sources) == 0 {
		fmt.Println("Choose a source:")
		fmt.Println("  1) Google Maps")
		fmt.Println("  2) Yellow Pages")
		fmt.Println("  3) Both")
		cfg.Search.Sources = parseSourceChoice(prompt(reader, "Source [1]: "))
	}
	if !cfg.Search.ExtractEmails {
		answer := prompt(reader, "Extract emails from business websites? (y/N): ")
		cfg.Search.ExtractEmails = strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	}
	if cfg.Search.OutputFile == "" {
		name := prompt(reader, "Output file [leads.xlsx]: ")
		if name == "" {
			name = "leads.xlsx"
		}
		cfg.Search.OutputFile = name
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// parseSourceChoice maps a menu answer or source name onto the source list.
// "3" and "both" select every source; anything unrecognized falls back to
// Google Maps.
func parseSourceChoice(answer string) []string {
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer == "3" || answer == "both" || answer == "all" {
		return []string{string(models.SourceGoogleMaps), string(models.SourceYellowPages)}
	}
	if src, ok := models.ParseSource(answer); ok {
		return []string{string(src)}
	}
	return []string{string(models.SourceGoogleMaps)}
}
