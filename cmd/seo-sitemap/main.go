package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"seo-sitemap/pkg/config"
	"seo-sitemap/pkg/fetch"
	"seo-sitemap/pkg/indexnow"
	"seo-sitemap/pkg/models"
	"seo-sitemap/pkg/pipeline"
	"seo-sitemap/pkg/report"
	"seo-sitemap/pkg/sitemap"
	"seo-sitemap/pkg/storage"
	"seo-sitemap/pkg/watch"
)

const usageText = `Usage: seo-sitemap <command> [flags] <sitemap-url>

Commands:
  analyze   Analyze SEO for all URLs from a sitemap and write a CSV report
  submit    Submit URLs from a sitemap to an IndexNow endpoint
  check     Quick availability check for all URLs from a sitemap
  watch     Periodically re-run the analysis and report regressions

Run 'seo-sitemap <command> -h' for command flags.`

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usageText)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "analyze":
		runAnalyze(args, log)
	case "submit":
		runSubmit(args, log)
	case "check":
		runCheck(args, log)
	case "watch":
		runWatch(args, log)
	case "help", "-h", "--help":
		fmt.Println(usageText)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s\n", cmd, usageText)
		os.Exit(2)
	}
}

// commonFlags registers the flags shared by every subcommand
func commonFlags(fs *flag.FlagSet) (configPath, logLevel *string) {
	configPath = fs.String("config", "", "Path to YAML config file (optional)")
	logLevel = fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	return
}

// setup parses flags, loads and validates config, and returns the sitemap
// source positional argument.
func setup(fs *flag.FlagSet, args []string, configPath, logLevel *string, log *logrus.Logger) (*config.AppConfig, string) {
	fs.Parse(args)

	if level, err := logrus.ParseLevel(*logLevel); err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", *logLevel, err)
	} else {
		log.SetLevel(level)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	warnings, err := cfg.Validate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	if fs.NArg() < 1 {
		log.Fatalf("Missing required sitemap URL argument. Usage: seo-sitemap %s [flags] <sitemap-url>", fs.Name())
	}
	return cfg, fs.Arg(0)
}

// stack bundles the shared fetch/resolve/analyze machinery
type stack struct {
	resolver *sitemap.Resolver
	pipeline *pipeline.Pipeline
	fetcher  *fetch.Fetcher
}

func buildStack(cfg *config.AppConfig, log *logrus.Logger) *stack {
	client := fetch.NewClient(cfg.HTTPClientSettings, log)
	fetcher := fetch.NewFetcher(client, log)
	rateLimiter := fetch.NewRateLimiter(cfg.DelayPerHost, log)

	var robots *fetch.RobotsGate
	if cfg.RespectRobots {
		robots = fetch.NewRobotsGate(fetcher, rateLimiter, cfg.PageUserAgent, log)
	}

	return &stack{
		resolver: sitemap.NewResolver(fetcher, rateLimiter, cfg.SitemapUserAgent, cfg.RequestTimeout, log),
		pipeline: pipeline.New(cfg, fetcher, rateLimiter, robots, log),
		fetcher:  fetcher,
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// resolveOrDie resolves the sitemap and exits on a top-level failure
func resolveOrDie(ctx context.Context, s *stack, source string, log *logrus.Logger) []string {
	log.Infof("Parsing sitemap: %s", source)
	urls, err := s.resolver.Resolve(ctx, source)
	if err != nil {
		log.Fatalf("Error loading sitemap: %v", err)
	}
	return urls
}

// progressLogger logs completion roughly every 10% of the batch
func progressLogger(log *logrus.Logger, label string) pipeline.ProgressFunc {
	return func(completed, total int) {
		step := total / 10
		if step == 0 {
			step = 1
		}
		if completed%step == 0 || completed == total {
			log.Infof("%s: %d/%d", label, completed, total)
		}
	}
}

func runAnalyze(args []string, log *logrus.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath, logLevel := commonFlags(fs)
	output := fs.String("output", "", "Report file prefix (overrides config)")
	workers := fs.Int("workers", 0, "Number of analysis workers (overrides config)")
	timeout := fs.Duration("timeout", 0, "HTTP request timeout (overrides config)")

	cfg, source := setup(fs, args, configPath, logLevel, log)
	if *output != "" {
		cfg.OutputPrefix = *output
	}
	if *workers > 0 {
		cfg.MaxWorkers = *workers
		if cfg.MaxRequests < cfg.MaxWorkers {
			cfg.MaxRequests = cfg.MaxWorkers
		}
	}
	if *timeout > 0 {
		cfg.RequestTimeout = *timeout
	}

	ctx, stop := signalContext()
	defer stop()

	s := buildStack(cfg, log)
	urls := resolveOrDie(ctx, s, source, log)
	log.Infof("Found %d URLs for analysis", len(urls))
	if len(urls) == 0 {
		log.Error("No URLs found in sitemap")
		os.Exit(1)
	}

	s.pipeline.SetProgressFunc(progressLogger(log, "Analyzed"))
	records := s.pipeline.Run(ctx, urls)

	runID := uuid.NewString()[:8]
	csvPath := fmt.Sprintf("%s_%s_%s.csv", cfg.OutputPrefix, time.Now().Format("20060102_150405"), runID)
	log.Infof("Saving detailed report to: %s", csvPath)
	if err := report.WriteCSV(csvPath, records); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	report.PrintSummary(os.Stdout, report.Summarize(records))
}

func runSubmit(args []string, log *logrus.Logger) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	configPath, logLevel := commonFlags(fs)
	apiKey := fs.String("api-key", "", "IndexNow API key (or INDEXNOW_API_KEY)")
	keyLocation := fs.String("key-location", "", "URL where the API key file is hosted (or INDEXNOW_KEY_LOCATION)")
	host := fs.String("host", "", "Site host (if different from sitemap URL host)")
	endpoint := fs.String("endpoint", "", "IndexNow endpoint name or URL (default bing)")
	batchSize := fs.Int("batch-size", 0, "URL batch size for submission")
	delay := fs.Duration("delay", 0, "Delay between batch submissions")

	cfg, source := setup(fs, args, configPath, logLevel, log)
	if *apiKey != "" {
		cfg.IndexNow.APIKey = *apiKey
	}
	if *keyLocation != "" {
		cfg.IndexNow.KeyLocation = *keyLocation
	}
	if *endpoint != "" {
		cfg.IndexNow.Endpoint = *endpoint
	}
	if *batchSize > 0 {
		cfg.IndexNow.BatchSize = *batchSize
	}
	if *delay > 0 {
		cfg.IndexNow.BatchDelay = *delay
	}
	if cfg.IndexNow.APIKey == "" || cfg.IndexNow.KeyLocation == "" {
		log.Fatal("IndexNow API key and key location are required (-api-key/-key-location flags, config file, or environment)")
	}

	ctx, stop := signalContext()
	defer stop()

	s := buildStack(cfg, log)
	urls := resolveOrDie(ctx, s, source, log)
	log.Infof("Found %d URLs", len(urls))
	if len(urls) == 0 {
		log.Error("No URLs found in sitemap")
		os.Exit(1)
	}

	submitHost := cfg.IndexNow.Host
	if *host != "" {
		submitHost = *host
	}
	if submitHost == "" {
		parsed, err := url.Parse(source)
		if err != nil || parsed.Host == "" {
			log.Fatal("Could not derive host from sitemap URL; pass -host explicitly")
		}
		submitHost = parsed.Host
	}

	submitter, err := indexnow.NewSubmitter(s.fetcher, cfg.IndexNow, log)
	if err != nil {
		log.Fatalf("IndexNow setup error: %v", err)
	}

	totals := submitter.SubmitAll(ctx, submitHost, urls)
	fmt.Printf("\nTotal submitted: %d/%d URLs\n", totals.URLsSubmitted, len(urls))
	fmt.Printf("Successful batches: %d/%d\n", totals.SuccessfulBatches, totals.TotalBatches)
	if totals.SuccessfulBatches < totals.TotalBatches {
		os.Exit(1)
	}
}

func runCheck(args []string, log *logrus.Logger) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath, logLevel := commonFlags(fs)
	timeout := fs.Duration("timeout", 0, "Availability check timeout (overrides config)")
	workers := fs.Int("workers", 0, "Number of check workers (overrides config)")

	cfg, source := setup(fs, args, configPath, logLevel, log)
	if *timeout > 0 {
		cfg.CheckTimeout = *timeout
	}
	if *workers > 0 {
		cfg.CheckWorkers = *workers
	}

	ctx, stop := signalContext()
	defer stop()

	s := buildStack(cfg, log)
	urls := resolveOrDie(ctx, s, source, log)
	log.Infof("Checking availability of %d URLs", len(urls))
	if len(urls) == 0 {
		log.Error("No URLs found in sitemap")
		os.Exit(1)
	}

	s.pipeline.SetProgressFunc(progressLogger(log, "Checked"))
	results := s.pipeline.CheckAvailability(ctx, urls)

	available := 0
	var unavailable []pipeline.CheckResult
	for _, r := range results {
		if r.Reachable && r.StatusCode == 200 {
			available++
		} else {
			unavailable = append(unavailable, r)
		}
	}

	fmt.Printf("\nAvailable: %d\n", available)
	fmt.Printf("Unavailable: %d\n", len(unavailable))
	fmt.Printf("Availability rate: %.1f%%\n", float64(available)/float64(len(urls))*100)

	if len(unavailable) > 0 {
		fmt.Println("\nUnavailable URLs:")
		for i, r := range unavailable {
			if i >= 10 {
				fmt.Printf("  ... and %d more URLs\n", len(unavailable)-10)
				break
			}
			fmt.Printf("  %d: %s\n", r.StatusCode, r.URL)
		}
	}
}

func runWatch(args []string, log *logrus.Logger) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath, logLevel := commonFlags(fs)
	interval := fs.Duration("interval", 0, "Re-audit interval (overrides config)")
	stateDir := fs.String("state-dir", "", "Audit history directory (overrides config)")

	cfg, source := setup(fs, args, configPath, logLevel, log)
	if *interval > 0 {
		cfg.WatchInterval = *interval
	}
	if *stateDir != "" {
		cfg.StateDir = *stateDir
	}

	siteHost := source
	if parsed, err := url.Parse(source); err == nil && parsed.Host != "" {
		siteHost = parsed.Host
	}
	siteHost = strings.TrimPrefix(siteHost, "www.")

	store, err := storage.NewBadgerStore(cfg.StateDir, siteHost, log.WithField("component", "storage"))
	if err != nil {
		log.Fatalf("Failed to open audit history store: %v", err)
	}
	defer store.Close()

	s := buildStack(cfg, log)
	audit := func(ctx context.Context) ([]*models.URLAnalysis, error) {
		urls, err := s.resolver.Resolve(ctx, source)
		if err != nil {
			return nil, err
		}
		return s.pipeline.Run(ctx, urls), nil
	}

	watcher := watch.NewWatcher(cfg.WatchInterval, store, audit, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Infof("Received signal %v, shutting down...", sig)
		watcher.Stop()
	}()

	if err := watcher.Run(); err != nil {
		log.Fatalf("Watch mode failed: %v", err)
	}
}
