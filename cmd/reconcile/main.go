// Command reconcile merges price feeds into a medication catalogue.
//
// It loads the authoritative catalogue, an optional scrape feed and an
// optional guide feed, runs the matching engine, and writes the merged
// catalogue to a separate output file along with a change report. It
// never writes over its input.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bentalba/taawidaty/logging"
	"github.com/bentalba/taawidaty/reconciler"
	"github.com/bentalba/taawidaty/reconciler/entities"
	"github.com/bentalba/taawidaty/sitemap"
	"github.com/joho/godotenv"
)

func main() {
	var (
		dbPath     = flag.String("db", "", "catalogue JSON file to reconcile against (required)")
		scrapePath = flag.String("scrape", "", "scrape feed JSON file")
		guidePath  = flag.String("guide", "", "guide feed TSV file")
		feedURL    = flag.String("feed-url", "", "download the guide feed from this URL before parsing")
		outPath    = flag.String("out", "", "output path for the merged catalogue (required, must differ from -db)")
		reportPath = flag.String("report", "", "output path for the JSON change report")
		insurance  = flag.String("insurance", "CNOPS", "insurance scheme tag for promoted records")
		threshold  = flag.Float64("threshold", reconciler.DefaultThreshold, "match acceptance threshold")
		fixRates   = flag.Bool("fix-rates", false, "rederive every reimbursement rate instead of merging feeds")
		sitemapDir = flag.String("sitemap-dir", "", "when set, regenerate sitemap.xml and url-list.txt in this directory")
		baseURL    = flag.String("base-url", "https://taawidaty.ma", "site base URL for sitemap generation")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	_ = godotenv.Load()
	logging.InitLogger(os.Getenv("LOG_DIR"), 4, *logLevel)

	if err := run(*dbPath, *scrapePath, *guidePath, *feedURL, *outPath, *reportPath,
		*insurance, *threshold, *fixRates, *sitemapDir, *baseURL); err != nil {
		fmt.Fprintln(os.Stderr, "reconcile:", err)
		os.Exit(1)
	}
}

func run(dbPath, scrapePath, guidePath, feedURL, outPath, reportPath,
	insurance string, threshold float64, fixRates bool, sitemapDir, baseURL string) error {

	if dbPath == "" {
		return fmt.Errorf("-db is required")
	}
	if outPath == "" {
		return fmt.Errorf("-out is required")
	}
	if outPath == dbPath {
		return fmt.Errorf("-out must differ from -db, refusing to overwrite the input catalogue")
	}
	if threshold < reconciler.CandidateFloor || threshold > 1 {
		return fmt.Errorf("-threshold must be in [%.2f, 1]", reconciler.CandidateFloor)
	}

	insurance = strings.ToUpper(insurance)

	catalogue, err := reconciler.LoadCatalogue(dbPath)
	if err != nil {
		return fmt.Errorf("loading catalogue: %w", err)
	}

	engine := reconciler.NewEngine(threshold, insurance)

	if fixRates {
		fixed, stats := engine.RefreshRates(catalogue)
		if err := reconciler.WriteCatalogue(outPath, fixed); err != nil {
			return fmt.Errorf("writing catalogue: %w", err)
		}
		printRateStats(stats)
		return maybeSitemap(fixed, sitemapDir, baseURL)
	}

	feed, err := loadFeeds(scrapePath, guidePath, feedURL)
	if err != nil {
		return err
	}
	if len(feed) == 0 {
		return fmt.Errorf("no feed entries: provide -scrape, -guide or -feed-url")
	}

	merged, report := engine.Reconcile(catalogue, feed)

	if err := reconciler.WriteCatalogue(outPath, merged); err != nil {
		return fmt.Errorf("writing catalogue: %w", err)
	}

	if reportPath != "" {
		if err := reconciler.WriteReport(reportPath, report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	printReport(report, len(merged))
	return maybeSitemap(merged, sitemapDir, baseURL)
}

func loadFeeds(scrapePath, guidePath, feedURL string) ([]entities.Incoming, error) {
	var feed []entities.Incoming

	if scrapePath != "" {
		scrape, err := reconciler.LoadScrapeFeed(scrapePath)
		if err != nil {
			return nil, fmt.Errorf("loading scrape feed: %w", err)
		}
		feed = append(feed, scrape...)
	}

	if feedURL != "" {
		if guidePath == "" {
			guidePath = "guide-feed.tsv"
		}
		if err := reconciler.DownloadFeedFile(feedURL, guidePath); err != nil {
			return nil, fmt.Errorf("downloading guide feed: %w", err)
		}
	}

	if guidePath != "" {
		guide, err := reconciler.ParseGuideFile(guidePath)
		if err != nil {
			return nil, fmt.Errorf("parsing guide feed: %w", err)
		}
		feed = append(feed, guide...)
	}

	return feed, nil
}

func printReport(report *entities.ChangeReport, total int) {
	fmt.Printf("Run %s (%s, %s feed, threshold %.2f)\n",
		report.RunID, report.Insurance, report.FeedKind, report.Threshold)
	fmt.Printf("  matched:        %d\n", report.Matched)
	fmt.Printf("  price updated:  %d\n", report.PriceUpdated)
	fmt.Printf("  new added:      %d\n", report.NewAdded)
	fmt.Printf("  kept unmatched: %d\n", report.KeptUnmatched)
	fmt.Printf("  skipped:        %d\n", report.SkippedInvalid)
	fmt.Printf("  catalogue size: %d\n", total)
	fmt.Printf("  duration:       %s\n", report.Duration)

	if !report.HasChanges() {
		fmt.Println("  no changes, output matches the input catalogue")
		return
	}

	for _, change := range report.PriceChanges {
		fmt.Printf("  price %-50s %8.2f -> %8.2f\n", change.Name, change.Old, change.New)
	}
}

func printRateStats(stats entities.RateStats) {
	fmt.Printf("Rate refresh over %d records\n", stats.Total)
	fmt.Printf("  already at 70%%: %d\n", stats.Already70)
	fmt.Printf("  changed to 70%%: %d\n", stats.ChangedTo70)
	fmt.Printf("  changed to 0%%:  %d\n", stats.ChangedTo0)
	fmt.Printf("  kept at 0%%:     %d\n", stats.Kept0)
	fmt.Printf("  recalculated:   %d\n", stats.Recalculated)
}

func maybeSitemap(meds []entities.Medication, sitemapDir, baseURL string) error {
	if sitemapDir == "" {
		return nil
	}
	if err := sitemap.Generate(meds, baseURL, sitemapDir); err != nil {
		return fmt.Errorf("generating sitemap: %w", err)
	}
	return nil
}
