package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/ytget/eo-downloader/internal/config"
	"github.com/ytget/eo-downloader/internal/model"
	"github.com/ytget/eo-downloader/internal/platform"
	"github.com/ytget/eo-downloader/internal/session"
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// parseYears turns -begin/-end/-years into a validated range.
// -years wins when set; a lone -begin or -end covers one year.
func parseYears(years string, begin, end int) (model.YearRange, error) {
	current := model.CurrentYear()

	var yr model.YearRange
	switch {
	case years != "":
		parsed, err := model.ParseYearRange(years)
		if err != nil {
			return yr, err
		}
		yr = parsed
	case begin == 0 && end == 0:
		yr = model.SingleYear(current)
	case begin == 0:
		yr = model.SingleYear(end)
	case end == 0:
		yr = model.SingleYear(begin)
	default:
		yr = model.NewYearRange(begin, end)
	}

	if err := yr.Validate(current); err != nil {
		return yr, err
	}
	return yr, nil
}

func runFetch(ctx context.Context, args []string, s *session.Session) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	years := fs.String("years", "", "Year or range, e.g. 2021 or 2017-2021")
	begin := fs.Int("begin", 0, "First year")
	end := fs.Int("end", 0, "Last year")
	if err := fs.Parse(args); err != nil {
		return err
	}

	yr, err := parseYears(*years, *begin, *end)
	if err != nil {
		return err
	}

	spinner := getSpinner(fmt.Sprintf("Fetching executive orders for %s...", yr))
	result, err := s.Manager.FetchExecutiveOrders(ctx, yr)
	_ = spinner.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	if err := s.Manager.SaveToFile(s.LibraryPath); err != nil {
		return err
	}

	color.Green("✓ Fetched %d executive orders for %s (%d new, %d updated)", result.Fetched, yr, result.Added, result.Updated)
	return nil
}

func runList(args []string, s *session.Session) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	downloaded := fs.Bool("downloaded", false, "Only downloaded documents")
	pending := fs.Bool("pending", false, "Only documents not downloaded yet")
	keyword := fs.String("keyword", "", "Case-insensitive title filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	showDone := !*pending || *downloaded
	showPending := !*downloaded || *pending

	if showPending {
		entries := listEntries(s, s.Manager.NotDownloadedDocuments(), *keyword, model.SortAscending)
		color.Cyan("Not Downloaded (%d)", len(entries))
		printEntries(entries)
	}
	if showDone {
		entries := listEntries(s, s.Manager.DownloadedDocuments(), *keyword, model.SortDescending)
		color.Cyan("Downloaded (%d)", len(entries))
		printEntries(entries)
	}
	return nil
}

func listEntries(s *session.Session, ids []string, keyword string, order model.SortOrder) []model.ListEntry {
	titles := s.Manager.DisplayTitles(ids)
	if strings.TrimSpace(keyword) == "" {
		return model.EntriesFromTitles(titles, order)
	}
	entries := model.FilterTitles(titles, keyword)
	model.SortEntries(entries, order)
	return entries
}

func printEntries(entries []model.ListEntry) {
	for _, e := range entries {
		fmt.Printf("  %s\n", e.Title)
	}
}

func runDownload(ctx context.Context, args []string, s *session.Session) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	all := fs.Bool("all", false, "Download every document not downloaded yet")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids := fs.Args()
	if *all {
		ids = s.Manager.NotDownloadedDocuments()
	}
	if len(ids) == 0 {
		color.Yellow("No items selected for download.")
		return nil
	}

	bar := getProgressBar(len(ids), fmt.Sprintf("Downloading %d files...", len(ids)))
	s.Downloader.SetUpdateCallback(func(p model.DownloadProgress) {
		switch p.State {
		case model.DownloadCompleted, model.DownloadSkipped, model.DownloadFailed:
			_ = bar.Add(1)
		case model.DownloadRetrying:
			bar.Describe(color.YellowString("Retrying %s (attempt %d)...", p.DocumentID, p.Attempt))
		}
	})

	start := time.Now()
	result, err := s.Downloader.DownloadFromList(ctx, ids, s.LibraryPath)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	failed := make([]string, 0, len(result.Failed))
	for id := range result.Failed {
		failed = append(failed, id)
	}
	sort.Slice(failed, func(i, j int) bool { return model.CompareIDs(failed[i], failed[j]) < 0 })
	for _, id := range failed {
		color.Red("✗ %s: %v", id, result.Failed[id])
	}

	summary := fmt.Sprintf("%s in %s", result.Summary(), time.Since(start).Round(time.Millisecond))
	if len(failed) > 0 {
		color.Yellow("%s", summary)
		return fmt.Errorf("%d of %d downloads failed", len(failed), len(result.Requested))
	}
	color.Green("✓ %s", summary)
	return nil
}

func runOpen(args []string, s *session.Session) error {
	if len(args) != 1 {
		return errors.New("usage: eo-fetch open <id>")
	}
	id := args[0]

	doc, ok := s.Manager.Document(id)
	if !ok {
		return fmt.Errorf("document %s is not in the library", id)
	}
	if !doc.IsDownloaded() {
		return fmt.Errorf("document %s is not downloaded", id)
	}

	path, err := platform.ResolveDocumentPath(s.Directory(), doc.GetFileName())
	if err != nil {
		return err
	}
	if err := platform.OpenFileWithDefaultApp(path); err != nil {
		return err
	}
	color.Green("Opened %s", path)
	return nil
}

func runVerify(s *session.Session) error {
	missing := s.Manager.Reconcile(s.Directory())
	if len(missing) == 0 {
		color.Green("✓ All downloaded documents are present in %s", s.Directory())
		return nil
	}
	if err := s.Manager.SaveToFile(s.LibraryPath); err != nil {
		return err
	}
	color.Yellow("Reset %d documents whose files were missing: %s", len(missing), strings.Join(missing, ", "))
	return nil
}

func runConfig(args []string, settings *config.Settings, store *config.FileStore) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	dir := fs.String("dir", "", "Set the document directory")
	parallel := fs.Int("parallel", 0, "Set the maximum parallel downloads")
	lang := fs.String("language", "", "Set the UI language (system, en, ru)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	changed := false
	if *dir != "" {
		if err := platform.CreateDirectoryIfNotExists(*dir); err != nil {
			return fmt.Errorf("create directory %s: %w", *dir, err)
		}
		if err := settings.SetDocumentDirectory(*dir); err != nil {
			return err
		}
		changed = true
	}
	if *parallel != 0 {
		settings.SetMaxParallelDownloads(*parallel)
		changed = true
	}
	if *lang != "" {
		if _, ok := settings.GetLanguageOptions()[*lang]; !ok {
			return fmt.Errorf("unknown language %q", *lang)
		}
		settings.SetLanguage(*lang)
		changed = true
	}

	if changed {
		if err := store.Save(); err != nil {
			return err
		}
		color.Green("Settings saved to %s", store.Path())
	}

	cfg := settings.Config()
	dirText := cfg.DocumentDir
	if !cfg.HasDocumentDir() {
		dirText = color.YellowString("(not set)")
	}
	fmt.Printf("Document directory: %s\n", dirText)
	fmt.Printf("Max parallel:       %s\n", strconv.Itoa(cfg.MaxParallel))
	fmt.Printf("Language:           %s\n", cfg.Language)
	return nil
}
