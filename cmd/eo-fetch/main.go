package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/ytget/eo-downloader/internal/config"
	"github.com/ytget/eo-downloader/internal/federalregister"
	"github.com/ytget/eo-downloader/internal/session"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

// Environment overrides, also read from a .env file in the working directory
const (
	EnvDocumentDir = "EO_DOCUMENT_DIR"
	EnvMaxParallel = "EO_MAX_PARALLEL"
)

type options struct {
	ConfigPath string
	Verbose    bool
	Command    string
	Args       []string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		color.Red("%v", err)
		os.Exit(2)
	}

	if !opts.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), `eo-fetch %s - download executive orders from the Federal Register

Usage:
  eo-fetch [flags] <command> [command flags]

Commands:
  fetch     fetch the executive order list for a year range
  list      print the catalog
  download  download documents by id, or all pending with -all
  open      open a downloaded document in the default viewer
  config    show or change settings
  verify    reset records whose files are missing from the document directory

Flags:
`, version)
	fs.PrintDefaults()
}

func parseFlags(args []string) (options, error) {
	var opts options

	defaultPath, err := config.DefaultFilePath()
	if err != nil {
		defaultPath = config.DefaultFileName
	}

	fs := flag.NewFlagSet("eo-fetch", flag.ContinueOnError)
	fs.Usage = func() { usage(fs) }
	fs.StringVar(&opts.ConfigPath, "config", defaultPath, "Path to settings file")
	fs.BoolVar(&opts.Verbose, "v", false, "Write log output to stderr")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return opts, errors.New("no command given")
	}
	opts.Command = fs.Arg(0)
	opts.Args = fs.Args()[1:]
	return opts, nil
}

func run(ctx context.Context, opts options) error {
	store, err := config.OpenFileStore(opts.ConfigPath)
	if err != nil {
		return err
	}
	settings := config.NewSettings(store)

	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	if opts.Command == "config" {
		return runConfig(opts.Args, settings, store)
	}

	cfg, err := applyEnv(settings.Config(), os.Getenv)
	if err != nil {
		return err
	}

	client := federalregister.NewClient(federalregister.Config{UserAgent: "eo-fetch/" + version})
	s, err := session.New(cfg, client)
	if err != nil {
		if errors.Is(err, session.ErrNoDirectory) {
			return fmt.Errorf("%w: run 'eo-fetch config -dir <path>' or set %s", err, EnvDocumentDir)
		}
		return err
	}

	switch opts.Command {
	case "fetch":
		return runFetch(ctx, opts.Args, s)
	case "list":
		return runList(opts.Args, s)
	case "download":
		return runDownload(ctx, opts.Args, s)
	case "open":
		return runOpen(opts.Args, s)
	case "verify":
		return runVerify(s)
	default:
		return fmt.Errorf("unknown command %q", opts.Command)
	}
}

// applyEnv overlays EO_* variables on cfg without touching the settings file
func applyEnv(cfg config.Config, getenv func(string) string) (config.Config, error) {
	if dir := strings.TrimSpace(getenv(EnvDocumentDir)); dir != "" {
		cfg.DocumentDir = dir
	}
	if text := strings.TrimSpace(getenv(EnvMaxParallel)); text != "" {
		n, err := strconv.Atoi(text)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvMaxParallel, text, err)
		}
		if n < config.MinMaxParallel {
			n = config.MinMaxParallel
		}
		if n > config.MaxMaxParallel {
			n = config.MaxMaxParallel
		}
		cfg.MaxParallel = n
	}
	return cfg, nil
}
