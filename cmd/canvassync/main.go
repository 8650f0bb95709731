package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"canvas-sync/internal/config"
	"canvas-sync/internal/domain"
	"canvas-sync/internal/download"
	"canvas-sync/internal/export"
	"canvas-sync/internal/logging"
	"canvas-sync/internal/providers/canvas"
	"canvas-sync/internal/report"
	"canvas-sync/internal/sftpclient"
	"canvas-sync/internal/sync"
)

const usage = `usage: canvassync [flags] TOKEN DOMAIN FROM OUT_DIR

Mirror Canvas course files into OUT_DIR.
FROM is one of modules, folders or both. Positional arguments may be
omitted when CANVAS_TOKEN, CANVAS_DOMAIN, CANVAS_MODE and CANVAS_OUT_DIR are set.

flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// .env is optional
	envErr := godotenv.Load()

	cfg := config.Load()
	noColor, err := parseArgs(args, &cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.Token == "" && isTerminal(os.Stdin) {
		tok, err := promptToken(stderr)
		if err != nil {
			fmt.Fprintln(stderr, "read token:", err)
			return 2
		}
		cfg.Token = tok
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "invalid configuration:")
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.New(stderr, cfg.LogLevel).With("run_id", uuid.NewString())
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn(ctx, "could not read .env", "err", envErr)
	}

	live := false
	if f, ok := stdout.(*os.File); ok {
		live = isTerminal(f)
	}
	console := report.NewConsole(stdout, live && !noColor, live)

	client := canvas.New(cfg.Domain, cfg.Token, log)
	client.HTTP.Timeout = cfg.Timeout
	client.Retry.MaxAttempts = cfg.MaxAttempts

	s := sync.New(client, download.NewEngine(nil, console, log), sync.Options{
		OutDir:     cfg.OutDir,
		Mode:       cfg.Mode,
		AllCourses: cfg.AllCourses,
		Workers:    cfg.Workers,
	})
	s.Reporter = console
	s.Log = log

	var manifest *export.Manifest
	if cfg.ReportCSV != "" {
		manifest = export.NewManifest(cfg.OutDir)
		s.OnOutcome = func(c domain.Course, src sync.Source, o domain.Outcome) {
			manifest.Record(c.Code, string(src), o)
		}
	}

	if cfg.SFTP.Enabled() {
		r, err := sftpclient.Dial(ctx, cfg.SFTP, log)
		if err != nil {
			// local mirror still runs
			log.Error(ctx, "sftp replication disabled", "err", err)
			console.Report(report.Event{Kind: report.Error, Message: "sftp replication disabled: " + err.Error()})
		} else {
			defer r.Close()
			s.Replicator = r
		}
	}

	log.Info(ctx, "sync started", "domain", cfg.Domain, "out", cfg.OutDir, "mode", string(cfg.Mode), "workers", cfg.Workers)
	stats, runErr := s.Run(ctx)

	if manifest != nil {
		if err := manifest.WriteCSVFile(cfg.ReportCSV); err != nil {
			log.Error(ctx, "manifest not written", "path", cfg.ReportCSV, "err", err)
		} else {
			log.Info(ctx, "manifest written", "path", cfg.ReportCSV, "rows", len(manifest.Entries()))
		}
	}

	fmt.Fprintln(stdout, summary(stats))
	if runErr != nil {
		log.Error(ctx, "sync aborted", "err", runErr)
		return 1
	}
	return 0
}

// parseArgs applies flags and the TOKEN DOMAIN FROM OUT_DIR positionals on top of cfg.
// Flags may appear anywhere, so "TOKEN DOMAIN both out --all" works.
func parseArgs(args []string, cfg *config.Config, stderr io.Writer) (noColor bool, err error) {
	fs := flag.NewFlagSet("canvassync", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	fs.BoolVar(&cfg.AllCourses, "all", cfg.AllCourses, "get all courses instead of only favorites")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "courses synced in parallel")
	fs.IntVar(&cfg.MaxAttempts, "attempts", cfg.MaxAttempts, "transport attempts per catalog request")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per catalog request")
	fs.StringVar(&cfg.ReportCSV, "report", cfg.ReportCSV, "write a CSV manifest of every file outcome to this path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&noColor, "no-color", false, "disable colored output")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return false, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	if len(positional) > 4 {
		return false, fmt.Errorf("too many arguments: %s", strings.Join(positional[4:], " "))
	}
	targets := []func(string) error{
		func(v string) error { cfg.Token = v; return nil },
		func(v string) error { cfg.Domain = v; return nil },
		func(v string) error {
			m, err := sync.ParseMode(v)
			if err != nil {
				return err
			}
			cfg.Mode = m
			return nil
		},
		func(v string) error { cfg.OutDir = v; return nil },
	}
	for i, v := range positional {
		if err := targets[i](v); err != nil {
			return false, err
		}
	}
	return noColor, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func promptToken(w io.Writer) (string, error) {
	fmt.Fprint(w, "Canvas access token: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func summary(s sync.Stats) string {
	return fmt.Sprintf("%d courses: %d downloaded, %d skipped, %d failed (%s in %s)",
		s.Courses, s.Downloaded, s.Skipped, s.Failed, report.HumanBytes(s.Bytes), s.Duration.Round(time.Second))
}
