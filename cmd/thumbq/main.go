package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"thumbq/internal/config"
	"thumbq/internal/logging"
	"thumbq/internal/mediatypes"
	"thumbq/internal/metrics"
	"thumbq/internal/scan"
	"thumbq/internal/thumbnailer"
)

// errUsage is returned after the usage text has been printed.
var errUsage = errors.New("usage")

// missingPathError reports a first standard-input path that does not exist.
type missingPathError struct {
	path string
}

func (e *missingPathError) Error() string {
	return fmt.Sprintf("\"%s\": No such file or directory", e.path)
}

type options struct {
	flavor         string
	scheduler      string
	unchecked      bool
	dryRun         bool
	wait           bool
	listen         bool
	listFlavors    bool
	listSchedulers bool
	listMime       bool
	engine         string
	workers        int
	metricsFile    string
	verbose        bool
	version        bool
	help           bool

	paths []string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	cancel()

	os.Exit(report(err, os.Stdout, os.Stderr))
}

// report prints err where the user expects it and returns the exit status.
func report(err error, stdout, stderr io.Writer) int {
	var missing *missingPathError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 1
	case errors.As(err, &missing):
		fmt.Fprintln(stdout, missing.Error())
		return 1
	default:
		fmt.Fprintf(stderr, "thumbq: %v\n", err)
		return 1
	}
}

func newFlagSet(cfg *config.Config, opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("thumbq", pflag.ContinueOnError)
	fs.StringVarP(&opts.flavor, "flavor", "f", cfg.Flavor, "thumbnail flavor")
	fs.StringVarP(&opts.scheduler, "scheduler", "s", cfg.Scheduler, "thumbnailer scheduler")
	fs.BoolVarP(&opts.unchecked, "unchecked", "u", false, "do not check whether a valid thumbnail already exists")
	fs.BoolVarP(&opts.dryRun, "dry-run", "n", false, "print uri and mime type instead of queueing")
	fs.BoolVarP(&opts.wait, "wait", "w", false, "print thumbnail paths as they become ready")
	fs.BoolVarP(&opts.listen, "listen", "l", false, "print every thumbnail the service reports ready")
	fs.BoolVar(&opts.listFlavors, "list-flavors", false, "list supported thumbnail flavors")
	fs.BoolVar(&opts.listSchedulers, "list-schedulers", false, "list supported schedulers")
	fs.BoolVar(&opts.listMime, "list-mime", false, "list supported media types")
	fs.StringVar(&opts.engine, "engine", cfg.Engine, "I/O engine (uring or blocking)")
	fs.IntVar(&opts.workers, "workers", cfg.Workers, "classification workers (0 = automatic)")
	fs.StringVar(&opts.metricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus metrics to this file on exit")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "print version information")
	fs.BoolVarP(&opts.help, "help", "h", false, "show help")
	fs.SortFlags = false
	return fs
}

// parseArgs parses the command line on top of the loaded configuration.
func parseArgs(cfg *config.Config, args []string, stderr io.Writer) (*options, *pflag.FlagSet, error) {
	opts := &options{}
	fs := newFlagSet(cfg, opts)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	opts.paths = fs.Args()
	return opts, fs, nil
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: thumbq [flags] [FILE...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Queue missing or outdated thumbnails. Reads paths from stdin when no FILE is given.")
	fmt.Fprintln(w)
	fmt.Fprint(w, fs.FlagUsages())
}

func run(ctx context.Context, args []string, stdin *os.File, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			logging.Warn("Invalid log_level %q in %s", cfg.LogLevel, cfg.File)
		} else {
			logging.SetLevel(level)
		}
	}

	opts, fs, err := parseArgs(cfg, args, os.Stderr)
	if err != nil {
		return err
	}
	if opts.help {
		printUsage(os.Stderr, fs)
		return nil
	}
	if opts.version {
		info := config.GetBuildInfo()
		fmt.Fprintf(stdout, "thumbq %s (commit %s, built %s, %s %s/%s)\n",
			info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
		return nil
	}
	if opts.verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	engine, err := scan.ParseEngine(opts.engine)
	if err != nil {
		return err
	}

	info := config.GetBuildInfo()
	metrics.InitializeMetrics()
	metrics.SetAppInfo(info.Version, info.Commit, info.GoVersion)
	if opts.metricsFile != "" {
		defer func() {
			if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
				logging.Error("Failed to write metrics to %s: %v", opts.metricsFile, err)
			}
		}()
	}

	client, err := thumbnailer.Connect(
		thumbnailer.WithTimeout(cfg.RPCTimeout),
		thumbnailer.WithObserver(metrics.NewRPCObserver()),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	if opts.listen {
		err := client.Listen(ctx, func(path string) { fmt.Fprintln(stdout, path) })
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	if list, ok, err := listing(ctx, client, opts); ok {
		if err != nil {
			return err
		}
		return printList(stdout, list)
	}

	paths := opts.paths
	if len(paths) == 0 {
		if term.IsTerminal(int(stdin.Fd())) {
			printUsage(os.Stderr, fs)
			return errUsage
		}
		paths, err = readPaths(stdin)
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return nil
	}

	scanner, err := scan.New(scan.Config{
		CacheDir:  cfg.CacheDir,
		Engine:    engine,
		Workers:   opts.workers,
		Unchecked: opts.unchecked,
		Supported: func() scan.AllowListSource { return client.RequestSupported(ctx) },
		Observer:  metrics.NewScanObserver(),
	})
	if err != nil {
		return err
	}

	result, err := scanner.Scan(paths, opts.flavor)
	if err != nil {
		return err
	}

	if opts.dryRun {
		for i, u := range result.URIs {
			fmt.Fprintf(stdout, "%s\t%s\n", u, result.MimeTypes[i])
		}
		return nil
	}

	return submit(ctx, client, result, opts, stdout)
}

// listing answers the --list-* flags. ok is false when none was given.
func listing(ctx context.Context, client *thumbnailer.Client, opts *options) ([]string, bool, error) {
	switch {
	case opts.listFlavors:
		list, err := client.Flavors(ctx)
		return list, true, err
	case opts.listSchedulers:
		list, err := client.Schedulers(ctx)
		return list, true, err
	case opts.listMime:
		list, err := client.Supported(ctx)
		if err != nil {
			return nil, true, err
		}
		return mediatypes.NewAllowList(list).Sorted(), true, nil
	default:
		return nil, false, nil
	}
}

// submit queues the accepted batch and optionally waits for it.
func submit(ctx context.Context, client *thumbnailer.Client, result *scan.Result, opts *options, stdout io.Writer) error {
	if len(result.URIs) == 0 {
		logging.Info("Nothing to queue")
		return nil
	}

	var sub *thumbnailer.Subscription
	if opts.wait {
		var err error
		sub, err = client.Subscribe()
		if err != nil {
			return err
		}
		defer sub.Close()
	}

	handle, err := client.Queue(ctx, result.URIs, result.MimeTypes, opts.flavor, opts.scheduler)
	if err != nil {
		return err
	}

	if sub == nil {
		return nil
	}
	err = sub.Wait(ctx, handle, thumbnailer.IdleTimeout, func(path string) { fmt.Fprintln(stdout, path) })
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// printList writes items sorted, one per line.
func printList(w io.Writer, items []string) error {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	bw := bufio.NewWriter(w)
	for _, item := range sorted {
		bw.WriteString(item)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// readPaths reads one path per line. The first path must exist.
func readPaths(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading paths: %w", err)
	}

	if len(paths) > 0 {
		if _, err := os.Stat(paths[0]); errors.Is(err, os.ErrNotExist) {
			return nil, &missingPathError{path: paths[0]}
		}
	}
	return paths, nil
}
