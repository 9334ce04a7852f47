package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"thumbq/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Flavor:    "normal",
		Scheduler: "default",
		Engine:    "uring",
		CacheDir:  "/tmp/cache",
	}
}

func TestParseArgsDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Flavor = "large"
	cfg.Workers = 3

	opts, _, err := parseArgs(cfg, []string{"a.png", "b.jpg"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if opts.flavor != "large" || opts.scheduler != "default" || opts.engine != "uring" || opts.workers != 3 {
		t.Errorf("defaults not taken from config: %+v", opts)
	}
	if len(opts.paths) != 2 || opts.paths[1] != "b.jpg" {
		t.Errorf("paths = %v", opts.paths)
	}
}

func TestParseArgsFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(*options) bool
	}{
		{"flavor short", []string{"-f", "x-large"}, func(o *options) bool { return o.flavor == "x-large" }},
		{"scheduler long", []string{"--scheduler=background"}, func(o *options) bool { return o.scheduler == "background" }},
		{"unchecked", []string{"-u"}, func(o *options) bool { return o.unchecked }},
		{"dry run", []string{"--dry-run"}, func(o *options) bool { return o.dryRun }},
		{"wait", []string{"-w"}, func(o *options) bool { return o.wait }},
		{"listen", []string{"-l"}, func(o *options) bool { return o.listen }},
		{"list flavors", []string{"--list-flavors"}, func(o *options) bool { return o.listFlavors }},
		{"list schedulers", []string{"--list-schedulers"}, func(o *options) bool { return o.listSchedulers }},
		{"list mime", []string{"--list-mime"}, func(o *options) bool { return o.listMime }},
		{"engine", []string{"--engine", "blocking"}, func(o *options) bool { return o.engine == "blocking" }},
		{"workers", []string{"--workers", "8"}, func(o *options) bool { return o.workers == 8 }},
		{"metrics file", []string{"--metrics-file", "/tmp/m.prom"}, func(o *options) bool { return o.metricsFile == "/tmp/m.prom" }},
		{"verbose", []string{"-v"}, func(o *options) bool { return o.verbose }},
		{"version", []string{"--version"}, func(o *options) bool { return o.version }},
		{"combined", []string{"-un", "-f", "large", "x.png"}, func(o *options) bool {
			return o.unchecked && o.dryRun && o.flavor == "large" && len(o.paths) == 1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, _, err := parseArgs(testConfig(), tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseArgs(%v) failed: %v", tt.args, err)
			}
			if !tt.check(opts) {
				t.Errorf("parseArgs(%v) = %+v", tt.args, opts)
			}
		})
	}
}

func TestParseArgsUnknownFlag(t *testing.T) {
	if _, _, err := parseArgs(testConfig(), []string{"--bogus"}, io.Discard); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestPrintUsage(t *testing.T) {
	var flagOutput bytes.Buffer
	_, fs, err := parseArgs(testConfig(), nil, &flagOutput)
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	var buf bytes.Buffer
	printUsage(&buf, fs)
	for _, want := range []string{"Usage: thumbq", "--flavor", "--list-mime", "--engine"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
	if flagOutput.Len() != 0 {
		t.Errorf("usage leaked to the flag set output: %q", flagOutput.String())
	}
}

func TestParseArgsHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}} {
		opts, _, err := parseArgs(testConfig(), args, io.Discard)
		if err != nil {
			t.Fatalf("parseArgs(%v) failed: %v", args, err)
		}
		if !opts.help {
			t.Errorf("parseArgs(%v) did not set help", args)
		}
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"success", nil, 0, "", ""},
		{"usage", errUsage, 1, "", ""},
		{"missing first path", &missingPathError{path: "/x/gone.png"}, 1, "\"/x/gone.png\": No such file or directory\n", ""},
		{"other", errors.New("boom"), 1, "", "thumbq: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := report(tt.err, &stdout, &stderr); code != tt.wantCode {
				t.Errorf("report() = %d, want %d", code, tt.wantCode)
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if stderr.String() != tt.wantStderr {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestPrintList(t *testing.T) {
	items := []string{"video/mp4", "image/png", "application/pdf"}
	var buf bytes.Buffer
	if err := printList(&buf, items); err != nil {
		t.Fatalf("printList failed: %v", err)
	}
	if got, want := buf.String(), "application/pdf\nimage/png\nvideo/mp4\n"; got != want {
		t.Errorf("printList = %q, want %q", got, want)
	}
	if items[0] != "video/mp4" {
		t.Error("printList must not reorder its input")
	}
}

func TestReadPaths(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.png")
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	input := first + "\n\n" + filepath.Join(dir, "later-missing.png") + "\n"
	paths, err := readPaths(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readPaths failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != first {
		t.Errorf("paths = %v", paths)
	}
}

func TestReadPathsFirstMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.png")

	_, err := readPaths(strings.NewReader(missing + "\n"))
	var mp *missingPathError
	if !errors.As(err, &mp) {
		t.Fatalf("expected missingPathError, got %v", err)
	}
	if want := `"` + missing + `": No such file or directory`; mp.Error() != want {
		t.Errorf("message = %q, want %q", mp.Error(), want)
	}
}

func TestReadPathsEmpty(t *testing.T) {
	paths, err := readPaths(strings.NewReader(""))
	if err != nil || len(paths) != 0 {
		t.Errorf("readPaths(empty) = %v, %v", paths, err)
	}
}
