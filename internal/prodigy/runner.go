package prodigy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Recipes supported by Start.
const (
	RecipeSpansManual = "spans.manual"
	RecipeNERManual   = "ner.manual"
)

const (
	versionTimeout = 10 * time.Second
	statsTimeout   = 30 * time.Second
)

// Runner launches the Prodigy binary as a subprocess.
type Runner struct {
	Binary string
}

// NewRunner creates a runner for the given binary, defaulting to
// "prodigy" on PATH.
func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = "prodigy"
	}
	return &Runner{Binary: binary}
}

// Options configure an annotation session.
type Options struct {
	Dataset      string
	Model        string
	Input        string
	PatternsFile string
	Labels       []string
	Host         string
	Port         int
	Extra        map[string]string
}

func (o Options) args(recipe string) []string {
	labels := o.Labels
	if len(labels) == 0 {
		labels = []string{"PHONETIC", "DIALECT", "SLANG"}
	}
	host := o.Host
	if host == "" {
		host = "localhost"
	}
	port := o.Port
	if port == 0 {
		port = 8080
	}

	args := []string{
		recipe,
		o.Dataset,
		o.Model,
		o.Input,
		"--loader", "jsonl",
		"--label", strings.Join(labels, ","),
		"--host", host,
		"--port", strconv.Itoa(port),
	}
	if o.PatternsFile != "" {
		args = append(args, "--patterns", o.PatternsFile)
	}

	// Extra flags in sorted order so the command line is reproducible.
	keys := make([]string, 0, len(o.Extra))
	for key := range o.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, "--"+key, o.Extra[key])
	}
	return args
}

// Start launches an annotation session and returns without waiting for
// it to finish. The caller owns the process: Wait on it, or cancel ctx
// to kill it. Prodigy's own output goes straight to the terminal. A
// patterns file that does not exist is dropped with a warning rather
// than passed through, since Prodigy refuses to start on a missing
// file.
func (r *Runner) Start(ctx context.Context, recipe string, opts Options) (*exec.Cmd, error) {
	switch recipe {
	case RecipeSpansManual, RecipeNERManual:
	default:
		return nil, fmt.Errorf("unsupported recipe: %s", recipe)
	}
	if opts.Dataset == "" {
		return nil, fmt.Errorf("dataset name required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model name required")
	}
	if opts.Input == "" {
		return nil, fmt.Errorf("input file required")
	}
	if opts.PatternsFile != "" {
		if _, err := os.Stat(opts.PatternsFile); err != nil {
			slog.Warn("Patterns file not found, starting without patterns", "path", opts.PatternsFile)
			opts.PatternsFile = ""
		}
	}

	args := opts.args(recipe)
	slog.Info("Running Prodigy command", "command", r.Binary+" "+strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start prodigy: %w", err)
	}
	return cmd, nil
}

// Version reports the installed Prodigy version.
func (r *Runner) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, "--version")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("prodigy version check: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Installed reports whether the Prodigy binary runs at all, logging the
// version when it does.
func (r *Runner) Installed(ctx context.Context) bool {
	version, err := r.Version(ctx)
	if err != nil {
		slog.Error("Prodigy check failed", "error", err)
		return false
	}
	slog.Info("Prodigy version", "version", version)
	return true
}

// AnnotationStats summarize a Prodigy dataset.
type AnnotationStats struct {
	Total     int `json:"total_examples" yaml:"total_examples"`
	Annotated int `json:"annotated_examples" yaml:"annotated_examples"`
	Pending   int `json:"pending_examples" yaml:"pending_examples"`
}

// Stats reads dataset counts from prodigy db-stats. The output is free
// text and varies between Prodigy versions, so counts that cannot be
// found parse as zero.
func (r *Runner) Stats(ctx context.Context, dataset string) (AnnotationStats, error) {
	if dataset == "" {
		return AnnotationStats{}, fmt.Errorf("dataset name required")
	}

	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, "db-stats", dataset)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return AnnotationStats{}, fmt.Errorf("prodigy db-stats: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseStats(stdout.String()), nil
}

func parseStats(output string) AnnotationStats {
	var stats AnnotationStats
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "total"):
			if n, ok := lastInt(line); ok {
				stats.Total = n
			}
		case strings.Contains(lower, "annotated"):
			if n, ok := lastInt(line); ok {
				stats.Annotated = n
			}
		}
	}
	stats.Pending = stats.Total - stats.Annotated
	return stats
}

func lastInt(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// WaitReady polls the annotation UI until it answers or the timeout
// passes. Prodigy takes a moment to bind its port after Start returns.
func WaitReady(ctx context.Context, host string, port int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := fmt.Sprintf("http://%s:%d/", host, port)
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create readiness request: %w", err)
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode < http.StatusInternalServerError {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("annotation server at %s not ready: %w", url, ctx.Err())
		case <-ticker.C:
		}
	}
}
