package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go-screen-inspector/internal/analyzer"
	apperrors "go-screen-inspector/internal/errors"
	"go-screen-inspector/internal/logger"
	"go-screen-inspector/pkg/models"
	"go-screen-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// cliConfig holds the parsed command line
type cliConfig struct {
	Workers   int
	Parallel  bool
	Pretty    bool
	LogLevel  string
	MaxPixels int64
	Paths     []string
}

// fileReport is one output line
type fileReport struct {
	Path   string                 `json:"path"`
	Width  int                    `json:"width,omitempty"`
	Height int                    `json:"height,omitempty"`
	Result *models.AnalysisResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
	Code   string                 `json:"code,omitempty"`
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run analyzes every requested file and returns the process exit code:
// 0 when all files succeed, 1 when any fails, 2 on usage errors
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}

	logger.UseConsole(cfg.LogLevel)

	opts := analyzer.DefaultOptions().WithMaxPixels(cfg.MaxPixels)
	if cfg.Parallel {
		opts = opts.WithParallel(0)
	}
	imageAnalyzer, err := analyzer.NewImageAnalyzer(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}
	defer imageAnalyzer.Close()

	paths := expandPaths(cfg.Paths)
	reports := analyzeAll(imageAnalyzer, paths, cfg.Workers)

	encoder := json.NewEncoder(stdout)
	if cfg.Pretty {
		encoder.SetIndent("", "  ")
	}

	failed := 0
	for _, report := range reports {
		if report.Error != "" {
			failed++
		}
		if err := encoder.Encode(report); err != nil {
			fmt.Fprintf(stderr, "Failed to write output: %v\n", err)
			return 1
		}
	}

	logger.WithFields(logrus.Fields{
		"files":  len(reports),
		"failed": failed,
	}).Info("Inspection finished")

	if failed > 0 {
		return 1
	}
	return 0
}

// parseFlags defines and parses command-line flags
func parseFlags(args []string, stderr io.Writer) (*cliConfig, error) {
	cfg := &cliConfig{}

	flags := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: inspect [flags] <image or directory>...")
		flags.PrintDefaults()
	}

	flags.IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of files to analyze concurrently.")
	flags.BoolVar(&cfg.Parallel, "parallel", false, "Run the four feature analyzers of each file concurrently.")
	flags.BoolVar(&cfg.Pretty, "pretty", false, "Indent JSON output.")
	flags.Int64Var(&cfg.MaxPixels, "max-pixels", analyzer.DefaultMaxPixels, "Reject images whose header declares more pixels than this.")
	flags.StringVar(&cfg.LogLevel, "log-level", "warn", "Log level on stderr (debug, info, warn, error).")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	cfg.Paths = flags.Args()

	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("at least one image path is required")
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("--workers must be a positive integer")
	}
	if cfg.MaxPixels <= 0 {
		return nil, fmt.Errorf("--max-pixels must be a positive integer")
	}
	return cfg, nil
}

// expandPaths replaces each directory with the image files directly inside
// it, sorted by name. Other paths pass through untouched so that missing
// files are reported per file.
func expandPaths(paths []string) []string {
	var expanded []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			expanded = append(expanded, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			expanded = append(expanded, path)
			continue
		}
		var files []string
		for _, entry := range entries {
			if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
		sort.Strings(files)
		expanded = append(expanded, files...)
	}
	return expanded
}

// analyzeAll runs the files through a worker pool and returns reports in
// input order
func analyzeAll(imageAnalyzer analyzer.ImageAnalyzer, paths []string, workers int) []fileReport {
	reports := make([]fileReport, len(paths))

	pool := analyzer.NewWorkerPool(workers)
	pool.Start()
	defer pool.Close()

	for i, path := range paths {
		job := func() {
			reports[i] = inspectFile(imageAnalyzer, path)
		}
		if !pool.Submit(job) {
			job()
		}
	}
	pool.Wait()

	return reports
}

func inspectFile(imageAnalyzer analyzer.ImageAnalyzer, path string) fileReport {
	report := fileReport{Path: path}

	if err := validation.ValidatePath(path); err != nil {
		report.Error, report.Code = errorMessage(err), apperrors.GetCode(err)
		return report
	}

	inspection, err := imageAnalyzer.Inspect(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Debug("Inspection failed")
		report.Error, report.Code = errorMessage(err), apperrors.GetCode(err)
		return report
	}

	report.Width = inspection.Width
	report.Height = inspection.Height
	report.Result = &inspection.Result
	return report
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
