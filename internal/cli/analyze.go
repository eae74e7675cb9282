package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/lambdalens/internal/analyzer"
	"github.com/mvp-joe/lambdalens/internal/config"
	"github.com/mvp-joe/lambdalens/internal/watcher"
)

var (
	analyzeOutputFlag       string
	analyzeTypeFlag         string
	analyzeFunctionalFlag   string
	analyzeInterfacesFlag   bool
	analyzeSourcesFlag      bool
	analyzeMarkNewFlag      bool
	analyzeIgnoreStreamFlag bool
	analyzeQuietFlag        bool
	analyzeWatchFlag        bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] BASELINE_FILE ARCHIVE",
	Short: "Analyze a candidate API surface against a baseline",
	Long: `Analyze classifies the candidate surface's functional interfaces, finds
methods that can take lambda expressions as parameters and methods that
return streams, and marks which findings are new relative to the baseline.

BASELINE_FILE is a comma-separated dump of the baseline surface, one record
per line: typeName[,methodName,paramType1,...]. ARCHIVE is either a ZIP/JAR
of Java sources or a SQLite index built with 'lambdalens index'.

Examples:
  # Full scan with functional interface list and stream sources
  lambdalens analyze -p -s -n jdk7-methods.csv jdk8-src.zip

  # Where can java.util.function.Function be passed?
  lambdalens analyze -f java.util.function.Function jdk7-methods.csv jdk8-src.zip

  # Analyze a single type, report to stdout
  lambdalens analyze -t java.util.Optional -o - jdk7-methods.csv jdk8-src.zip
`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeOutputFlag, "output", "o", "/tmp/lambdalens-report.txt", "Report destination (\"-\" for stdout)")
	analyzeCmd.Flags().StringVarP(&analyzeTypeFlag, "type", "t", "", "Single type to analyze (rather than the full surface)")
	analyzeCmd.Flags().StringVarP(&analyzeFunctionalFlag, "functional", "f", "", "Comma-separated functional interface types to search for")
	analyzeCmd.Flags().BoolVarP(&analyzeInterfacesFlag, "print-interfaces", "p", false, "Include the list of functional interfaces found")
	analyzeCmd.Flags().BoolVarP(&analyzeSourcesFlag, "stream-sources", "s", false, "Include methods that return the stream source type")
	analyzeCmd.Flags().BoolVarP(&analyzeMarkNewFlag, "mark-new", "n", false, "Mark new types and methods")
	analyzeCmd.Flags().BoolVarP(&analyzeIgnoreStreamFlag, "ignore-stream", "i", false, "Ignore the stream package for method searches")
	analyzeCmd.Flags().BoolVarP(&analyzeQuietFlag, "quiet", "q", false, "Suppress progress output")
	analyzeCmd.Flags().BoolVarP(&analyzeWatchFlag, "watch", "w", false, "Re-run the analysis when the archive or baseline changes")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeTypeFlag != "" && analyzeFunctionalFlag != "" {
		return fmt.Errorf("--type and --functional are mutually exclusive")
	}

	baselinePath, archivePath := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("Namespace roots: %v", cfg.Namespaces.Roots)
		log.Printf("Source type: %s", cfg.SourceType)
	}

	opts := analyzer.Options{
		Roots:               cfg.Namespaces.Roots,
		SourceType:          cfg.SourceType,
		StreamPackage:       cfg.Namespaces.StreamPackage,
		Workers:             cfg.Workers,
		TargetType:          analyzeTypeFlag,
		MarkNew:             analyzeMarkNewFlag,
		PrintInterfaces:     analyzeInterfacesFlag,
		PrintSources:        analyzeSourcesFlag,
		IgnoreStreamPackage: analyzeIgnoreStreamFlag,
	}
	if analyzeFunctionalFlag != "" {
		opts.FunctionalTypes = strings.Split(analyzeFunctionalFlag, ",")
	}

	// Handle interrupt signals gracefully
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling analysis...")
		cancel()
	}()

	runOnce := func() error {
		return analyzeOnce(ctx, baselinePath, archivePath, opts)
	}

	if err := runOnce(); err != nil {
		return err
	}

	if !analyzeWatchFlag {
		return nil
	}

	// Watch mode: re-run the whole analysis whenever either input changes.
	w, err := watcher.New([]string{baselinePath, archivePath}, func() {
		if err := runOnce(); err != nil {
			log.Printf("Re-analysis failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watch mode: %w", err)
	}
	defer w.Close()

	if !analyzeQuietFlag {
		log.Println("Watching for changes (Ctrl+C to stop)...")
	}
	return w.Watch(ctx)
}

// analyzeOnce builds the analyzer, opens the output, and runs one full
// analysis pass.
func analyzeOnce(ctx context.Context, baselinePath, archivePath string, opts analyzer.Options) error {
	reporter := NewCLIProgressReporter(analyzeQuietFlag)

	a, err := analyzer.New(ctx, baselinePath, archivePath, opts, reporter)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("analysis cancelled")
		}
		return &ioError{err: err}
	}
	defer a.Close()

	out, closeOut, err := openOutput(analyzeOutputFlag)
	if err != nil {
		return &ioError{err: err}
	}
	defer closeOut()

	if err := a.Run(ctx, out); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("analysis cancelled")
		}
		return err
	}

	if !analyzeQuietFlag && analyzeOutputFlag != "-" {
		log.Printf("Report written to %s", analyzeOutputFlag)
	}
	return nil
}

// openOutput resolves the report destination. "-" means stdout, which the
// caller must not close.
func openOutput(dest string) (io.Writer, func() error, error) {
	if dest == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(dest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open output %s: %w", dest, err)
	}
	return f, f.Close, nil
}
