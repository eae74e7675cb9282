package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/lambdalens/internal/config"
	"github.com/mvp-joe/lambdalens/internal/metadata"
	"github.com/mvp-joe/lambdalens/internal/metadata/indexdb"
	"github.com/mvp-joe/lambdalens/internal/metadata/javasrc"
	"github.com/mvp-joe/lambdalens/internal/scan"
)

var indexQuietFlag bool

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index SRC_ARCHIVE INDEX_DB",
	Short: "Build a SQLite metadata index from a source archive",
	Long: `Index parses every candidate type in a ZIP/JAR of Java sources and stores
its declared methods in a SQLite database. The resulting index can be passed
to 'lambdalens analyze' in place of the source archive, which is much faster
for repeated runs.

Examples:
  lambdalens index jdk8-src.zip jdk8.db
  lambdalens analyze -p -s -n jdk7-methods.csv jdk8.db
`,
	Args: cobra.ExactArgs(2),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&indexQuietFlag, "quiet", "q", false, "Suppress progress output")
}

func runIndex(cmd *cobra.Command, args []string) error {
	archivePath, dbPath := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling indexing...")
		cancel()
	}()

	provider, err := javasrc.Open(archivePath)
	if err != nil {
		return &ioError{err: err}
	}
	defer provider.Close()

	candidates, err := scan.ListCandidates(archivePath, cfg.Namespaces.Roots)
	if err != nil {
		return &ioError{err: err}
	}

	db, err := indexdb.Open(dbPath)
	if err != nil {
		return &ioError{err: err}
	}
	defer db.Close()

	var bar *progressbar.ProgressBar
	if !indexQuietFlag {
		log.Printf("Indexing %d types into %s", len(candidates), dbPath)
		bar = progressbar.NewOptions(len(candidates),
			progressbar.OptionSetDescription("Indexing types"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}

	indexed, skipped := 0, 0
	for _, name := range candidates {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}

		rec, err := provider.Resolve(ctx, name)
		if err != nil {
			if errors.Is(err, metadata.ErrNotFound) {
				skipped++
				if !indexQuietFlag {
					log.Printf("Type not resolvable: %s", name)
				}
			} else {
				return err
			}
		} else if err := db.WriteType(ctx, rec); err != nil {
			return err
		} else {
			indexed++
		}

		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	log.Printf("Indexed %d types (%d skipped)", indexed, skipped)
	return nil
}
