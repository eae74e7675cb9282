package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/lambdalens/internal/config"
	"github.com/mvp-joe/lambdalens/internal/metadata"
	"github.com/mvp-joe/lambdalens/internal/metadata/javasrc"
	"github.com/mvp-joe/lambdalens/internal/scan"
)

var baselineOutputFlag string

// baselineCmd represents the baseline command
var baselineCmd = &cobra.Command{
	Use:   "baseline ARCHIVE",
	Short: "Dump an API surface as a baseline method list",
	Long: `Baseline extracts every candidate type and its declared methods from a
ZIP/JAR of Java sources and writes them in the comma-separated baseline
format consumed by 'lambdalens analyze':

  typeName[,methodName,paramType1,paramType2,...]

A type with no methods emits a single line with just its name.

Example:
  lambdalens baseline jdk7-src.zip -o jdk7-methods.csv
`,
	Args: cobra.ExactArgs(1),
	RunE: runBaseline,
}

func init() {
	rootCmd.AddCommand(baselineCmd)
	baselineCmd.Flags().StringVarP(&baselineOutputFlag, "output", "o", "-", "Baseline destination (\"-\" for stdout)")
}

func runBaseline(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

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

	out, closeOut, err := openOutput(baselineOutputFlag)
	if err != nil {
		return &ioError{err: err}
	}
	defer closeOut()

	w := bufio.NewWriter(out)
	types, methods := 0, 0
	for _, name := range candidates {
		if ctx.Err() != nil {
			return fmt.Errorf("baseline dump cancelled")
		}

		rec, err := provider.Resolve(ctx, name)
		if err != nil {
			if errors.Is(err, metadata.ErrNotFound) {
				log.Printf("Type not resolvable: %s", name)
				continue
			}
			return err
		}

		types++
		wrote := false
		for _, m := range rec.Methods {
			if m.IsSynthetic || strings.Contains(m.Name, "$") {
				continue
			}
			fields := append([]string{rec.QualifiedName, m.Name}, m.Params...)
			fmt.Fprintln(w, strings.Join(fields, ","))
			wrote = true
			methods++
		}
		if !wrote {
			// Register the type even with zero methods.
			fmt.Fprintln(w, rec.QualifiedName)
		}
	}

	if err := w.Flush(); err != nil {
		return &ioError{err: fmt.Errorf("failed to write baseline: %w", err)}
	}

	log.Printf("Dumped %d methods across %d types", methods, types)
	return nil
}
