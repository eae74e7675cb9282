// Package analyzer wires the analysis pipeline together: baseline index,
// candidate surface, contract-type classification, scanning, and reporting.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mvp-joe/lambdalens/internal/baseline"
	"github.com/mvp-joe/lambdalens/internal/classify"
	"github.com/mvp-joe/lambdalens/internal/metadata"
	"github.com/mvp-joe/lambdalens/internal/metadata/indexdb"
	"github.com/mvp-joe/lambdalens/internal/metadata/javasrc"
	"github.com/mvp-joe/lambdalens/internal/report"
	"github.com/mvp-joe/lambdalens/internal/scan"
)

// Options selects what the analyzer does and how results are rendered.
type Options struct {
	// Roots are the namespace prefixes of the public candidate surface.
	Roots []string
	// SourceType marks return-role matches (e.g. "java.util.stream.Stream").
	SourceType string
	// StreamPackage is excluded from results when IgnoreStreamPackage is set.
	StreamPackage string
	// Workers bounds the classification and scan fan-out; 0 = GOMAXPROCS.
	Workers int

	// TargetType analyzes a single type instead of the whole surface.
	TargetType string
	// FunctionalTypes restricts parameter matching to these contract types.
	// Mutually exclusive with TargetType.
	FunctionalTypes []string

	MarkNew             bool
	PrintInterfaces     bool
	PrintSources        bool
	IgnoreStreamPackage bool
}

// closableProvider is what both concrete providers give us.
type closableProvider interface {
	metadata.Provider
	io.Closer
}

// Analyzer holds the immutable analysis inputs, built once at startup.
type Analyzer struct {
	runID      uuid.UUID
	provider   closableProvider
	baseline   *baseline.Index
	candidates []string
	contracts  []string
	scanner    *scan.Scanner
	opts       Options
}

// New builds the analyzer: loads the baseline index, enumerates the
// candidate surface from the archive, and classifies the contract-type set.
// All file I/O happens here, before any analytical pass.
func New(ctx context.Context, baselinePath, archivePath string, opts Options, reporter scan.Reporter) (*Analyzer, error) {
	runID := uuid.New()
	log.Printf("Analysis run %s", runID)

	log.Println("Reading baseline method list...")
	idx, err := baseline.LoadFile(baselinePath)
	if err != nil {
		return nil, err
	}
	log.Printf("Baseline has %d types", idx.Len())

	provider, candidates, err := openSurface(ctx, archivePath, opts.Roots)
	if err != nil {
		return nil, err
	}
	log.Printf("Candidate surface has %d types", len(candidates))

	contracts := classify.New(provider, opts.Workers).ContractTypes(ctx, candidates)
	log.Printf("Found %d functional interfaces", len(contracts))

	scanner := scan.New(provider, contracts, scan.Options{
		SourceType: opts.SourceType,
		Workers:    opts.Workers,
		Reporter:   reporter,
	})

	return &Analyzer{
		runID:      runID,
		provider:   provider,
		baseline:   idx,
		candidates: candidates,
		contracts:  contracts,
		scanner:    scanner,
		opts:       opts,
	}, nil
}

// openSurface picks the metadata provider from the archive path and
// enumerates the candidate type list.
func openSurface(ctx context.Context, archivePath string, roots []string) (closableProvider, []string, error) {
	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".db", ".sqlite", ".sqlite3":
		provider, err := indexdb.Open(archivePath)
		if err != nil {
			return nil, nil, err
		}
		names, err := provider.TypeNames(ctx)
		if err != nil {
			provider.Close()
			return nil, nil, err
		}
		return provider, filterByRoots(names, roots), nil
	default:
		provider, err := javasrc.Open(archivePath)
		if err != nil {
			return nil, nil, err
		}
		candidates, err := scan.ListCandidates(archivePath, roots)
		if err != nil {
			provider.Close()
			return nil, nil, err
		}
		return provider, candidates, nil
	}
}

// filterByRoots keeps names under one of the namespace roots, mirroring the
// archive-entry filter for index-backed surfaces.
func filterByRoots(names []string, roots []string) []string {
	var kept []string
	for _, name := range names {
		for _, root := range roots {
			if strings.HasPrefix(name, root+".") {
				kept = append(kept, name)
				break
			}
		}
	}
	return kept
}

// ContractTypes returns the sorted contract-type set.
func (a *Analyzer) ContractTypes() []string {
	return a.contracts
}

// Close releases the metadata provider.
func (a *Analyzer) Close() error {
	return a.provider.Close()
}

// Run performs the configured analysis passes and writes the report to out.
// Summary statistics go to the progress channel, not the report stream.
func (a *Analyzer) Run(ctx context.Context, out io.Writer) error {
	w := report.NewWriter(out, a.baseline, a.opts.MarkNew)

	if a.opts.PrintInterfaces {
		if err := w.FunctionalInterfaces(a.contracts); err != nil {
			return fmt.Errorf("failed to write functional interfaces: %w", err)
		}
	}

	excludePrefix := ""
	if a.opts.IgnoreStreamPackage {
		excludePrefix = a.opts.StreamPackage
	}

	var last *scan.Result
	switch {
	case a.opts.TargetType != "":
		result, err := a.scanner.ScanType(ctx, a.opts.TargetType)
		if err != nil {
			return err
		}
		// Single-type analysis reports the full result, no exclusions.
		if err := a.writeLambdaSection(w, result, ""); err != nil {
			return err
		}
		last = result

	case len(a.opts.FunctionalTypes) > 0:
		for _, ft := range a.opts.FunctionalTypes {
			log.Printf("Searching for methods that can use %s", ft)
			result, err := a.scanner.ScanFor(ctx, a.candidates, ft)
			if err != nil {
				return err
			}
			if err := a.writeLambdaSection(w, result, excludePrefix); err != nil {
				return err
			}
			last = result
		}

	default:
		result, err := a.scanner.ScanAll(ctx, a.candidates)
		if err != nil {
			return err
		}
		if err := a.writeLambdaSection(w, result, excludePrefix); err != nil {
			return err
		}
		last = result
	}

	if a.opts.PrintSources && last != nil {
		stats, err := w.SourceMethods(last.SourceReturning, excludePrefix)
		if err != nil {
			return fmt.Errorf("failed to write stream sources: %w", err)
		}
		log.Printf("Stream sources/intermediate operations: %d methods in %d types",
			stats.Methods, stats.Types)
	}

	return nil
}

func (a *Analyzer) writeLambdaSection(w *report.Writer, result *scan.Result, excludePrefix string) error {
	stats, err := w.LambdaMethods(result.FunctionalParams, excludePrefix)
	if err != nil {
		return fmt.Errorf("failed to write lambda methods: %w", err)
	}
	log.Printf("Lambda usage: %d methods (of which %d are new) in %d types",
		stats.Methods, stats.NewMethods, stats.Types)
	return nil
}
