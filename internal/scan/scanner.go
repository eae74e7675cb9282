// Package scan walks the candidate API surface and finds operations that
// accept contract-type parameters or return the designated source type.
package scan

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/mvp-joe/lambdalens/internal/metadata"
	"github.com/mvp-joe/lambdalens/internal/signature"
)

// ErrNotContractType is returned when a caller asks to scan for a type that
// was not classified as a contract type. This is a configuration error,
// surfaced before any scanning work begins.
var ErrNotContractType = errors.New("type is not a contract type")

// Reporter receives scan progress events on the progress channel, distinct
// from the report stream.
type Reporter interface {
	OnScanStart(totalTypes int)
	OnTypeScanned(typeName string)
	OnResolveFailure(typeName string)
	OnScanComplete()
}

// NopReporter discards all progress events.
type NopReporter struct{}

func (NopReporter) OnScanStart(int)         {}
func (NopReporter) OnTypeScanned(string)    {}
func (NopReporter) OnResolveFailure(string) {}
func (NopReporter) OnScanComplete()         {}

// Result holds the two result mappings produced by a scan pass. A type
// appears in a mapping only if its match list is non-empty; each key is
// written exactly once per pass.
type Result struct {
	// FunctionalParams maps type name to operations whose parameter list
	// contains a contract-type reference.
	FunctionalParams map[string][]signature.Signature
	// SourceReturning maps type name to operations whose return type equals
	// the designated source type exactly.
	SourceReturning map[string][]signature.Signature
	// Failures lists types that could not be resolved, in input order.
	Failures []string
}

// Options configures a Scanner.
type Options struct {
	// SourceType is the fully qualified return type that marks an operation
	// as a chainable source (e.g. "java.util.stream.Stream").
	SourceType string
	// Workers bounds the scan fan-out; <= 0 uses GOMAXPROCS.
	Workers int
	// Reporter receives progress events; nil means no reporting.
	Reporter Reporter
}

// Scanner matches candidate operations against the contract-type set.
type Scanner struct {
	provider   metadata.Provider
	contracts  map[string]struct{}
	sourceType string
	workers    int
	reporter   Reporter
}

// New creates a Scanner over the given contract-type set.
func New(provider metadata.Provider, contractTypes []string, opts Options) *Scanner {
	contracts := make(map[string]struct{}, len(contractTypes))
	for _, t := range contractTypes {
		contracts[t] = struct{}{}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &Scanner{
		provider:   provider,
		contracts:  contracts,
		sourceType: opts.SourceType,
		workers:    workers,
		reporter:   reporter,
	}
}

// ScanAll scans every candidate type, matching parameters against the whole
// contract-type set.
func (s *Scanner) ScanAll(ctx context.Context, candidates []string) (*Result, error) {
	return s.scan(ctx, candidates, s.memberOfContractSet)
}

// ScanFor scans every candidate type, matching parameters against a single
// requested contract type. The request is rejected up front if the type is
// not in the contract-type set.
func (s *Scanner) ScanFor(ctx context.Context, candidates []string, contractType string) (*Result, error) {
	if _, ok := s.contracts[contractType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotContractType, contractType)
	}
	return s.scan(ctx, candidates, func(param string) bool {
		return param == contractType
	})
}

// ScanType scans a single type, matching against the whole contract-type set.
func (s *Scanner) ScanType(ctx context.Context, typeName string) (*Result, error) {
	return s.scan(ctx, []string{typeName}, s.memberOfContractSet)
}

func (s *Scanner) memberOfContractSet(param string) bool {
	_, ok := s.contracts[param]
	return ok
}

// typeMatches carries one worker's output for one type.
type typeMatches struct {
	name    string
	params  []signature.Signature
	returns []signature.Signature
	failed  bool
}

// scan fans out over candidate types. Each worker computes the complete
// match lists for one type; a single collector goroutine owns the result
// maps, so every key is written exactly once with no locking.
func (s *Scanner) scan(ctx context.Context, candidates []string, match func(string) bool) (*Result, error) {
	// Sorted input keeps failure ordering and progress reproducible.
	names := make([]string, len(candidates))
	copy(names, candidates)
	sort.Strings(names)

	s.reporter.OnScanStart(len(names))

	jobs := make(chan string)
	out := make(chan typeMatches)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				out <- s.scanType(ctx, name, match)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, name := range names {
			select {
			case jobs <- name:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	result := &Result{
		FunctionalParams: make(map[string][]signature.Signature),
		SourceReturning:  make(map[string][]signature.Signature),
	}
	failed := make(map[string]struct{})
	for tm := range out {
		if tm.failed {
			failed[tm.name] = struct{}{}
			s.reporter.OnResolveFailure(tm.name)
			continue
		}
		if len(tm.params) > 0 {
			result.FunctionalParams[tm.name] = tm.params
		}
		if len(tm.returns) > 0 {
			result.SourceReturning[tm.name] = tm.returns
		}
		s.reporter.OnTypeScanned(tm.name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, name := range names {
		if _, ok := failed[name]; ok {
			result.Failures = append(result.Failures, name)
		}
	}

	s.reporter.OnScanComplete()
	return result, nil
}

// scanType computes both match lists for one type. Resolution failure marks
// the type failed and never propagates past it.
func (s *Scanner) scanType(ctx context.Context, typeName string, match func(string) bool) typeMatches {
	tm := typeMatches{name: typeName}

	rec, err := s.provider.Resolve(ctx, typeName)
	if err != nil {
		tm.failed = true
		return tm
	}

	seen := make(map[uint64][]signature.Signature)
	for _, m := range rec.Methods {
		// Compiler-generated members encode a '$' in their names; skip them
		// from both passes.
		if m.IsSynthetic || strings.Contains(m.Name, "$") {
			continue
		}

		sig := m.Signature()

		if matchesContractParam(sig, match) && !containsSignature(seen, sig) {
			seen[sig.Hash()] = append(seen[sig.Hash()], sig)
			tm.params = append(tm.params, sig)
		}

		if s.sourceType != "" && m.Return == s.sourceType {
			tm.returns = append(tm.returns, sig)
		}
	}

	return tm
}

// matchesContractParam reports whether at least one parameter satisfies the
// match predicate. Array-typed parameters never match: their descriptor
// token starts with the array marker.
func matchesContractParam(sig signature.Signature, match func(string) bool) bool {
	for _, p := range sig.Params() {
		if strings.HasPrefix(p, "[") {
			continue
		}
		if match(p) {
			return true
		}
	}
	return false
}

// containsSignature checks structural-equality membership using the hash
// buckets accumulated so far. Two operations differing only in return type
// collapse to one entry.
func containsSignature(seen map[uint64][]signature.Signature, sig signature.Signature) bool {
	for _, s := range seen[sig.Hash()] {
		if s.Equal(sig) {
			return true
		}
	}
	return false
}
