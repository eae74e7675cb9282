// Package report renders the analysis results as a grouped, underlined text
// report and accumulates summary statistics.
//
// The report stream is separate from the progress channel: statistics and
// per-type failures go to the logger, never into the report file.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mvp-joe/lambdalens/internal/baseline"
	"github.com/mvp-joe/lambdalens/internal/signature"
)

const newMarker = " NEW"

// Stats summarizes one report section.
type Stats struct {
	// Methods is the total number of matching operations rendered.
	Methods int
	// NewMethods counts operations absent from the baseline.
	NewMethods int
	// Types is the number of distinct types involved.
	Types int
}

// Writer renders report sections to a single output stream.
type Writer struct {
	w       io.Writer
	index   *baseline.Index
	markNew bool
	err     error
}

// NewWriter creates a report writer. When markNew is set, operations and
// types absent from the baseline index get a trailing novelty marker.
func NewWriter(w io.Writer, index *baseline.Index, markNew bool) *Writer {
	return &Writer{w: w, index: index, markNew: markNew}
}

// FunctionalInterfaces renders the sorted contract-type list section.
func (r *Writer) FunctionalInterfaces(contractTypes []string) error {
	r.section("Functional Interfaces")

	names := sortedCopy(contractTypes)
	for _, name := range names {
		line := name
		if r.markNew && !r.index.Contains(name) {
			line += newMarker
		}
		r.line(line)
	}
	r.line("")
	return r.err
}

// LambdaMethods renders the main section: per type, every operation that can
// take a lambda expression for a parameter. Types whose names start with
// excludePrefix are left out (empty prefix excludes nothing).
func (r *Writer) LambdaMethods(methods map[string][]signature.Signature, excludePrefix string) (Stats, error) {
	r.section("Methods that can use Lambda expressions for parameters")
	r.line("")
	return r.renderGroups(methods, excludePrefix), r.err
}

// SourceMethods renders the section listing operations that return the
// designated source type.
func (r *Writer) SourceMethods(methods map[string][]signature.Signature, excludePrefix string) (Stats, error) {
	r.section("Stream sources")
	r.line("")
	return r.renderGroups(methods, excludePrefix), r.err
}

// renderGroups renders one group per type, sorted by type name, and
// accumulates statistics across the section.
func (r *Writer) renderGroups(methods map[string][]signature.Signature, excludePrefix string) Stats {
	names := make([]string, 0, len(methods))
	for name := range methods {
		if excludePrefix != "" && strings.HasPrefix(name, excludePrefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var stats Stats
	for _, name := range names {
		r.line(name)
		r.line(strings.Repeat("-", len(name)))

		for _, sig := range methods[name] {
			line := sig.String()
			if r.index.IsNewMethod(name, sig) {
				stats.NewMethods++
				if r.markNew {
					line += newMarker
				}
			}
			r.line(line)
			stats.Methods++
		}
		r.line("")
	}
	stats.Types = len(names)
	return stats
}

// section writes a header with an underline of matching length.
func (r *Writer) section(title string) {
	r.line(title)
	r.line(strings.Repeat("=", len(title)))
}

func (r *Writer) line(s string) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintln(r.w, s)
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
