// Package baseline loads the baseline API snapshot and answers novelty
// queries against it.
package baseline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mvp-joe/lambdalens/internal/signature"
)

// TypeNoveltyFunc decides whether a type is new relative to the index.
// See Index.SetTypeNovelty.
type TypeNoveltyFunc func(ix *Index, typeName string) bool

// Index maps baseline type names to the set of method signatures that
// existed in the baseline snapshot. It is built once and read-only after
// loading.
type Index struct {
	methods     map[string][]signature.Signature
	typeNovelty TypeNoveltyFunc
}

// New returns an empty index.
func New() *Index {
	return &Index{methods: make(map[string][]signature.Signature)}
}

// Load reads baseline records from r, one per line.
//
// Record format: comma-separated fields, "typeName[,methodName,param...]".
// A line with only a type name registers the type with zero methods. Fields
// contain no comma escaping; this is a hard format constraint. Parsing is
// lenient: blank lines are skipped and duplicate records are harmless since
// lookups are existence checks.
func Load(r io.Reader) (*Index, error) {
	ix := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ix.AddRecord(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read baseline: %w", err)
	}
	return ix, nil
}

// LoadFile opens and loads a baseline file.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// AddRecord parses a single baseline record and adds it to the index.
func (ix *Index) AddRecord(line string) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}

	fields := strings.Split(line, ",")
	typeName := fields[0]

	// Always register the type, even with zero methods.
	if _, ok := ix.methods[typeName]; !ok {
		ix.methods[typeName] = nil
	}

	if len(fields) < 2 {
		return
	}

	sig := signature.New(fields[1], fields[2:])
	ix.methods[typeName] = append(ix.methods[typeName], sig)
}

// Contains reports whether the baseline registered the type.
func (ix *Index) Contains(typeName string) bool {
	_, ok := ix.methods[typeName]
	return ok
}

// Signatures returns the baseline signatures recorded for a type.
func (ix *Index) Signatures(typeName string) []signature.Signature {
	return ix.methods[typeName]
}

// Len returns the number of distinct types in the baseline.
func (ix *Index) Len() int {
	return len(ix.methods)
}

// IsNewMethod reports whether the signature has no structurally equal
// counterpart in the baseline under the same type name. A type absent from
// the baseline makes every one of its methods new.
func (ix *Index) IsNewMethod(typeName string, sig signature.Signature) bool {
	sigs, ok := ix.methods[typeName]
	if !ok {
		return true
	}
	for _, s := range sigs {
		if s.Equal(sig) {
			return false
		}
	}
	return true
}

// IsNewType reports whether the type itself is new. The default policy
// always reports false, matching the historical behavior; callers that want
// real type novelty install AbsentFromBaseline via SetTypeNovelty.
func (ix *Index) IsNewType(typeName string) bool {
	if ix.typeNovelty == nil {
		return false
	}
	return ix.typeNovelty(ix, typeName)
}

// SetTypeNovelty installs the policy used by IsNewType.
func (ix *Index) SetTypeNovelty(fn TypeNoveltyFunc) {
	ix.typeNovelty = fn
}

// AbsentFromBaseline is a TypeNoveltyFunc that reports a type as new when
// the baseline never registered it.
func AbsentFromBaseline(ix *Index, typeName string) bool {
	return !ix.Contains(typeName)
}
