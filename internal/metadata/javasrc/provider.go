// Package javasrc resolves type metadata by parsing Java sources from a
// ZIP/JAR archive with tree-sitter.
//
// Parameter and return types are qualified against each file's imports so
// the tokens line up with the fully qualified names the matching engine
// compares; arrays are encoded in JVM descriptor form.
package javasrc

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/maypok86/otter"
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/mvp-joe/lambdalens/internal/metadata"
)

// resolvedCacheSize bounds the memoization cache. A full JDK surface is
// around 20k top-level types.
const resolvedCacheSize = 32_768

// Provider resolves types from a Java source archive.
type Provider struct {
	archivePath string
	rc          *zip.ReadCloser
	files       map[string]*zip.File // qualified name -> source entry
	language    *sitter.Language
	cache       otter.Cache[string, *metadata.TypeRecord]
	closeOnce   sync.Once
}

// Open indexes the archive's .java entries by qualified name. The archive
// stays open until Close; entry reads are safe for concurrent use.
func Open(archivePath string) (*Provider, error) {
	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source archive %s: %w", archivePath, err)
	}

	files := make(map[string]*zip.File)
	for _, f := range rc.File {
		if path.Ext(f.Name) != ".java" || strings.HasSuffix(f.Name, "package-info.java") || strings.HasSuffix(f.Name, "module-info.java") {
			continue
		}
		name := strings.ReplaceAll(strings.TrimSuffix(f.Name, ".java"), "/", ".")
		files[name] = f
	}

	cache, err := otter.MustBuilder[string, *metadata.TypeRecord](resolvedCacheSize).Build()
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to build resolution cache: %w", err)
	}

	return &Provider{
		archivePath: archivePath,
		rc:          rc,
		files:       files,
		language:    sitter.NewLanguage(java.Language()),
		cache:       cache,
	}, nil
}

// Close releases the archive and the memoization cache.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		p.cache.Close()
	})
	return p.rc.Close()
}

// Len returns the number of indexed source entries.
func (p *Provider) Len() int {
	return len(p.files)
}

// Resolve parses the source entry for the qualified name and returns its
// type record. Resolution is memoized; repeated lookups of hot types
// (contract-type classification then scanning) hit the cache.
func (p *Provider) Resolve(ctx context.Context, qualifiedName string) (*metadata.TypeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if rec, ok := p.cache.Get(qualifiedName); ok {
		if rec == nil {
			return nil, fmt.Errorf("%w: %s", metadata.ErrNotFound, qualifiedName)
		}
		return rec, nil
	}

	rec, err := p.resolve(qualifiedName)
	if err != nil {
		// Negative entries are cached too: a missing type stays missing for
		// the lifetime of the archive.
		p.cache.Set(qualifiedName, nil)
		return nil, err
	}

	p.cache.Set(qualifiedName, rec)
	return rec, nil
}

func (p *Provider) resolve(qualifiedName string) (*metadata.TypeRecord, error) {
	entry, ok := p.files[qualifiedName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", metadata.ErrNotFound, qualifiedName)
	}

	source, err := readEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", metadata.ErrNotFound, qualifiedName, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s: unparseable source", metadata.ErrNotFound, qualifiedName)
	}
	defer tree.Close()

	simple := qualifiedName
	if dot := strings.LastIndex(qualifiedName, "."); dot >= 0 {
		simple = qualifiedName[dot+1:]
	}

	rec := extractTypeRecord(tree.RootNode(), source, qualifiedName, simple, p.has)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s: no matching type declaration", metadata.ErrNotFound, qualifiedName)
	}
	return rec, nil
}

// has reports whether a qualified name exists in the archive; the parser
// uses it to resolve same-package and wildcard-import references.
func (p *Provider) has(qualifiedName string) bool {
	_, ok := p.files[qualifiedName]
	return ok
}

func readEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
