package scan

import (
	"archive/zip"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ListCandidates enumerates a ZIP/JAR archive and returns the sorted list of
// candidate type names: top-level type-definition entries (.class or .java)
// under one of the namespace root prefixes. Entry paths map to qualified
// names by stripping the extension and replacing '/' with '.'.
//
// Nested types (a '$' anywhere in the entry path) are excluded; their
// enclosing top-level type carries the API surface we care about.
func ListCandidates(archivePath string, roots []string) ([]string, error) {
	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer rc.Close()

	globs, err := compileRootGlobs(roots)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var candidates []string
	for _, f := range rc.File {
		name, ok := candidateName(f.Name, globs)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		candidates = append(candidates, name)
	}

	sort.Strings(candidates)
	return candidates, nil
}

// compileRootGlobs turns namespace roots ("java", "javax") into entry-path
// globs ("java/**").
func compileRootGlobs(roots []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(roots))
	for _, root := range roots {
		pattern := strings.TrimSuffix(root, "/") + "/**"
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid namespace root %q: %w", root, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// candidateName converts an archive entry path into a qualified type name,
// or reports that the entry is not a candidate.
func candidateName(entry string, roots []glob.Glob) (string, bool) {
	ext := path.Ext(entry)
	if ext != ".class" && ext != ".java" {
		return "", false
	}
	if strings.Contains(entry, "$") {
		return "", false
	}
	// package-info and module-info entries declare no type.
	if strings.HasSuffix(entry, "-info"+ext) {
		return "", false
	}
	if !matchesAny(entry, roots) {
		return "", false
	}

	name := strings.TrimSuffix(entry, ext)
	return strings.ReplaceAll(name, "/", "."), true
}

func matchesAny(entry string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(entry) {
			return true
		}
	}
	return false
}
