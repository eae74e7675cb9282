package javasrc

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/lambdalens/internal/metadata"
)

// primitiveDescriptors maps Java primitive names to JVM array element codes.
var primitiveDescriptors = map[string]string{
	"boolean": "Z",
	"byte":    "B",
	"char":    "C",
	"double":  "D",
	"float":   "F",
	"int":     "I",
	"long":    "J",
	"short":   "S",
}

// fileScope holds what a single compilation unit contributes to type-name
// resolution: its package, explicit imports, and wildcard imports.
type fileScope struct {
	pkg       string
	imports   map[string]string // simple name -> fully qualified name
	wildcards []string          // packages imported with .*
	// known reports whether a qualified name exists in the archive; used to
	// resolve same-package and wildcard references.
	known func(qualifiedName string) bool
}

// extractTypeRecord walks a parsed compilation unit and builds the record
// for the top-level type with the given simple name. Returns nil when the
// file declares no such type.
func extractTypeRecord(root *sitter.Node, source []byte, qualifiedName, simpleName string, known func(string) bool) *metadata.TypeRecord {
	scope := buildFileScope(root, source, known)

	var rec *metadata.TypeRecord
	walkTree(root, func(n *sitter.Node) bool {
		if rec != nil {
			return false
		}
		switch n.Kind() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil || extractNodeText(nameNode, source) != simpleName {
				// Not the type we want; don't descend into nested types.
				return false
			}
			rec = &metadata.TypeRecord{
				QualifiedName: qualifiedName,
				IsInterface:   n.Kind() == "interface_declaration",
			}
			if body := n.ChildByFieldName("body"); body != nil {
				rec.Methods = extractMethods(body, source, scope)
			}
			return false
		}
		return true
	})
	return rec
}

// buildFileScope collects the package declaration and imports.
func buildFileScope(root *sitter.Node, source []byte, known func(string) bool) *fileScope {
	scope := &fileScope{imports: make(map[string]string), known: known}

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "package_declaration":
			nameNode := findChildByType(n, "scoped_identifier")
			if nameNode == nil {
				nameNode = findChildByType(n, "identifier")
			}
			if nameNode != nil {
				scope.pkg = extractNodeText(nameNode, source)
			}
			return false
		case "import_declaration":
			text := extractNodeText(n, source)
			path := strings.TrimSuffix(strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "import"), ";")), " ")
			path = strings.TrimSpace(strings.TrimPrefix(path, "static"))
			if strings.HasSuffix(path, ".*") {
				scope.wildcards = append(scope.wildcards, strings.TrimSuffix(path, ".*"))
			} else if dot := strings.LastIndex(path, "."); dot >= 0 {
				scope.imports[path[dot+1:]] = path
			}
			return false
		case "class_declaration", "interface_declaration", "enum_declaration":
			// Imports and the package declaration precede type bodies.
			return false
		}
		return true
	})
	return scope
}

// extractMethods collects the declared methods of a class or interface body.
func extractMethods(body *sitter.Node, source []byte, scope *fileScope) []metadata.Method {
	var methods []metadata.Method
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		if child.Kind() != "method_declaration" {
			continue
		}
		if m, ok := extractMethod(child, source, scope); ok {
			methods = append(methods, m)
		}
	}
	return methods
}

// extractMethod builds one Method from a method_declaration node.
func extractMethod(node *sitter.Node, source []byte, scope *fileScope) (metadata.Method, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return metadata.Method{}, false
	}

	m := metadata.Method{Name: extractNodeText(nameNode, source)}

	if mods := findChildByType(node, "modifiers"); mods != nil {
		modText := extractNodeText(mods, source)
		m.IsDefault = containsModifier(modText, "default")
		m.IsStatic = containsModifier(modText, "static")
	}

	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		m.Return = scope.typeToken(extractNodeText(typeNode, source))
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Params = extractParams(params, source, scope)
	}

	return m, true
}

// extractParams converts formal_parameters into ordered type tokens.
func extractParams(params *sitter.Node, source []byte, scope *fileScope) []string {
	var tokens []string
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(uint(i))
		switch child.Kind() {
		case "formal_parameter":
			typeNode := child.ChildByFieldName("type")
			if typeNode == nil {
				continue
			}
			text := extractNodeText(typeNode, source)
			// Trailing array dimensions may sit on the declarator instead of
			// the type ("String args[]").
			if strings.Contains(extractNodeText(child, source), "[]") && !strings.Contains(text, "[]") {
				text += "[]"
			}
			tokens = append(tokens, scope.typeToken(text))
		case "spread_parameter":
			// Varargs are arrays at the signature level.
			typeNode := findTypeChild(child)
			if typeNode == nil {
				continue
			}
			tokens = append(tokens, scope.typeToken(extractNodeText(typeNode, source)+"[]"))
		}
	}
	return tokens
}

// findTypeChild finds the element-type node of a spread_parameter.
func findTypeChild(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "type_identifier", "integral_type", "floating_point_type", "boolean_type",
			"scoped_type_identifier", "generic_type", "array_type":
			return child
		}
	}
	return nil
}

// typeToken converts a source-level type reference into the reflection-style
// token the matching engine uses: fully qualified names for object types and
// JVM descriptor form for arrays. Generic arguments are erased.
func (s *fileScope) typeToken(text string) string {
	text = stripGenerics(strings.TrimSpace(text))

	dims := 0
	for strings.HasSuffix(text, "[]") {
		text = strings.TrimSuffix(text, "[]")
		dims++
	}
	text = strings.TrimSpace(text)

	base := s.qualify(text)

	if dims == 0 {
		return base
	}
	prefix := strings.Repeat("[", dims)
	if code, ok := primitiveDescriptors[base]; ok {
		return prefix + code
	}
	return prefix + "L" + base + ";"
}

// qualify resolves a simple type name against the file's imports, its own
// package, wildcard imports, and java.lang, in that order. Names that are
// already qualified, primitives, and unresolvable names (type variables)
// pass through unchanged.
func (s *fileScope) qualify(name string) string {
	if name == "" || strings.Contains(name, ".") {
		return name
	}
	if _, prim := primitiveDescriptors[name]; prim || name == "void" {
		return name
	}
	if fqn, ok := s.imports[name]; ok {
		return fqn
	}
	if s.known != nil {
		if s.pkg != "" {
			if local := s.pkg + "." + name; s.known(local) {
				return local
			}
		}
		for _, pkg := range s.wildcards {
			if fqn := pkg + "." + name; s.known(fqn) {
				return fqn
			}
		}
		if lang := "java.lang." + name; s.known(lang) {
			return lang
		}
	}
	return name
}

// stripGenerics erases balanced <...> segments from a type reference.
func stripGenerics(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// containsModifier checks for a whole-word modifier in a modifiers node's
// text, which may also contain annotations.
func containsModifier(modText, modifier string) bool {
	for _, field := range strings.Fields(modText) {
		if field == modifier {
			return true
		}
	}
	return false
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for
// each node. Returning false stops descent into that node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// findChildByType finds the first child node with the given kind.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
