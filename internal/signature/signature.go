// Package signature models Java method signatures for structural comparison.
//
// A signature is a method name plus its ordered parameter-type list. Return
// types are deliberately excluded: two methods that differ only in return
// type are the same signature for the purposes of API surface diffing.
package signature

import (
	"hash/fnv"
	"strings"
)

// Signature is an immutable method signature: name and ordered parameter
// types. Parameter types use JVM reflection-style tokens, so an array
// parameter is its own token (e.g. "[I", "[Ljava.lang.String;") and is never
// equal to its element type.
type Signature struct {
	name   string
	params []string
}

// New creates a Signature from a method name and its parameter-type tokens.
// The params slice is copied so callers can reuse their buffer.
func New(name string, params []string) Signature {
	p := make([]string, len(params))
	copy(p, params)
	return Signature{name: name, params: p}
}

// Name returns the method name.
func (s Signature) Name() string {
	return s.name
}

// Params returns the ordered parameter-type tokens.
func (s Signature) Params() []string {
	return s.params
}

// Arity returns the number of parameters.
func (s Signature) Arity() int {
	return len(s.params)
}

// Equal reports whether two signatures are structurally equal: names match
// exactly and parameter lists are element-wise equal in order. Return types
// never participate.
func (s Signature) Equal(other Signature) bool {
	if s.name != other.name || len(s.params) != len(other.params) {
		return false
	}
	for i := range s.params {
		if s.params[i] != other.params[i] {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal: equal signatures always hash
// equal. FNV-1a over the name and each parameter in order, with a separator
// byte so ("f", ["ab","c"]) and ("f", ["a","bc"]) do not collide.
func (s Signature) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(s.name))
	for _, p := range s.params {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return h.Sum64()
}

// String renders the signature in human-readable form: the method name
// followed by the display names of its parameters.
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.name)
	b.WriteString("(")
	for i, p := range s.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(DisplayType(p))
	}
	b.WriteString(")")
	return b.String()
}

// primitiveArrays maps JVM array element codes to display names.
var primitiveArrays = map[byte]string{
	'Z': "boolean[]",
	'B': "byte[]",
	'C': "char[]",
	'D': "double[]",
	'F': "float[]",
	'I': "int[]",
	'J': "long[]",
	'S': "short[]",
}

// DisplayType converts a reflection-style type token into a short display
// name. Array tokens decode their element code; qualified names shorten to
// the last path segment; inner-class '$' separators become '.'; primitives
// pass through unchanged. A malformed array token falls back to a generic
// "[]" marker rather than failing.
func DisplayType(token string) string {
	if strings.HasPrefix(token, "[") {
		if len(token) < 2 {
			return "[]"
		}
		if name, ok := primitiveArrays[token[1]]; ok {
			return name
		}
		if token[1] == 'L' {
			// "[Ljava.util.Map$Entry;" -> "Map.Entry[]"
			elem := strings.TrimSuffix(token, ";")
			if dot := strings.LastIndex(elem, "."); dot >= 0 {
				elem = elem[dot+1:]
			} else {
				elem = strings.TrimPrefix(elem, "[L")
			}
			return strings.ReplaceAll(elem, "$", ".") + "[]"
		}
		// Unrecognized element code (including nested arrays).
		return "[]"
	}

	if strings.Contains(token, ".") {
		short := token[strings.LastIndex(token, ".")+1:]
		return strings.ReplaceAll(short, "$", ".")
	}

	// Primitive or unqualified name.
	return token
}
