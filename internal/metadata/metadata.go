// Package metadata defines the type metadata provider contract.
//
// A provider resolves a fully qualified type name into a TypeRecord: the
// type's kind plus its declared operations. The analysis core depends only
// on this interface; concrete providers live in subpackages (javasrc parses
// a source archive, indexdb reads a precomputed SQLite index).
package metadata

import (
	"context"
	"errors"

	"github.com/mvp-joe/lambdalens/internal/signature"
)

// ErrNotFound is returned by Resolve when a type cannot be located or
// introspected. Callers treat this as a recoverable, per-type condition.
var ErrNotFound = errors.New("type not found")

// Method is a single declared operation on a type.
type Method struct {
	Name string
	// Params holds ordered parameter-type tokens. Object types are fully
	// qualified ("java.util.function.Function"); arrays use JVM descriptor
	// form ("[I", "[Ljava.lang.String;").
	Params []string
	// Return is the declared return type, fully qualified.
	Return string

	IsDefault   bool
	IsStatic    bool
	IsSynthetic bool
}

// Signature builds the structural signature for this method.
func (m Method) Signature() signature.Signature {
	return signature.New(m.Name, m.Params)
}

// TypeRecord describes one resolved type.
type TypeRecord struct {
	QualifiedName string
	IsInterface   bool
	Methods       []Method
}

// Provider resolves type metadata by qualified name.
//
// Implementations return ErrNotFound (possibly wrapped) when the type cannot
// be resolved; any other error indicates an infrastructure failure.
type Provider interface {
	Resolve(ctx context.Context, qualifiedName string) (*TypeRecord, error)
}
