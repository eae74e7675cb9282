package indexdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/lambdalens/internal/metadata"
)

// Test Plan for the SQLite index provider:
// - Open creates the schema in a fresh database
// - WriteType then Resolve round-trips a full record, flags included
// - Rewriting a type replaces its previous method rows
// - Resolving an unknown type yields metadata.ErrNotFound
// - TypeNames enumerates every indexed type in sorted order

func openTestIndex(t *testing.T) *Provider {
	t.Helper()
	p, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestProvider_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := openTestIndex(t)

	rec := &metadata.TypeRecord{
		QualifiedName: "java.util.function.Function",
		IsInterface:   true,
		Methods: []metadata.Method{
			{Name: "apply", Params: []string{"java.lang.Object"}, Return: "java.lang.Object"},
			{Name: "andThen", Params: []string{"java.util.function.Function"}, Return: "java.util.function.Function", IsDefault: true},
			{Name: "identity", Return: "java.util.function.Function", IsStatic: true},
		},
	}
	require.NoError(t, p.WriteType(ctx, rec))

	got, err := p.Resolve(ctx, "java.util.function.Function")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestProvider_RewriteReplacesMethods(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := openTestIndex(t)

	rec := &metadata.TypeRecord{
		QualifiedName: "java.util.List",
		Methods: []metadata.Method{
			{Name: "size", Return: "int"},
			{Name: "clear", Return: "void"},
		},
	}
	require.NoError(t, p.WriteType(ctx, rec))

	rec.Methods = rec.Methods[:1]
	require.NoError(t, p.WriteType(ctx, rec))

	got, err := p.Resolve(ctx, "java.util.List")
	require.NoError(t, err)
	require.Len(t, got.Methods, 1)
	assert.Equal(t, "size", got.Methods[0].Name)
}

func TestProvider_ResolveUnknown(t *testing.T) {
	t.Parallel()
	p := openTestIndex(t)

	_, err := p.Resolve(context.Background(), "java.util.Ghost")
	assert.ErrorIs(t, err, metadata.ErrNotFound)
}

func TestProvider_TypeNames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := openTestIndex(t)

	for _, name := range []string{"java.util.Map", "java.io.File", "java.util.List"} {
		require.NoError(t, p.WriteType(ctx, &metadata.TypeRecord{QualifiedName: name}))
	}

	names, err := p.TypeNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"java.io.File", "java.util.List", "java.util.Map"}, names)
}
