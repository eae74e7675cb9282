package javasrc

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/lambdalens/internal/metadata"
)

// Test Plan for the source-archive provider:
// - Indexes .java entries by qualified name, skipping package-info
// - Resolves an interface with abstract, default, and static methods
// - Parameter types qualify via imports, the file's own package, and
//   java.lang; generic arguments are erased
// - Array and varargs parameters come back in descriptor form
// - Unknown types return metadata.ErrNotFound (repeatedly, via the
//   negative cache)

const consumerSource = `package java.util.function;

public interface Consumer<T> {
    void accept(T t);

    default Consumer<T> andThen(Consumer<? super T> after) {
        return null;
    }
}
`

const streamSource = `package java.util.stream;

import java.util.function.Consumer;
import java.util.function.Function;

public interface Stream<T> {
    <R> Stream<R> map(Function<? super T, ? extends R> mapper);

    void forEach(Consumer<? super T> action);

    static <T> Stream<T> of(T... values) {
        return null;
    }
}
`

const arraysSource = `package java.util;

public class Arrays {
    public static void fill(int[] a, int val) {
    }

    public static String render(String[][] grid) {
        return null;
    }
}
`

const stringSource = `package java.lang;

public class String {
}
`

func writeSourceArchive(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "src.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func openTestProvider(t *testing.T) *Provider {
	t.Helper()

	path := writeSourceArchive(t, map[string]string{
		"java/util/function/Consumer.java":     consumerSource,
		"java/util/function/Function.java":     "package java.util.function;\n\npublic interface Function<T, R> {\n    R apply(T t);\n}\n",
		"java/util/stream/Stream.java":         streamSource,
		"java/util/Arrays.java":                arraysSource,
		"java/lang/String.java":                stringSource,
		"java/util/function/package-info.java": "package java.util.function;\n",
	})

	p, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestOpen_IndexesSources(t *testing.T) {
	t.Parallel()
	p := openTestProvider(t)

	// package-info is not a type entry.
	assert.Equal(t, 5, p.Len())
}

func TestProvider_ResolveInterface(t *testing.T) {
	t.Parallel()
	p := openTestProvider(t)

	rec, err := p.Resolve(context.Background(), "java.util.function.Consumer")
	require.NoError(t, err)

	assert.True(t, rec.IsInterface)
	require.Len(t, rec.Methods, 2)

	accept := rec.Methods[0]
	assert.Equal(t, "accept", accept.Name)
	assert.False(t, accept.IsDefault)
	assert.Equal(t, []string{"T"}, accept.Params) // type variables pass through
	assert.Equal(t, "void", accept.Return)

	andThen := rec.Methods[1]
	assert.Equal(t, "andThen", andThen.Name)
	assert.True(t, andThen.IsDefault)
	// Generic arguments erased, simple name qualified via the file's package.
	assert.Equal(t, []string{"java.util.function.Consumer"}, andThen.Params)
	assert.Equal(t, "java.util.function.Consumer", andThen.Return)
}

func TestProvider_QualifiesImportedTypes(t *testing.T) {
	t.Parallel()
	p := openTestProvider(t)

	rec, err := p.Resolve(context.Background(), "java.util.stream.Stream")
	require.NoError(t, err)
	require.Len(t, rec.Methods, 3)

	assert.Equal(t, []string{"java.util.function.Function"}, rec.Methods[0].Params)
	assert.Equal(t, []string{"java.util.function.Consumer"}, rec.Methods[1].Params)

	of := rec.Methods[2]
	assert.True(t, of.IsStatic)
	// Varargs of a type variable: still an array at the signature level.
	assert.Equal(t, []string{"[LT;"}, of.Params)
}

func TestProvider_ArrayParameters(t *testing.T) {
	t.Parallel()
	p := openTestProvider(t)

	rec, err := p.Resolve(context.Background(), "java.util.Arrays")
	require.NoError(t, err)

	assert.False(t, rec.IsInterface)
	require.Len(t, rec.Methods, 2)
	assert.Equal(t, []string{"[I", "int"}, rec.Methods[0].Params)
	assert.Equal(t, []string{"[[Ljava.lang.String;"}, rec.Methods[1].Params)
}

func TestProvider_ResolveUnknown(t *testing.T) {
	t.Parallel()
	p := openTestProvider(t)

	_, err := p.Resolve(context.Background(), "java.util.Ghost")
	assert.ErrorIs(t, err, metadata.ErrNotFound)

	// Second lookup hits the negative cache and reports the same error.
	_, err = p.Resolve(context.Background(), "java.util.Ghost")
	assert.ErrorIs(t, err, metadata.ErrNotFound)
}
