package signature

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Signature:
// - Equality is reflexive, symmetric, transitive
// - Equality is order-sensitive over parameters and ignores nothing else
// - Different names or parameter types are never equal
// - Equal signatures always hash equal (property test over random inputs)
// - Arity reflects the parameter count
// - New copies the parameter slice (caller mutation is invisible)
// - Rendering shortens qualified names, decodes array descriptors, and
//   normalizes inner-class separators
// - Malformed array tokens render as a generic array marker

func TestSignature_Equal(t *testing.T) {
	t.Parallel()

	a := New("f", []string{"int", "int"})
	b := New("f", []string{"int", "int"})
	c := New("f", []string{"int", "long"})

	// Reflexive, symmetric
	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))

	// Transitive
	d := New("f", []string{"int", "int"})
	assert.True(t, b.Equal(d))
	assert.True(t, a.Equal(d))

	assert.False(t, a.Equal(c))
	assert.False(t, New("f", []string{"int"}).Equal(New("f", []string{"long"})))
	assert.False(t, New("f", nil).Equal(New("g", nil)))
}

func TestSignature_Equal_OrderSensitive(t *testing.T) {
	t.Parallel()

	a := New("f", []string{"int", "long"})
	b := New("f", []string{"long", "int"})
	assert.False(t, a.Equal(b))
}

func TestSignature_Equal_ArrayDistinctFromElement(t *testing.T) {
	t.Parallel()

	array := New("f", []string{"[I"})
	element := New("f", []string{"int"})
	assert.False(t, array.Equal(element))
}

// Test: equal signatures always hash equal, over random name/parameter pairs
func TestSignature_Hash_ConsistentWithEqual(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	tokens := []string{"int", "long", "java.lang.String", "[I", "java.util.function.Function"}

	for i := 0; i < 200; i++ {
		name := fmt.Sprintf("m%d", rng.Intn(10))
		params := make([]string, rng.Intn(4))
		for j := range params {
			params[j] = tokens[rng.Intn(len(tokens))]
		}

		a := New(name, params)
		b := New(name, params)
		require.True(t, a.Equal(b))
		require.Equal(t, a.Hash(), b.Hash(), "equal signatures must hash equal: %s", a)
	}
}

func TestSignature_Hash_SeparatesParameterBoundaries(t *testing.T) {
	t.Parallel()

	a := New("f", []string{"ab", "c"})
	b := New("f", []string{"a", "bc"})
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestSignature_Arity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, New("f", nil).Arity())
	assert.Equal(t, 2, New("f", []string{"int", "long"}).Arity())
}

func TestSignature_New_CopiesParams(t *testing.T) {
	t.Parallel()

	params := []string{"int"}
	sig := New("f", params)
	params[0] = "long"
	assert.Equal(t, []string{"int"}, sig.Params())
}

func TestDisplayType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{"primitive passes through", "int", "int"},
		{"qualified name shortens", "java.lang.String", "String"},
		{"inner class separator normalized", "java.util.Map$Entry", "Map.Entry"},
		{"boolean array", "[Z", "boolean[]"},
		{"byte array", "[B", "byte[]"},
		{"char array", "[C", "char[]"},
		{"double array", "[D", "double[]"},
		{"float array", "[F", "float[]"},
		{"int array", "[I", "int[]"},
		{"long array", "[J", "long[]"},
		{"short array", "[S", "short[]"},
		{"object array", "[Ljava.lang.String;", "String[]"},
		{"inner class array", "[Ljava.util.Map$Entry;", "Map.Entry[]"},
		{"nested array falls back", "[[I", "[]"},
		{"unknown element code falls back", "[X", "[]"},
		{"bare array marker falls back", "[", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, DisplayType(tt.token))
		})
	}
}

func TestSignature_String(t *testing.T) {
	t.Parallel()

	sig := New("forEach", []string{"java.util.function.Consumer", "int", "[Ljava.lang.String;"})
	assert.Equal(t, "forEach(Consumer, int, String[])", sig.String())

	assert.Equal(t, "run()", New("run", nil).String())
}
