package baseline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/lambdalens/internal/signature"
)

// Test Plan for the baseline index:
// - Loading registers types with and without methods
// - A single-field record registers a zero-method type
// - Multiple records accumulate signatures under the same type
// - Blank lines and duplicates are tolerated
// - IsNewMethod: present -> false, absent type -> true, differing
//   parameter type -> true
// - IsNewType defaults to false (historical stub behavior) and honors an
//   installed TypeNoveltyFunc

func TestLoad(t *testing.T) {
	t.Parallel()

	input := "A\nB,foo,int\nB,bar\n"
	ix, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, ix.Len())
	assert.True(t, ix.Contains("A"))
	assert.True(t, ix.Contains("B"))
	assert.False(t, ix.Contains("C"))

	assert.Empty(t, ix.Signatures("A"))

	sigs := ix.Signatures("B")
	require.Len(t, sigs, 2)
	assert.True(t, sigs[0].Equal(signature.New("foo", []string{"int"})))
	assert.True(t, sigs[1].Equal(signature.New("bar", nil)))
}

func TestLoad_LenientParsing(t *testing.T) {
	t.Parallel()

	input := "A\n\n   \nA\nA,foo,int\nA,foo,int\n"
	ix, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	// Blank lines skipped; duplicate registrations harmless.
	assert.Equal(t, 1, ix.Len())
	assert.Len(t, ix.Signatures("A"), 2)
}

func TestIndex_IsNewMethod(t *testing.T) {
	t.Parallel()

	ix, err := Load(strings.NewReader("Foo,bar,int\n"))
	require.NoError(t, err)

	// Present by structural equality under the same type name.
	assert.False(t, ix.IsNewMethod("Foo", signature.New("bar", []string{"int"})))

	// Same operation under a type absent from the baseline.
	assert.True(t, ix.IsNewMethod("Baz", signature.New("bar", []string{"int"})))

	// Same type, signature differing by one parameter type.
	assert.True(t, ix.IsNewMethod("Foo", signature.New("bar", []string{"long"})))
}

func TestIndex_IsNewType(t *testing.T) {
	t.Parallel()

	ix, err := Load(strings.NewReader("Foo,bar,int\n"))
	require.NoError(t, err)

	// Default policy always reports false, even for types the baseline has
	// never seen. This mirrors the historical behavior; AbsentFromBaseline
	// is the policy that actually answers the question.
	assert.False(t, ix.IsNewType("Foo"))
	assert.False(t, ix.IsNewType("Missing"))

	ix.SetTypeNovelty(AbsentFromBaseline)
	assert.False(t, ix.IsNewType("Foo"))
	assert.True(t, ix.IsNewType("Missing"))
}
