package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRejectsMalformedPatterns(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
	}{
		{"empty", ""},
		{"no leading slash", "products/{id}"},
		{"unclosed brace", "/products/{id"},
		{"unopened brace", "/products/id}"},
		{"empty capture name", "/products/{}"},
		{"empty wildcard name", "/files/*"},
		{"duplicate capture names", "/products/{id}/categories/{id}"},
		{"capture duplicated by wildcard", "/products/{rest}/*rest"},
		{"wildcard not final", "/files/*rest/download"},
		{"nested braces", "/products/{{id}}"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.pattern)
			assert.Error(t, err)
		})
	}
}

func TestMatchBindsCaptures(t *testing.T) {
	p, err := Compile("/products/{id}/categories/{id_category}")
	require.NoError(t, err)

	bindings, ok := p.Match("/products/1/categories/2")
	require.True(t, ok)
	assert.Equal(t, Bindings{"id": "1", "id_category": "2"}, bindings)
}

func TestMatchIsExactOnSegmentCount(t *testing.T) {
	p := MustCompile("/products/{id}")

	_, ok := p.Match("/products")
	assert.False(t, ok)

	_, ok = p.Match("/products/1/extra")
	assert.False(t, ok)
}

func TestMatchStripsSingleTrailingSlash(t *testing.T) {
	p := MustCompile("/products/{id}")

	bindings, ok := p.Match("/products/42/")
	require.True(t, ok)
	assert.Equal(t, "42", bindings["id"])

	// Only one trailing slash is stripped; the empty segment left behind by a
	// second one cannot satisfy a capture.
	_, ok = p.Match("/products/42//")
	assert.False(t, ok)
}

func TestMatchDoesNotDecodeSegments(t *testing.T) {
	p := MustCompile("/products/{id}")

	bindings, ok := p.Match("/products/a%20b")
	require.True(t, ok)
	assert.Equal(t, "a%20b", bindings["id"])
}

func TestMatchRoot(t *testing.T) {
	p := MustCompile("/")

	_, ok := p.Match("/")
	assert.True(t, ok)

	_, ok = p.Match("/anything")
	assert.False(t, ok)
}

func TestWildcardBindsRemainingSuffix(t *testing.T) {
	p := MustCompile("/files/*path")

	bindings, ok := p.Match("/files/docs/2024/report.pdf")
	require.True(t, ok)
	assert.Equal(t, "docs/2024/report.pdf", bindings["path"])

	bindings, ok = p.Match("/files/single")
	require.True(t, ok)
	assert.Equal(t, "single", bindings["path"])
}

func TestCompareLiteralBeatsCapture(t *testing.T) {
	literal := MustCompile("/products/new")
	capture := MustCompile("/products/{id}")
	wildcard := MustCompile("/products/*rest")

	assert.Negative(t, literal.Compare(capture))
	assert.Positive(t, capture.Compare(literal))
	assert.Negative(t, capture.Compare(wildcard))
	assert.Negative(t, literal.Compare(wildcard))
	assert.Zero(t, capture.Compare(MustCompile("/users/{name}")))
}

func TestCompareIsTotal(t *testing.T) {
	short := MustCompile("/x")
	capture := MustCompile("/x/{id}")
	literal := MustCompile("/x/new")

	// Patterns of different lengths are strictly ordered even though they
	// never overlap, so an intervening pattern cannot hide a literal/capture
	// pair from the sort.
	assert.Negative(t, short.Compare(capture))
	assert.Negative(t, short.Compare(literal))
	assert.Negative(t, literal.Compare(capture))
	assert.Positive(t, capture.Compare(literal))

	// Wildcards rank after every fixed-length pattern; among themselves the
	// longer prefix is the more specific.
	wide := MustCompile("/*rest")
	narrow := MustCompile("/x/y/*rest")
	assert.Positive(t, wide.Compare(short))
	assert.Positive(t, wide.Compare(capture))
	assert.Negative(t, narrow.Compare(wide))
}
