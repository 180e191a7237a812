package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlendWitTech/mero-jugx-sub003/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		opts []slug.Option
		want string
	}{
		{name: "simple name", in: "Acme Corp", want: "acme-corp"},
		{name: "punctuation collapses", in: "Acme, Inc. (EU)", want: "acme-inc-eu"},
		{name: "leading and trailing noise", in: "  --Acme--  ", want: "acme"},
		{name: "unicode letters kept", in: "Müller GmbH", want: "müller-gmbh"},
		{name: "custom separator", in: "Acme Corp", opts: []slug.Option{slug.Separator("_")}, want: "acme_corp"},
		{name: "empty input", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, slug.Make(tt.in, tt.opts...))
		})
	}
}

func TestMake_MaxLength(t *testing.T) {
	t.Parallel()

	got := slug.Make("a very long organization name", slug.MaxLength(10))
	assert.LessOrEqual(t, len(got), 10)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestMake_WithSuffix(t *testing.T) {
	t.Parallel()

	a := slug.Make("Acme Corp", slug.WithSuffix(6))
	b := slug.Make("Acme Corp", slug.WithSuffix(6))

	require.True(t, strings.HasPrefix(a, "acme-corp-"))
	assert.Len(t, strings.TrimPrefix(a, "acme-corp-"), 6)
	assert.NotEqual(t, a, b, "random suffixes should differ")

	onlySuffix := slug.Make("!!!", slug.WithSuffix(8))
	assert.Len(t, onlySuffix, 8)
}
