package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Electronics", "Electronics"},
		{"E%", `E\%`},
		{"home_kitchen", `home\_kitchen`},
		{`back\slash`, `back\\slash`},
		{"%_%", `\%\_\%`},
	}
	for _, tt := range tests {
		// A name lookup must match the literal name only, never treat
		// stored metacharacters as wildcards.
		assert.Equal(t, tt.want, escapeLike(tt.in), "input %q", tt.in)
	}
}
