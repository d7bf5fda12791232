package less

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSelector(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{".a>.b", ".a > .b"},
		{"  .a   .b ", ".a .b"},
		{".a~.b+.c", ".a ~ .b + .c"},
		{"> .b", "> .b"},
		{"li:nth-child(2n+1)", "li:nth-child(2n+1)"},
		{`a[title="x > y"]`, `a[title="x > y"]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeSelector(tt.in), tt.in)
	}
}

func TestJoinSelectors(t *testing.T) {
	assert.Equal(t, []string{".a .c", ".b .c", ".a .d", ".b .d"},
		joinSelectors([]string{".a", ".b"}, []string{".c", ".d"}))
	assert.Equal(t, []string{".a:hover", ".a + .a"},
		joinSelectors([]string{".a"}, []string{"&:hover", "& + &"}))
	assert.Equal(t, []string{".x"}, joinSelectors(nil, []string{"&.x"}))
	assert.Equal(t, []string{".a + .a", ".a + .b", ".b + .a", ".b + .b", ".a:hover", ".b:hover"},
		joinSelectors([]string{".a", ".b"}, []string{"& + &", "&:hover"}))
}
