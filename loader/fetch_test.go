package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		want   string
	}{
		{"https://example.com/a.png", "https"},
		{"HTTP://EXAMPLE.COM/a.png", "http"},
		{"file:///tmp/a.png", "file"},
		{"git+https://example.com/r.git#a.png", "git+https"},
		{"/tmp/a.png", ""},
		{"relative/a.png", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, schemeOf(tt.source), "source %q", tt.source)
	}
}
