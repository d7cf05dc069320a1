package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{"plain", "hello", "hello"},
		{"emphasis", "**bold** and *italic*", "<b>bold</b> and <i>italic</i>"},
		{"heading", "# Title", "<b>Title</b>"},
		{"inline code", "use `go test`", "use <code>go test</code>"},
		{"list", "- one\n- two", "• one\n• two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTML(tt.markdown))
		})
	}
}

func TestToHTMLCodeBlock(t *testing.T) {
	got := ToHTML("```go\nfmt.Println(1)\n```")

	assert.Contains(t, got, "<pre><code>fmt.Println(1)")
	assert.NotContains(t, got, "class=")
}
