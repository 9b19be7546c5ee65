package text

import (
	"strings"
	"sync"

	"github.com/vk/metaclass/internal/member"
	"github.com/zclconf/go-cty/cty"
)

// Document is a plain text buffer. Every change emits Changed with the new
// content.
type Document struct {
	mu      sync.Mutex
	content string

	Changed *member.Signal
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{Changed: member.NewSignal(cty.String)}
}

// Content returns the full text.
func (d *Document) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

// SetContent replaces the text.
func (d *Document) SetContent(s string) {
	d.mu.Lock()
	d.content = s
	d.mu.Unlock()
	d.notify(s)
}

// Append adds s to the end of the text.
func (d *Document) Append(s string) {
	d.mu.Lock()
	d.content += s
	content := d.content
	d.mu.Unlock()
	d.notify(content)
}

// Lines returns the number of lines, counting a final line without a
// trailing newline.
func (d *Document) Lines() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.content == "" {
		return 0
	}
	n := strings.Count(d.content, "\n")
	if !strings.HasSuffix(d.content, "\n") {
		n++
	}
	return n
}

// Line returns the i-th line, zero based, or an empty string.
func (d *Document) Line(i int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	lines := strings.Split(strings.TrimSuffix(d.content, "\n"), "\n")
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

func (d *Document) notify(content string) {
	// Emit only fails on conversion, and content is always a string.
	_ = d.Changed.Emit(cty.StringVal(content))
}
