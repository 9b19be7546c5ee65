package text

import (
	"context"
	"fmt"
	"io"
)

// PlainLoader reads and writes a Document verbatim.
type PlainLoader struct{}

// Load replaces the content of target, which must be a *Document.
func (PlainLoader) Load(_ context.Context, target any, r io.Reader) error {
	doc, ok := target.(*Document)
	if !ok {
		return fmt.Errorf("text: cannot load into %T", target)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	doc.SetContent(string(data))
	return nil
}

// Save writes the content of target, which must be a *Document.
func (PlainLoader) Save(_ context.Context, target any, w io.Writer) error {
	doc, ok := target.(*Document)
	if !ok {
		return fmt.Errorf("text: cannot save %T", target)
	}
	_, err := io.WriteString(w, doc.Content())
	return err
}
