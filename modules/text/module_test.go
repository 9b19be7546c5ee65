package text

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/metaclass/internal/loadable"
	"github.com/vk/metaclass/internal/member"
	"github.com/vk/metaclass/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ctx := context.Background()
	reg := registry.New()
	_, err := reg.LoadPlugin(ctx, loadable.Plugin())
	require.NoError(t, err)
	_, err = reg.LoadPlugin(ctx, &Module{})
	require.NoError(t, err)
	return reg
}

func TestDocumentClass_Members(t *testing.T) {
	ctx := context.Background()
	cls := newRegistry(t).Class(DocumentClass)
	require.NotNil(t, cls)

	obj, err := cls.Create(ctx, cty.StringVal("one\ntwo"))
	require.NoError(t, err)
	doc := obj.(*Document)

	lines, err := cls.Attribute(ctx, "lines")
	require.NoError(t, err)
	v, err := lines.Get(doc)
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.NumberIntVal(2)))
	require.ErrorIs(t, lines.Set(doc, cty.NumberIntVal(1)), member.ErrReadOnly)

	content, err := cls.Attribute(ctx, "content")
	require.NoError(t, err)
	require.NoError(t, content.Set(doc, cty.StringVal("a\nb\nc\n")))
	assert.Equal(t, 3, doc.Lines())

	appendM, err := cls.Method(ctx, "append")
	require.NoError(t, err)
	_, err = appendM.Call(doc, cty.StringVal("d"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\nd", doc.Content())

	lineM, err := cls.Method(ctx, "line")
	require.NoError(t, err)
	got, err := lineM.Call(doc, cty.NumberIntVal(3))
	require.NoError(t, err)
	assert.Equal(t, "d", got.AsString())
	got, err = lineM.Call(doc, cty.StringVal("1"))
	require.NoError(t, err, "string arguments convert to number")
	assert.Equal(t, "b", got.AsString())
}

func TestDocumentClass_EventToSlot(t *testing.T) {
	ctx := context.Background()
	cls := newRegistry(t).Class(DocumentClass)

	src, err := cls.Create(ctx)
	require.NoError(t, err)
	mirror, err := cls.Create(ctx)
	require.NoError(t, err)

	disconnect, err := cls.ConnectEvent(ctx, src, "changed", cls, mirror, "setContent")
	require.NoError(t, err)
	defer disconnect()

	src.(*Document).SetContent("synced")
	assert.Equal(t, "synced", mirror.(*Document).Content())
	src.(*Document).Append("!")
	assert.Equal(t, "synced!", mirror.(*Document).Content())
}

func TestPlainLoader_ThroughManager(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	mgr := loadable.NewManager(ctx, reg)
	defer mgr.Close()

	assert.Equal(t, []string{"TXT", "md", "txt"}, mgr.Formats(ctx))
	assert.True(t, mgr.IsFormatSaveSupported(ctx, "md"))

	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("hello\nworld\n"), 0644))

	obj, err := mgr.LoadNew(ctx, in)
	require.NoError(t, err)
	doc := obj.(*Document)
	assert.Equal(t, 2, doc.Lines())

	out := filepath.Join(dir, "out.md")
	require.NoError(t, mgr.Save(ctx, doc, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(data))
}

func TestPlainLoader_WrongTarget(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, PlainLoader{}.Load(context.Background(), &buf, &buf))
	require.Error(t, PlainLoader{}.Save(context.Background(), "x", &buf))
}

func TestDocument_Lines(t *testing.T) {
	d := NewDocument()
	assert.Equal(t, 0, d.Lines())
	d.SetContent("one")
	assert.Equal(t, 1, d.Lines())
	assert.Equal(t, "one", d.Line(0))
	assert.Empty(t, d.Line(5))
}
