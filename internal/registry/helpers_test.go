package registry

import (
	"bytes"
	"log/slog"

	"github.com/vk/metaclass/internal/member"
	"github.com/zclconf/go-cty/cty"
)

type testPlugin struct {
	name    string
	classes []ClassSpec
}

func (p *testPlugin) Name() string { return p.name }

func (p *testPlugin) Register(r *Registrar) {
	for _, spec := range p.classes {
		r.RegisterClass(spec)
	}
}

func plugin(name string, classes ...ClassSpec) *testPlugin {
	return &testPlugin{name: name, classes: classes}
}

func attr(name string) *member.Attribute {
	return member.NewAttribute(member.AttributeSpec{Name: name, Type: cty.String})
}

func method(name string) *member.Method {
	return member.NewMethod(member.MethodSpec{Name: name, Signature: member.Sig(cty.NilType)})
}

func names[T member.Descriptor](ds []T) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name()
	}
	return out
}

func newTestRegistry(buf *bytes.Buffer, opts ...Option) *Registry {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(append([]Option{WithLogger(logger)}, opts...)...)
}
