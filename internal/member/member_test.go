package member

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type widget struct {
	title   string
	changed *Signal
	seen    []string
}

func newWidget() *widget {
	return &widget{changed: NewSignal(cty.String)}
}

func titleAttribute() *Attribute {
	return NewAttribute(AttributeSpec{
		Name: "Title",
		Type: cty.String,
		Get: func(obj any) (cty.Value, error) {
			return cty.StringVal(obj.(*widget).title), nil
		},
		Set: func(obj any, v cty.Value) error {
			obj.(*widget).title = v.AsString()
			return nil
		},
	})
}

func TestAttribute_GetSet(t *testing.T) {
	attr := titleAttribute()
	w := newWidget()

	assert.Equal(t, KindAttribute, attr.Kind())
	assert.Equal(t, AccessReadWrite, attr.Access())
	assert.True(t, attr.HasAccessors())

	require.NoError(t, attr.Set(w, cty.NumberIntVal(7)))
	assert.Equal(t, "7", w.title)

	v, err := attr.Get(w)
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.StringVal("7")))
}

func TestAttribute_DefaultAndReadOnly(t *testing.T) {
	attr := NewAttribute(AttributeSpec{
		Name:    "Version",
		Type:    cty.Number,
		Default: cty.NumberIntVal(2),
	})

	assert.Equal(t, AccessReadOnly, attr.Access())
	assert.False(t, attr.HasAccessors())

	v, err := attr.Get(nil)
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.NumberIntVal(2)))

	err = attr.Set(nil, cty.NumberIntVal(3))
	assert.ErrorIs(t, err, ErrReadOnly)

	noDefault := NewAttribute(AttributeSpec{Name: "Empty", Type: cty.String})
	v, err = noDefault.Get(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	assert.Equal(t, cty.String, v.Type())
}

func TestAttribute_SetTypeMismatch(t *testing.T) {
	attr := NewAttribute(AttributeSpec{
		Name: "Count",
		Type: cty.Number,
		Set:  func(obj any, v cty.Value) error { return nil },
	})
	err := attr.Set(nil, cty.StringVal("many"))
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestMethod_Call(t *testing.T) {
	add := NewMethod(MethodSpec{
		Name:      "Add",
		Signature: Sig(cty.Number, cty.Number, cty.Number),
		Call: func(obj any, args []cty.Value) (cty.Value, error) {
			return args[0].Add(args[1]), nil
		},
	})

	assert.Equal(t, "number(number, number)", add.Signature().String())

	out, err := add.Call(nil, MustArgs(2, "3")...)
	require.NoError(t, err)
	assert.True(t, out.RawEquals(cty.NumberIntVal(5)))

	_, err = add.Call(nil, MustArgs(1)...)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	failing := NewMethod(MethodSpec{
		Name:      "Fail",
		Signature: Sig(cty.NilType),
		Call: func(obj any, args []cty.Value) (cty.Value, error) {
			return cty.NilVal, errors.New("boom")
		},
	})
	_, err = failing.Call(nil)
	assert.EqualError(t, err, `call method "Fail": boom`)

	unbound := NewMethod(MethodSpec{Name: "Nothing"})
	_, err = unbound.Call(nil)
	assert.ErrorIs(t, err, ErrNotBound)
}

func TestConstructor_Invoke(t *testing.T) {
	ctor := NewConstructor(ConstructorSpec{
		Name:   "FromTitle",
		Params: []cty.Type{cty.String},
		New: func(args []cty.Value) (any, error) {
			w := newWidget()
			w.title = args[0].AsString()
			return w, nil
		},
	})

	assert.Equal(t, KindConstructor, ctor.Kind())
	assert.True(t, ctor.Matches(MustArgs("x")))
	assert.False(t, ctor.Matches(MustArgs(1)))

	obj, err := ctor.Invoke(MustArgs("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", obj.(*widget).title)

	_, err = ctor.Invoke(MustArgs(1))
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	nilCtor := NewConstructor(ConstructorSpec{Name: "Nil", New: func([]cty.Value) (any, error) { return nil, nil }})
	_, err = nilCtor.Invoke(nil)
	assert.Error(t, err)
}

func TestConnect_EventToSlot(t *testing.T) {
	changed := NewEvent(EventSpec{
		Name:   "Changed",
		Params: []cty.Type{cty.String},
		Signal: func(obj any) *Signal { return obj.(*widget).changed },
	})
	onChanged := NewSlot(SlotSpec{
		Name:   "OnChanged",
		Params: []cty.Type{cty.String},
		Handler: func(obj any) func([]cty.Value) {
			w := obj.(*widget)
			return func(args []cty.Value) { w.seen = append(w.seen, args[0].AsString()) }
		},
	})

	src, dst := newWidget(), newWidget()
	disconnect, err := Connect(changed, src, onChanged, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, src.changed.Len())

	require.NoError(t, src.changed.Emit(cty.StringVal("a")))
	require.NoError(t, src.changed.Emit(cty.NumberIntVal(2)))
	assert.Equal(t, []string{"a", "2"}, dst.seen)

	assert.Error(t, src.changed.Emit())

	disconnect()
	assert.Equal(t, 0, src.changed.Len())
	require.NoError(t, src.changed.Emit(cty.StringVal("ignored")))
	assert.Equal(t, []string{"a", "2"}, dst.seen)
}

func TestConnect_SignatureMismatch(t *testing.T) {
	ev := NewEvent(EventSpec{Name: "Resized", Params: []cty.Type{cty.Number, cty.Number}})
	slot := NewSlot(SlotSpec{Name: "OnText", Params: []cty.Type{cty.String}})

	_, err := Connect(ev, newWidget(), slot, newWidget())
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "attribute", KindAttribute.String())
	assert.Equal(t, "method", KindMethod.String())
	assert.Equal(t, "event", KindEvent.String())
	assert.Equal(t, "slot", KindSlot.String())
	assert.Equal(t, "constructor", KindConstructor.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
