package keyvalues

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/metaclass/internal/loadable"
	"github.com/vk/metaclass/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func newManager(t *testing.T) (*registry.Registry, *loadable.Manager) {
	t.Helper()
	ctx := context.Background()
	reg := registry.New()
	_, err := reg.LoadPlugin(ctx, loadable.Plugin())
	require.NoError(t, err)
	_, err = reg.LoadPlugin(ctx, &Module{})
	require.NoError(t, err)
	mgr := loadable.NewManager(ctx, reg)
	t.Cleanup(mgr.Close)
	return reg, mgr
}

func TestEnvLoader(t *testing.T) {
	input := `
# comment
export NAME=metaclass
QUOTED="a value # kept"
EMPTY=
`
	tbl := NewTable()
	require.NoError(t, EnvLoader{}.Load(context.Background(), tbl, strings.NewReader(input)))
	assert.Equal(t, map[string]string{"NAME": "metaclass", "QUOTED": "a value # kept", "EMPTY": ""}, tbl.Entries())

	var out bytes.Buffer
	require.NoError(t, EnvLoader{}.Save(context.Background(), tbl, &out))
	assert.Equal(t, "EMPTY=\nNAME=metaclass\nQUOTED='a value # kept'\n", out.String())

	err := EnvLoader{}.Load(context.Background(), tbl, strings.NewReader("no separator"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no separator")

	require.Error(t, EnvLoader{}.Load(context.Background(), "not a table", strings.NewReader("")))
}

func TestEnvLoader_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		value string
	}{
		{"multiline", "line1\nline2"},
		{"carriage return", "a\r\nb"},
		{"tab", "a\tb"},
		{"apostrophe", "it's"},
		{"apostrophe and newline", "it's\nfine"},
		{"double quotes", `say "hi"`},
		{"dollar", "cost $HOME and ${USER}"},
		{"dollar with newline", "$HOME\n"},
		{"backslash", `C:\temp\x`},
		{"leading space", "  padded"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			tbl := NewTable()
			tbl.Set("K", tc.value)
			tbl.Set("NEXT", "after")

			var out bytes.Buffer
			require.NoError(t, EnvLoader{}.Save(ctx, tbl, &out))
			round := NewTable()
			require.NoError(t, EnvLoader{}.Load(ctx, round, &out), "saved:\n%s", out.String())
			assert.Equal(t, tbl.Entries(), round.Entries())
		})
	}
}

func TestEnvLoader_SaveRejectsUnrepresentable(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"key with dash", "a-b", "x"},
		{"trailing backslash", "K", `dir\`},
		{"escape text with line break", "K", "a\\nb\nc"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tbl := NewTable()
			tbl.Set(tc.key, tc.value)
			assert.Error(t, EnvLoader{}.Save(context.Background(), tbl, &bytes.Buffer{}))
		})
	}
}

func TestYAMLAndTOMLLoaders_Flatten(t *testing.T) {
	ctx := context.Background()
	tbl := NewTable()
	require.NoError(t, YAMLLoader{}.Load(ctx, tbl, strings.NewReader("server:\n  port: 8080\n  hosts: [a, b]\nname: x\n")))
	assert.Equal(t, map[string]string{"server.port": "8080", "server.hosts": "a,b", "name": "x"}, tbl.Entries())

	require.NoError(t, TOMLLoader{}.Load(ctx, tbl, strings.NewReader("name = \"y\"\n[db]\nport = 5432\n")))
	assert.Equal(t, map[string]string{"name": "y", "db.port": "5432"}, tbl.Entries())

	var out bytes.Buffer
	require.NoError(t, YAMLLoader{}.Save(ctx, tbl, &out))
	round := NewTable()
	require.NoError(t, YAMLLoader{}.Load(ctx, round, &out))
	assert.Equal(t, tbl.Entries(), round.Entries())

	out.Reset()
	require.NoError(t, TOMLLoader{}.Save(ctx, tbl, &out))
	round = NewTable()
	require.NoError(t, TOMLLoader{}.Load(ctx, round, &out))
	assert.Equal(t, tbl.Entries(), round.Entries())
}

func TestXMLLoader(t *testing.T) {
	ctx := context.Background()
	input := `<?xml version="1.0"?>
<properties>
  <entry key="name">metaclass</entry>
  <entry key="empty"></entry>
</properties>`
	tbl := NewTable()
	require.NoError(t, XMLLoader{}.Load(ctx, tbl, strings.NewReader(input)))
	assert.Equal(t, map[string]string{"name": "metaclass", "empty": ""}, tbl.Entries())

	var out bytes.Buffer
	require.NoError(t, XMLLoader{}.Save(ctx, tbl, &out))
	assert.Contains(t, out.String(), `<entry key="name">metaclass</entry>`)
	round := NewTable()
	require.NoError(t, XMLLoader{}.Load(ctx, round, &out))
	assert.Equal(t, tbl.Entries(), round.Entries())

	require.Error(t, XMLLoader{}.Load(ctx, tbl, strings.NewReader("<other/>")))
	err := XMLLoader{}.Load(ctx, tbl, strings.NewReader("<properties>\n<entry>v</entry></properties>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no key")
}

func TestCSVLoader(t *testing.T) {
	ctx := context.Background()
	tbl := NewTable()
	require.NoError(t, CSVLoader{}.Load(ctx, tbl, strings.NewReader("key,value\nb,2\na,\"x, y\"\n")))
	assert.Equal(t, map[string]string{"a": "x, y", "b": "2"}, tbl.Entries())

	var out bytes.Buffer
	require.NoError(t, CSVLoader{}.Save(ctx, tbl, &out))
	assert.Equal(t, "key,value\na,\"x, y\"\nb,2\n", out.String())

	err := CSVLoader{}.Load(ctx, tbl, strings.NewReader("key,value\n,orphan\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadersDiscovered(t *testing.T) {
	ctx := context.Background()
	_, mgr := newManager(t)

	typ := mgr.Type(ctx, TableClass)
	require.NotNil(t, typ)
	assert.Len(t, typ.Loaders(), 5)
	assert.Equal(t, []string{"csv", "env", "properties", "toml", "xml", "yaml", "yml"}, mgr.Formats(ctx))

	dir := t.TempDir()
	path := filepath.Join(dir, "app.properties")
	require.NoError(t, os.WriteFile(path, []byte("a=1\nb=2\n"), 0644))
	obj, err := mgr.LoadNew(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, obj.(*Table).Len())

	out := filepath.Join(dir, "app.yaml")
	require.NoError(t, mgr.Save(ctx, obj, out))
	again, err := mgr.LoadNew(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, obj.(*Table).Entries(), again.(*Table).Entries())
}

func TestTableClass(t *testing.T) {
	ctx := context.Background()
	reg, _ := newManager(t)
	cls := reg.Class(TableClass)

	t.Setenv("METACLASS_KV_TEST", "present")
	env, err := cls.CreateNamed(ctx, "FromEnvironment")
	require.NoError(t, err)
	v, ok := env.(*Table).Get("METACLASS_KV_TEST")
	require.True(t, ok)
	assert.Equal(t, "present", v)

	src, err := cls.Create(ctx)
	require.NoError(t, err)
	replica, err := cls.Create(ctx)
	require.NoError(t, err)
	disconnect, err := cls.ConnectEvent(ctx, src, "changed", cls, replica, "assign")
	require.NoError(t, err)
	defer disconnect()

	set, err := cls.Method(ctx, "set")
	require.NoError(t, err)
	_, err = set.Call(src, cty.StringVal("k"), cty.StringVal("v"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k": "v"}, replica.(*Table).Entries())

	del, err := cls.Method(ctx, "delete")
	require.NoError(t, err)
	res, err := del.Call(src, cty.StringVal("k"))
	require.NoError(t, err)
	assert.True(t, res.True())
	assert.Equal(t, 0, replica.(*Table).Len())

	get, err := cls.Method(ctx, "get")
	require.NoError(t, err)
	res, err = get.Call(src, cty.StringVal("k"))
	require.NoError(t, err)
	assert.True(t, res.IsNull())

	entries, err := cls.Attribute(ctx, "entries")
	require.NoError(t, err)
	require.NoError(t, entries.Set(src, cty.MapVal(map[string]cty.Value{"x": cty.StringVal("1")})))
	count, err := cls.Attribute(ctx, "count")
	require.NoError(t, err)
	n, err := count.Get(src)
	require.NoError(t, err)
	assert.True(t, n.RawEquals(cty.NumberIntVal(1)))
	got, err := entries.Get(src)
	require.NoError(t, err)
	assert.Equal(t, "1", got.Index(cty.StringVal("x")).AsString())
}
