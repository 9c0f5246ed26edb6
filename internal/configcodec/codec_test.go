package configcodec

import (
	"testing"

	"github.com/cburgosro9303/vortex-config/internal/configvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleValue() *configvalue.Value {
	root := configvalue.NewObject()
	server := configvalue.NewObject()
	server.Object.Set("port", configvalue.Int(8080))
	server.Object.Set("host", configvalue.String("localhost"))
	server.Object.Set("timeout", configvalue.Float(1.5))
	root.Object.Set("server", server)
	root.Object.Set("enabled", configvalue.Bool(true))
	root.Object.Set("tags", configvalue.Array(configvalue.String("a"), configvalue.String("b")))
	root.Object.Set("nickname", configvalue.Null())
	return root
}

func TestJSONRoundTripIdentity(t *testing.T) {
	v := sampleValue()
	out, err := SerializeJSON(v)
	require.NoError(t, err)

	parsed, err := ParseJSON(out)
	require.NoError(t, err)
	assert.True(t, Equal(v, parsed), "fromJson(toJson(c)) must equal c")
}

func TestJSONPreservesKeyOrder(t *testing.T) {
	root := configvalue.NewObject()
	root.Object.Set("zebra", configvalue.Int(1))
	root.Object.Set("apple", configvalue.Int(2))

	out, err := SerializeJSON(root)
	require.NoError(t, err)

	parsed, err := ParseJSON(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"zebra", "apple"}, parsed.Object.Keys())
}

func TestYAMLRoundTripIdentity(t *testing.T) {
	v := sampleValue()
	out, err := SerializeYAML(v)
	require.NoError(t, err)

	parsed, err := ParseYAML(out)
	require.NoError(t, err)
	assert.True(t, Equal(v, parsed), "fromYaml(toYaml(c)) must equal c")
}

func TestYAMLPreservesKeyOrder(t *testing.T) {
	input := []byte("zebra: 1\napple: 2\nmango: 3\n")
	parsed, err := ParseYAML(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"zebra", "apple", "mango"}, parsed.Object.Keys())
}

func TestFlattenAndGetCorrespondence(t *testing.T) {
	v := sampleValue()
	flat := configvalue.Flatten(v)
	for k, leaf := range flat {
		got, ok := v.Get(k)
		require.True(t, ok, k)
		assert.True(t, Equal(leaf, got), k)
	}
}

func TestParsePropertiesBasic(t *testing.T) {
	input := "# a comment\nserver.port=8080\nserver.host: localhost\napp.name = Test App\n"
	v, err := ParseProperties(input)
	require.NoError(t, err)

	port, ok := v.Get("server.port")
	require.True(t, ok)
	assert.Equal(t, "8080", port.String)

	host, ok := v.Get("server.host")
	require.True(t, ok)
	assert.Equal(t, "localhost", host.String)

	name, ok := v.Get("app.name")
	require.True(t, ok)
	assert.Equal(t, "Test App", name.String)
}

func TestParsePropertiesMissingSeparatorErrors(t *testing.T) {
	_, err := ParseProperties("line1=ok\nbadline\n")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestParsePropertiesOverwritesNonObjectIntermediate(t *testing.T) {
	input := "a=scalar\na.b=nested\n"
	v, err := ParseProperties(input)
	require.NoError(t, err)
	b, ok := v.Get("a.b")
	require.True(t, ok)
	assert.Equal(t, "nested", b.String)
}

func TestSerializePropertiesFlattensAndEscapes(t *testing.T) {
	root := configvalue.NewObject()
	db := configvalue.NewObject()
	db.Object.Set("url", configvalue.String("line1\nline2"))
	root.Object.Set("db", db)

	out := SerializeProperties(root)
	assert.Contains(t, out, `db.url=line1\nline2`)
}

func TestSerializePropertiesArraysCommaJoined(t *testing.T) {
	root := configvalue.NewObject()
	root.Object.Set("tags", configvalue.Array(configvalue.String("a"), configvalue.String("b")))
	out := SerializeProperties(root)
	assert.Contains(t, out, "tags=a,b")
}
