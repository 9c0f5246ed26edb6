package configvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewOrderedObject()
	o.Set("zebra", String("z"))
	o.Set("apple", String("a"))
	o.Set("mango", String("m"))

	assert.Equal(t, []string{"zebra", "apple", "mango"}, o.Keys())

	o.Set("apple", String("a2"))
	assert.Equal(t, []string{"zebra", "apple", "mango"}, o.Keys(), "replacing a key keeps its position")

	v, ok := o.Get("apple")
	require.True(t, ok)
	assert.Equal(t, "a2", v.String)
}

func TestObjectDeletePreservesRemainingOrder(t *testing.T) {
	o := NewOrderedObject()
	o.Set("a", Int(1))
	o.Set("b", Int(2))
	o.Set("c", Int(3))
	o.Delete("b")
	assert.Equal(t, []string{"a", "c"}, o.Keys())
}

func TestValueGetDottedPath(t *testing.T) {
	root := NewObject()
	server := NewObject()
	server.Object.Set("port", Int(8080))
	root.Object.Set("server", server)

	v, ok := root.Get("server.port")
	require.True(t, ok)
	assert.Equal(t, int64(8080), v.Int)

	_, ok = root.Get("server.missing")
	assert.False(t, ok)

	_, ok = root.Get("server.port.nested")
	assert.False(t, ok, "cannot descend into a scalar")

	_, ok = root.Get("")
	assert.False(t, ok, "an empty path is absent, not the root itself")
}

func TestEqualScalars(t *testing.T) {
	assert.True(t, Int(5).Equal(Int(5)))
	assert.False(t, Int(5).Equal(Int(6)))
	assert.True(t, String("a").Equal(String("a")))
	assert.False(t, String("a").Equal(Int(5)), "different kinds are never equal")
	assert.True(t, Null().Equal(Null()))
}

func TestEqualFloatNaNAndNegativeZero(t *testing.T) {
	assert.True(t, Float(math.NaN()).Equal(Float(math.NaN())), "NaN canonicalizes equal to NaN")
	assert.True(t, Float(0).Equal(Float(math.Copysign(0, -1))), "-0.0 normalizes equal to 0.0")
	assert.False(t, Float(1).Equal(Float(math.NaN())))
}

func TestEqualArraysOrderSensitive(t *testing.T) {
	a := Array(Int(1), Int(2))
	b := Array(Int(2), Int(1))
	assert.False(t, a.Equal(b), "array element order matters")
	assert.True(t, a.Equal(Array(Int(1), Int(2))))
}

func TestEqualObjectsOrderInsensitive(t *testing.T) {
	a := NewObject()
	a.Object.Set("x", Int(1))
	a.Object.Set("y", Int(2))

	b := NewObject()
	b.Object.Set("y", Int(2))
	b.Object.Set("x", Int(1))

	assert.True(t, a.Equal(b), "object key insertion order does not affect equality")

	c := NewObject()
	c.Object.Set("x", Int(1))
	assert.False(t, a.Equal(c), "missing key is not equal")
}

func TestCloneIsDeep(t *testing.T) {
	orig := NewObject()
	orig.Object.Set("list", Array(Int(1), Int(2)))
	clone := orig.Clone()
	clone.Object.Set("list", Array(Int(99)))

	v, _ := orig.Get("list")
	assert.Len(t, v.Array, 2, "mutating the clone must not affect the original")
}

func TestFlattenAndUnflattenRoundTrip(t *testing.T) {
	root := NewObject()
	db := NewObject()
	db.Object.Set("host", String("localhost"))
	db.Object.Set("port", Int(5432))
	root.Object.Set("db", db)
	root.Object.Set("name", String("svc"))

	flat := Flatten(root)
	assert.Equal(t, "localhost", flat["db.host"].String)
	assert.Equal(t, int64(5432), flat["db.port"].Int)
	assert.Equal(t, "svc", flat["name"].String)

	rebuilt := Unflatten(flat, []string{"db.host", "db.port", "name"})
	v, ok := rebuilt.Get("db.host")
	require.True(t, ok)
	assert.Equal(t, "localhost", v.String)
}
