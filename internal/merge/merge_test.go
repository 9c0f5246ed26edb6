package merge

import (
	"testing"

	"github.com/cburgosro9303/vortex-config/internal/configvalue"
	"github.com/stretchr/testify/assert"
)

func TestMergeRecursesIntoObjects(t *testing.T) {
	base := configvalue.NewObject()
	baseDB := configvalue.NewObject()
	baseDB.Object.Set("host", configvalue.String("base-host"))
	baseDB.Object.Set("port", configvalue.Int(5432))
	base.Object.Set("db", baseDB)

	overlay := configvalue.NewObject()
	overlayDB := configvalue.NewObject()
	overlayDB.Object.Set("host", configvalue.String("overlay-host"))
	overlay.Object.Set("db", overlayDB)

	merged := Merge(base, overlay)
	host, _ := merged.Get("db.host")
	port, _ := merged.Get("db.port")
	assert.Equal(t, "overlay-host", host.String, "overlay key wins")
	assert.Equal(t, int64(5432), port.Int, "base-only key survives")
}

func TestMergeArraysReplacedWholesale(t *testing.T) {
	base := configvalue.NewObject()
	base.Object.Set("list", configvalue.Array(configvalue.Int(1), configvalue.Int(2), configvalue.Int(3)))

	overlay := configvalue.NewObject()
	overlay.Object.Set("list", configvalue.Array(configvalue.Int(9)))

	merged := Merge(base, overlay)
	list, _ := merged.Get("list")
	assert.Len(t, list.Array, 1, "arrays are never element-merged")
	assert.Equal(t, int64(9), list.Array[0].Int)
}

func TestMergeTypeConflictOverlayWins(t *testing.T) {
	base := configvalue.NewObject()
	base.Object.Set("value", configvalue.NewObject())

	overlay := configvalue.NewObject()
	overlay.Object.Set("value", configvalue.String("scalar-now"))

	merged := Merge(base, overlay)
	v, _ := merged.Get("value")
	assert.Equal(t, configvalue.KindString, v.Kind)
}

func TestMergeOverlayNullOverridesBaseValue(t *testing.T) {
	base := configvalue.NewObject()
	base.Object.Set("value", configvalue.String("base-value"))

	overlay := configvalue.NewObject()
	overlay.Object.Set("value", configvalue.Null())

	merged := Merge(base, overlay)
	v, ok := merged.Get("value")
	assert.True(t, ok)
	assert.Equal(t, configvalue.KindNull, v.Kind, "a higher-precedence null must override, not be dropped")
}

func TestMergeAllFoldsLeftToRight(t *testing.T) {
	low := configvalue.NewObject()
	low.Object.Set("a", configvalue.Int(1))
	mid := configvalue.NewObject()
	mid.Object.Set("a", configvalue.Int(2))
	mid.Object.Set("b", configvalue.Int(2))
	high := configvalue.NewObject()
	high.Object.Set("b", configvalue.Int(3))

	merged := MergeAll([]*configvalue.Value{low, mid, high})
	a, _ := merged.Get("a")
	b, _ := merged.Get("b")
	assert.Equal(t, int64(2), a.Int)
	assert.Equal(t, int64(3), b.Int)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := configvalue.NewObject()
	base.Object.Set("a", configvalue.Int(1))
	overlay := configvalue.NewObject()
	overlay.Object.Set("a", configvalue.Int(2))

	_ = Merge(base, overlay)

	v, _ := base.Get("a")
	assert.Equal(t, int64(1), v.Int, "base must be untouched")
}
