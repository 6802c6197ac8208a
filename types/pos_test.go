package types_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/types"
)

func TestFaceOppositeRoundTrips(t *testing.T) {
	for _, f := range types.Faces {
		assert.Equal(t, f, f.Opposite().Opposite())
		assert.Equal(t, types.P(0, 0, 0), types.P(0, 0, 0).Side(f).Side(f.Opposite()))
	}
	assert.Equal(t, types.Invalid, types.Invalid.Opposite())
	assert.Equal(t, types.P(1, 2, 3), types.P(1, 2, 3).Side(types.Invalid))
}

func TestPosFromVecFloorsNegativeCoordinates(t *testing.T) {
	assert.Equal(t, types.P(-1, 0, 2), types.PosFromVec(mgl64.Vec3{-0.5, 0.99, 2.0}))
}

func TestBoxIntersection(t *testing.T) {
	a := types.FullCube.At(types.P(0, 0, 0))
	b := types.FullCube.At(types.P(1, 0, 0))
	c := types.Box(0.5, 0.5, 0.5, 1.5, 1.5, 1.5)

	assert.Check(t, !a.Intersects(b), "touching cells do not overlap")
	assert.Check(t, a.Intersects(c))
	assert.Check(t, b.Intersects(c))
	assert.Check(t, a.Contains(mgl64.Vec3{0.5, 0.5, 0.5}))
}

func TestItemStackGrow(t *testing.T) {
	s := types.Stack(260, 0, 2)
	assert.Equal(t, uint8(3), s.Grow(1).Count)
	assert.Check(t, s.Grow(-2).Empty())
	assert.Equal(t, types.ItemStack{}, s.Grow(-5))
}
