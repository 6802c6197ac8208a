package types

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pos is the integer coordinate of a block cell.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func P(x, y, z int) Pos {
	return Pos{X: x, Y: y, Z: z}
}

// PosFromVec returns the cell containing v.
func PosFromVec(v mgl64.Vec3) Pos {
	return Pos{X: int(math.Floor(v[0])), Y: int(math.Floor(v[1])), Z: int(math.Floor(v[2]))}
}

func (p Pos) Add(o Pos) Pos {
	return Pos{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Side returns the neighbouring cell in direction f. Invalid returns p itself.
func (p Pos) Side(f Face) Pos {
	return p.Add(f.Offset())
}

// Vec returns the minimum corner of the cell.
func (p Pos) Vec() mgl64.Vec3 {
	return mgl64.Vec3{float64(p.X), float64(p.Y), float64(p.Z)}
}

// Center returns the centre of the cell.
func (p Pos) Center() mgl64.Vec3 {
	return p.Vec().Add(mgl64.Vec3{0.5, 0.5, 0.5})
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Face is one of the six cell faces. Invalid marks a self-triggered update.
type Face int8

const (
	Down Face = iota
	Up
	North
	South
	West
	East
	Invalid Face = -1
)

// Faces lists the six valid faces in their canonical order. Neighbor notification follows this order.
var Faces = [6]Face{Down, Up, North, South, West, East}

// HorizontalFaces lists the four side faces in canonical order.
var HorizontalFaces = [4]Face{North, South, West, East}

var faceOffsets = [6]Pos{{0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}, {-1, 0, 0}, {1, 0, 0}}

func (f Face) Valid() bool {
	return f >= Down && f <= East
}

func (f Face) Offset() Pos {
	if !f.Valid() {
		return Pos{}
	}
	return faceOffsets[f]
}

// Opposite returns the face pointing the other way. Invalid stays Invalid.
func (f Face) Opposite() Face {
	if !f.Valid() {
		return Invalid
	}
	return f ^ 1
}

func (f Face) String() string {
	switch f {
	case Down:
		return "down"
	case Up:
		return "up"
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	}
	return "invalid"
}

// BBox is an axis aligned box in world space.
type BBox struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// FullCube is the unit box of a solid cell, relative to its minimum corner.
var FullCube = BBox{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}

func Box(x0, y0, z0, x1, y1, z1 float64) BBox {
	return BBox{Min: mgl64.Vec3{x0, y0, z0}, Max: mgl64.Vec3{x1, y1, z1}}
}

// At translates a cell-relative box to the world position of p.
func (b BBox) At(p Pos) BBox {
	off := p.Vec()
	return BBox{Min: b.Min.Add(off), Max: b.Max.Add(off)}
}

func (b BBox) Intersects(o BBox) bool {
	return b.Min[0] < o.Max[0] && b.Max[0] > o.Min[0] &&
		b.Min[1] < o.Max[1] && b.Max[1] > o.Min[1] &&
		b.Min[2] < o.Max[2] && b.Max[2] > o.Min[2]
}

func (b BBox) Contains(v mgl64.Vec3) bool {
	return v[0] >= b.Min[0] && v[0] <= b.Max[0] &&
		v[1] >= b.Min[1] && v[1] <= b.Max[1] &&
		v[2] >= b.Min[2] && v[2] <= b.Max[2]
}
