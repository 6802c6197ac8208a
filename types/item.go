package types

import "fmt"

// ItemID is the numeric identifier of an item. Ids 0-255 are, by convention, the placeable form of the block with
// the same id.
type ItemID int16

// AnyMeta matches every auxiliary value of an item id when used in an ItemKey.
const AnyMeta int16 = -1

// ItemKey identifies an item behavior. Sub-variants (wool colors, dyes) share an ItemID and differ by Meta.
type ItemKey struct {
	ID   ItemID `json:"id"`
	Meta int16  `json:"meta"`
}

func Key(id ItemID, meta int16) ItemKey {
	return ItemKey{ID: id, Meta: meta}
}

func (k ItemKey) String() string {
	if k.Meta == AnyMeta {
		return fmt.Sprintf("%d:*", k.ID)
	}
	return fmt.Sprintf("%d:%d", k.ID, k.Meta)
}

// ItemStack is a counted stack of one item variant. The zero value is an empty hand.
type ItemStack struct {
	ID    ItemID `json:"id"`
	Meta  int16  `json:"meta"`
	Count uint8  `json:"count"`
}

func Stack(id ItemID, meta int16, count uint8) ItemStack {
	return ItemStack{ID: id, Meta: meta, Count: count}
}

func (s ItemStack) Empty() bool {
	return s.Count == 0
}

func (s ItemStack) Key() ItemKey {
	return ItemKey{ID: s.ID, Meta: s.Meta}
}

// Grow returns the stack with n more (or, for negative n, fewer) items. A stack that drops to zero becomes empty.
func (s ItemStack) Grow(n int) ItemStack {
	c := int(s.Count) + n
	if c <= 0 {
		return ItemStack{}
	}
	if c > 255 {
		c = 255
	}
	s.Count = uint8(c)
	return s
}

func (s ItemStack) String() string {
	return fmt.Sprintf("%dx%d:%d", s.Count, s.ID, s.Meta)
}
