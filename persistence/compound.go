package persistence

import (
	"math"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/codec"
	"pkg.world.dev/blockshard/types"
)

// TagKey is the compound key holding the persistence tag.
const TagKey = "id"

var ErrWrongType = eris.New("compound value has the wrong type")

// Compound is the generic structured tag format entities and block entities are flattened into. Values are JSON
// compatible: numbers, strings, bools, nested compounds and lists.
type Compound map[string]any

// DecodeCompound decodes JSON into a compound, keeping integers exact.
func DecodeCompound(bz []byte) (Compound, error) {
	return codec.DecodeNumbers[Compound](bz)
}

func (c Compound) Encode() ([]byte, error) {
	return codec.Encode(c)
}

// Tag returns the persistence tag, or "" if the compound has none.
func (c Compound) Tag() string {
	tag, _ := c[TagKey].(string)
	return tag
}

func (c Compound) Has(key string) bool {
	_, ok := c[key]
	return ok
}

func (c Compound) String(key string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", missing(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(key, v)
	}
	return s, nil
}

// Int accepts every numeric representation a compound can hold after a decode: Go integers, float64 without a
// fractional part, and json.Number.
func (c Compound) Int(key string) (int64, error) {
	v, ok := c[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, wrongType(key, v)
		}
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, eris.Wrapf(err, "compound key %q", key)
		}
		return i, nil
	default:
		return 0, wrongType(key, v)
	}
}

func (c Compound) Float(key string) (float64, error) {
	v, ok := c[key]
	if !ok {
		return 0, missing(key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, eris.Wrapf(err, "compound key %q", key)
		}
		return f, nil
	default:
		i, err := c.Int(key)
		return float64(i), err
	}
}

func (c Compound) Bool(key string) (bool, error) {
	v, ok := c[key]
	if !ok {
		return false, missing(key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(key, v)
	}
	return b, nil
}

// Compound returns a nested compound.
func (c Compound) Compound(key string) (Compound, error) {
	v, ok := c[key]
	if !ok {
		return nil, missing(key)
	}
	switch n := v.(type) {
	case Compound:
		return n, nil
	case map[string]any:
		return n, nil
	default:
		return nil, wrongType(key, v)
	}
}

// Pos reads the x, y and z keys.
func (c Compound) Pos() (types.Pos, error) {
	x, err := c.Int("x")
	if err != nil {
		return types.Pos{}, err
	}
	y, err := c.Int("y")
	if err != nil {
		return types.Pos{}, err
	}
	z, err := c.Int("z")
	if err != nil {
		return types.Pos{}, err
	}
	return types.P(int(x), int(y), int(z)), nil
}

func (c Compound) SetPos(pos types.Pos) {
	c["x"], c["y"], c["z"] = pos.X, pos.Y, pos.Z
}

func missing(key string) error {
	return eris.Errorf("compound has no key %q", key)
}

func wrongType(key string, v any) error {
	return eris.Wrapf(ErrWrongType, "compound key %q holds %T", key, v)
}
