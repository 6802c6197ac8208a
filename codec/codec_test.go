package codec_test

import (
	"testing"

	"github.com/goccy/go-json"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/codec"
)

type pitch struct {
	Pitch uint8
}

func TestDecodeTyped(t *testing.T) {
	bz, err := codec.Encode(pitch{Pitch: 12})
	assert.NilError(t, err)
	got, err := codec.Decode[pitch](bz)
	assert.NilError(t, err)
	assert.Equal(t, uint8(12), got.Pitch)

	var into pitch
	assert.NilError(t, codec.DecodeInto(bz, &into))
	assert.Equal(t, got, into)
}

func TestDecodeNumbersKeepsIntegers(t *testing.T) {
	got, err := codec.DecodeNumbers[map[string]any]([]byte(`{"x":9007199254740993}`))
	assert.NilError(t, err)
	n, ok := got["x"].(json.Number)
	assert.Check(t, ok)
	assert.Equal(t, "9007199254740993", n.String())
}

func TestDecodeError(t *testing.T) {
	_, err := codec.Decode[pitch]([]byte(`{"Pitch":"high"}`))
	assert.Check(t, err != nil)
}
