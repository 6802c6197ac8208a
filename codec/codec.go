// Package codec is the JSON encoding used for persisted components, compounds and task payloads.
package codec

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func Decode[T any](bz []byte) (T, error) {
	v := new(T)
	if err := json.Unmarshal(bz, v); err != nil {
		return *v, eris.Wrap(err, "failed to decode")
	}
	return *v, nil
}

// DecodeInto decodes into ptr, which must be a non-nil pointer.
func DecodeInto(bz []byte, ptr any) error {
	if err := json.Unmarshal(bz, ptr); err != nil {
		return eris.Wrap(err, "failed to decode")
	}
	return nil
}

func Encode(v any) ([]byte, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode")
	}
	return bz, nil
}

// DecodeNumbers decodes like Decode but keeps JSON numbers as json.Number instead of float64, so integers
// survive a round trip through untyped maps.
func DecodeNumbers[T any](bz []byte) (T, error) {
	v := new(T)
	dec := json.NewDecoder(bytes.NewReader(bz))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return *v, eris.Wrap(err, "failed to decode")
	}
	return *v, nil
}
