package territory

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ErrCorrupt is returned when a stored blob cannot be decoded into a bundle.
var ErrCorrupt = errors.New("territory: corrupt or incompatible bundle")

// magic prefixes every encoded bundle; bump the digit when the layout of
// Bundle or the trees changes.
var magic = []byte("GSB1")

// Encode serialises b as a zstd-compressed gob stream.
func Encode(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()

	out := append([]byte(nil), magic...)
	return enc.EncodeAll(buf.Bytes(), out), nil
}

// Decode is the inverse of Encode.
func Decode(data []byte) (*Bundle, error) {
	if !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("%w: bad header", ErrCorrupt)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(data[len(magic):], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var b Bundle
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	for _, t := range b.Territories {
		if t == nil || t.Coverage == nil || t.Coverage.Root == nil || t.Index == nil || t.Index.Root == nil {
			return nil, fmt.Errorf("%w: incomplete territory", ErrCorrupt)
		}
	}
	return &b, nil
}
