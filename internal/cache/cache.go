// Package cache persists built artifacts so a restart can skip rebuilding
// them from the historical store. Entries are CBOR encoded and zstd
// compressed regardless of back end.
package cache

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Artifact names.
const (
	ArtifactScalers    = "cri_scalers"
	ArtifactSkillModel = "skill_model"
)

// Cache loads and stores named artifacts. TryLoad reports found=false on a
// miss; an error means the entry exists but could not be read.
type Cache interface {
	TryLoad(ctx context.Context, name string, v any) (bool, error)
	Save(ctx context.Context, name string, v any) error
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("cache: CBOR decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder initialization failed: " + err.Error())
	}
}

func encode(v any) ([]byte, error) {
	raw, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

func decode(data []byte, v any) error {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("zstd decompress: %w", err)
	}
	if err := decMode.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	return nil
}

// Noop never finds anything and discards writes.
type Noop struct{}

func (Noop) TryLoad(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Save(context.Context, string, any) error            { return nil }
