package cache

import (
	"encoding/json"

	"github.com/klauspost/compress/zstd"
)

// Entries are stored as zstd-compressed JSON.
var (
	encoder = mustEncoder()
	decoder = mustDecoder()
)

func mustEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("cache: zstd encoder: " + err.Error())
	}
	return enc
}

func mustDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic("cache: zstd decoder: " + err.Error())
	}
	return dec
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(data, nil), nil
}

func decode(raw []byte, dst any) error {
	data, err := decoder.DecodeAll(raw, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
