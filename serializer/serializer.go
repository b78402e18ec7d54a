// Package serializer converts cache values to and from their stored byte
// representation: canonical JSON, gzip-compressed above a size threshold.
package serializer

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"

	"cache-manager/internal/common/errors"
	"cache-manager/model"
)

// DefaultCompressionThreshold is the payload size in bytes above which
// compression-enabled strategies compress.
const DefaultCompressionThreshold = 1024

// Serializer encodes values into cache entries and decodes them back.
// Values round-trip to their canonical JSON form: numbers decode as
// float64, structs as map[string]interface{}.
type Serializer struct {
	threshold int
}

// New creates a Serializer with the given compression threshold in bytes.
// A non-positive threshold falls back to DefaultCompressionThreshold.
func New(threshold int) *Serializer {
	if threshold <= 0 {
		threshold = DefaultCompressionThreshold
	}
	return &Serializer{threshold: threshold}
}

// Serialize encodes a value into a cache entry. When compress is true and
// the encoded payload exceeds the threshold, the payload is gzip-compressed
// and the entry records both the original and compressed sizes. Payloads at
// or below the threshold are stored uncompressed regardless of the flag.
//
// The returned entry carries no key and no expiry; the caller stamps those.
func (s *Serializer) Serialize(value interface{}, compress bool) (*model.Entry, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, errors.SerializationError("failed to encode value", err)
	}

	entry := &model.Entry{
		Payload:      payload,
		CreatedAt:    time.Now(),
		OriginalSize: len(payload),
	}

	if compress && len(payload) > s.threshold {
		compressed, err := compressPayload(payload)
		if err != nil {
			return nil, errors.SerializationError("failed to compress payload", err)
		}
		entry.Payload = compressed
		entry.Compressed = true
		entry.CompressedSize = len(compressed)
	}

	return entry, nil
}

// Deserialize decodes an entry's payload back into a value, decompressing
// first when the entry is marked compressed.
func (s *Serializer) Deserialize(entry *model.Entry) (interface{}, error) {
	if entry == nil {
		return nil, errors.SerializationError("cannot decode nil entry", nil)
	}

	payload := entry.Payload
	if entry.Compressed {
		raw, err := decompressPayload(payload)
		if err != nil {
			return nil, errors.SerializationError("failed to decompress payload", err)
		}
		payload = raw
	}

	var value interface{}
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, errors.SerializationError("failed to decode payload", err)
	}

	return value, nil
}

func compressPayload(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decompressPayload(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}
