// Package reqcodec decodes execution requests arriving over a transport.
// Bodies are JSON, optionally zstd-compressed.
package reqcodec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/trainer/api"
)

const (
	// EncodingHeader names the header or message attribute carrying the
	// body encoding.
	EncodingHeader = "Content-Encoding"
	EncodingZstd   = "zstd"
	// EncodingZstdBase64 is used where bodies must be text, as in SQS.
	EncodingZstdBase64 = "zstd+base64"

	maxDecodedSize = 64 << 20
)

// Decoders and encoders are safe for concurrent DecodeAll/EncodeAll calls.
var (
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
)

// Decode parses a request body. A missing eval uuid is filled in so every
// request can be correlated in logs and responses.
func Decode(body []byte, encoding string) (api.ExecReq, error) {
	var req api.ExecReq

	raw, err := decompress(body, encoding)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if req.EvalUuid == "" {
		req.EvalUuid = uuid.NewString()
	}
	return req, nil
}

// Encode is the inverse of Decode.
func Encode(req api.ExecReq, encoding string) ([]byte, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	switch normalize(encoding) {
	case "":
		return raw, nil
	case EncodingZstd:
		return encoder.EncodeAll(raw, nil), nil
	case EncodingZstdBase64:
		compressed := encoder.EncodeAll(raw, nil)
		out := make([]byte, base64.StdEncoding.EncodedLen(len(compressed)))
		base64.StdEncoding.Encode(out, compressed)
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

func decompress(body []byte, encoding string) ([]byte, error) {
	switch normalize(encoding) {
	case "":
		return body, nil
	case EncodingZstd:
		out, err := decoder.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress zstd body: %w", err)
		}
		return out, nil
	case EncodingZstdBase64:
		compressed := make([]byte, base64.StdEncoding.DecodedLen(len(body)))
		n, err := base64.StdEncoding.Decode(compressed, body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 body: %w", err)
		}
		return decompress(compressed[:n], EncodingZstd)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

func normalize(encoding string) string {
	e := strings.ToLower(strings.TrimSpace(encoding))
	if e == "identity" {
		return ""
	}
	return e
}
