package grpc

import (
	"encoding/json"
	"fmt"
)

// codecName is the gRPC content-subtype ("application/grpc+json").
const codecName = "json"

// Codec carries the pipeline's JSON types over gRPC so the service needs no
// generated protobuf code.
type Codec struct{}

// Marshal encodes v as JSON.
func (Codec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec marshal: %w", err)
	}
	return b, nil
}

// Unmarshal decodes JSON into v.
func (Codec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec unmarshal: %w", err)
	}
	return nil
}

// Name returns the content-subtype.
func (Codec) Name() string { return codecName }
