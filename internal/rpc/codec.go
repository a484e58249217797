package rpc

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype of the board codec.
const CodecName = "vcwire"

// message is implemented by every request and response type.
type message interface {
	appendWire(b []byte) []byte
	unmarshalWire(b []byte) error
}

type codec struct{}

var _ encoding.Codec = codec{}

// Codec returns the codec used for all board RPCs.
func Codec() encoding.Codec {
	return codec{}
}

func (codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(message)
	if !ok {
		return nil, fmt.Errorf("rpc: cannot marshal %T", v)
	}
	return m.appendWire(nil), nil
}

func (codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(message)
	if !ok {
		return fmt.Errorf("rpc: cannot unmarshal into %T", v)
	}
	return m.unmarshalWire(data)
}

func (codec) Name() string {
	return CodecName
}
