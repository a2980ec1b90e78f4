package baldr

import (
	"encoding/json"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Codec encodes resources to, and decodes them from, one wire format.
type Codec interface {
	// ContentType returns the canonical media type for this codec
	// (e.g., "application/json").
	ContentType() string

	// Encode writes the wire form of v to w.
	Encode(w io.Writer, v any) error

	// Decode parses data into v.
	Decode(data []byte, v any) error
}

// JSONCodec implements Codec for JSON.
type JSONCodec struct{}

func (JSONCodec) ContentType() string { return "application/json" }

func (JSONCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// CBORCodec implements Codec for CBOR, the binary wire format.
type CBORCodec struct{}

func (CBORCodec) ContentType() string { return "application/cbor" }

func (CBORCodec) Encode(w io.Writer, v any) error {
	return cbor.NewEncoder(w).Encode(v)
}

func (CBORCodec) Decode(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// YAMLCodec implements Codec for YAML.
type YAMLCodec struct{}

func (YAMLCodec) ContentType() string { return "application/yaml" }

func (YAMLCodec) Encode(w io.Writer, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (YAMLCodec) Decode(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// CodecRegistry maps content types to codecs. It is populated once at
// construction and read-only afterwards, so it is safe for concurrent use
// without locking. Index 0 of the registration order is the default codec.
type CodecRegistry struct {
	codecs map[string]Codec
	order  []string
}

// NewCodecRegistry builds a registry from the given codecs. Registration
// order is preserved; the first codec is the default used for wildcard
// Accept values.
func NewCodecRegistry(codecs ...Codec) *CodecRegistry {
	cr := &CodecRegistry{
		codecs: make(map[string]Codec, len(codecs)),
		order:  make([]string, 0, len(codecs)),
	}
	for _, c := range codecs {
		ct := c.ContentType()
		if _, ok := cr.codecs[ct]; !ok {
			cr.order = append(cr.order, ct)
		}
		cr.codecs[ct] = c
	}
	return cr
}

// DefaultCodecRegistry returns a registry with JSON (default), CBOR, and
// YAML codecs.
func DefaultCodecRegistry() *CodecRegistry {
	return NewCodecRegistry(JSONCodec{}, CBORCodec{}, YAMLCodec{})
}

// Resolve returns the codec registered for the given content type.
func (cr *CodecRegistry) Resolve(contentType string) (Codec, bool) {
	c, ok := cr.codecs[contentType]
	return c, ok
}

// Default returns the registry's default codec, or nil for an empty registry.
func (cr *CodecRegistry) Default() Codec {
	if len(cr.order) == 0 {
		return nil
	}
	return cr.codecs[cr.order[0]]
}

// ContentTypes returns all registered content types in registration order.
func (cr *CodecRegistry) ContentTypes() []string {
	cts := make([]string, len(cr.order))
	copy(cts, cr.order)
	return cts
}
