package baldr_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movermeyer/baldr"
)

type gadget struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func TestCodec_round_trip(t *testing.T) {
	t.Parallel()

	codecs := []baldr.Codec{
		baldr.JSONCodec{},
		baldr.CBORCodec{},
		baldr.YAMLCodec{},
	}

	for _, codec := range codecs {
		codec := codec
		t.Run(codec.ContentType(), func(t *testing.T) {
			t.Parallel()

			in := gadget{ID: 7, Name: "sprocket"}

			var buf bytes.Buffer
			require.NoError(t, codec.Encode(&buf, in))

			var out gadget
			require.NoError(t, codec.Decode(buf.Bytes(), &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestCodecRegistry_resolve(t *testing.T) {
	t.Parallel()

	reg := baldr.DefaultCodecRegistry()

	codec, ok := reg.Resolve("application/json")
	require.True(t, ok)
	assert.Equal(t, "application/json", codec.ContentType())

	codec, ok = reg.Resolve("application/cbor")
	require.True(t, ok)
	assert.Equal(t, "application/cbor", codec.ContentType())

	_, ok = reg.Resolve("text/csv")
	assert.False(t, ok)
}

func TestCodecRegistry_default_is_first_registered(t *testing.T) {
	t.Parallel()

	reg := baldr.NewCodecRegistry(baldr.CBORCodec{}, baldr.JSONCodec{})
	assert.Equal(t, "application/cbor", reg.Default().ContentType())
	assert.Equal(t, []string{"application/cbor", "application/json"}, reg.ContentTypes())
}

func TestCodecRegistry_empty(t *testing.T) {
	t.Parallel()

	reg := baldr.NewCodecRegistry()
	assert.Nil(t, reg.Default())
	assert.Empty(t, reg.ContentTypes())
}
