package extension

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prxssh/peerwire/pkg/wire"
)

const sampleHandshake = "d1:md11:ut_metadatai3e6:ut_pexi1ee" +
	"13:metadata_sizei31235e1:pi6881e4:reqqi250e1:v12:SampleCliente"

func TestParseHandshake(t *testing.T) {
	h, err := ParseHandshake([]byte(sampleHandshake))
	require.NoError(t, err)

	require.Equal(t, int64(3), h.M["ut_metadata"])
	require.Equal(t, int64(1), h.M["ut_pex"])
	require.Equal(t, int64(31235), h.MetadataSize)
	require.Equal(t, int64(6881), h.Port)
	require.Equal(t, int64(250), h.RequestQueue)
	require.Equal(t, "SampleClient", h.Version)

	require.True(t, h.Supports("ut_metadata"))
	require.False(t, h.Supports("ut_holepunch"))
}

func TestParseHandshakeMalformed(t *testing.T) {
	_, err := ParseHandshake([]byte("not bencode at all"))
	require.Error(t, err)
}

func TestRegistryDecodesHandshake(t *testing.T) {
	reg := NewRegistry()
	msg := wire.NewExtension(HandshakeID, []byte(sampleHandshake))

	decoded, err := reg.Decode(msg)
	require.NoError(t, err)

	h, ok := decoded.(*Handshake)
	require.True(t, ok)
	require.True(t, h.Supports("ut_pex"))
}

func TestRegistryUnknownID(t *testing.T) {
	reg := NewRegistry()
	msg := wire.NewExtension(42, []byte("whatever"))

	_, err := reg.Decode(msg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no decoder registered for id 42")
}

func TestRegistryRejectsOtherKinds(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Decode(wire.NewHave(1))
	require.Error(t, err)
}

func TestRegistryCustomDecoder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(3, func(payload []byte) (any, error) {
		return len(payload), nil
	})

	decoded, err := reg.Decode(wire.NewExtension(3, []byte{1, 2, 3, 4}))
	require.NoError(t, err)
	require.Equal(t, 4, decoded)
}
