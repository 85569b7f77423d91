package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalEnvelope(t *testing.T) {
	data, err := Marshal(MsgSubmit, SubmitPayload{Text: "Quali sono gli orari del CUP?"})
	require.NoError(t, err)

	msgType, raw, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, MsgSubmit, msgType)

	payload, err := UnmarshalPayload[SubmitPayload](raw)
	require.NoError(t, err)
	assert.Equal(t, "Quali sono gli orari del CUP?", payload.Text)
}

func TestMarshalNilPayload(t *testing.T) {
	data, err := Marshal(MsgClearInput, nil)
	require.NoError(t, err)

	msgType, raw, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, MsgClearInput, msgType)
	assert.Empty(t, raw)
}

func TestUnmarshalRejectsMissingType(t *testing.T) {
	_, _, err := Unmarshal([]byte(`{"payload":{}}`))
	assert.Error(t, err)

	_, _, err = Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}

func TestRegisterPayloadCapabilities(t *testing.T) {
	p := RegisterPayload{Capabilities: []string{CapabilityMicStream}}
	assert.True(t, p.HasCapability(CapabilityMicStream))
	assert.False(t, p.HasCapability(CapabilityPlatformSTT))
}
