package paystack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref1"}}`)
	sig := Sign("secret", body)

	assert.Len(t, sig, 128)
	assert.True(t, VerifySignature("secret", body, sig))
	assert.True(t, VerifySignature("secret", body, strings.ToUpper(sig)))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature("secret", append(body, ' '), sig))
	assert.False(t, VerifySignature("secret", body, ""))
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"event":"transfer.failed","data":{"reference":"c1","reason":"Insufficient balance"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventTransferFailed, ev.Event)
	assert.Equal(t, "Insufficient balance", ev.Data.ResponseText())

	_, err = ParseEvent([]byte(`{"event":"charge.success","data":{}}`))
	assert.True(t, IsTransport(err))

	_, err = ParseEvent([]byte(`not json`))
	assert.True(t, IsTransport(err))
}
