package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketPayloadRoundTrip(t *testing.T) {
	eventID := uuid.New()
	payload := TicketPayload("ABCD2345EFGH", eventID, "secret")

	code, parsedEvent, err := ParseTicketPayload(payload, "secret")
	require.NoError(t, err)
	assert.Equal(t, "ABCD2345EFGH", code)
	assert.Equal(t, eventID, parsedEvent)
}

func TestParseTicketPayload_Rejections(t *testing.T) {
	eventID := uuid.New()
	payload := TicketPayload("ABCD2345EFGH", eventID, "secret")

	_, _, err := ParseTicketPayload(payload, "other-secret")
	assert.Error(t, err, "wrong secret")

	tampered := strings.Replace(payload, "ABCD", "ZZZZ", 1)
	_, _, err = ParseTicketPayload(tampered, "secret")
	assert.Error(t, err, "tampered code")

	_, _, err = ParseTicketPayload("ticket:ABCD;event:not-a-uuid;sig:00", "secret")
	assert.Error(t, err, "bad event id")

	_, _, err = ParseTicketPayload("garbage", "secret")
	assert.Error(t, err, "malformed payload")
}

func TestQRPayloadEncoder(t *testing.T) {
	img, err := NewQRPayloadEncoder().Encode(TicketPayload("ABCD2345EFGH", uuid.New(), "secret"))
	require.NoError(t, err)
	assert.NotEmpty(t, img)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
}

func TestPlaceholderPayloadNamesTheCode(t *testing.T) {
	assert.Contains(t, string(PlaceholderPayload("ABCD2345EFGH")), "ABCD2345EFGH")
}
