package tickets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRPayloadIsGloballyUnique(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "abc|7|1700000000", QRPayload("abc", 7, at))
	assert.NotEqual(t, QRPayload("abc", 7, at), QRPayload("abc", 8, at))
	assert.NotEqual(t, QRPayload("abc", 7, at), QRPayload("abc", 7, at.Add(time.Second)))
}

func TestRenderQRDeterministic(t *testing.T) {
	at := time.Unix(1700000000, 0)
	a, err := RenderQR("ticket-1", 42, at)
	require.NoError(t, err)
	b, err := RenderQR("ticket-1", 42, at)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestRenderTicketDeterministic(t *testing.T) {
	data := TicketData{
		TicketID:  "ticket-1",
		EventID:   42,
		EventName: "Lagos Jazz Night",
		Venue:     "Eko Hotel",
		BuyerName: "Ada",
		TierName:  "VIP",
		IssuedAt:  time.Unix(1700000000, 0),
	}
	a, err := RenderTicket(data)
	require.NoError(t, err)
	b, err := RenderTicket(data)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	data.BuyerName = "Ben"
	c, err := RenderTicket(data)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestStorePathsAndURLs(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, "/media")

	rel, err := store.SaveQR("t-1", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("tickets", "qr_codes", "qr_t-1.png"), rel)
	assert.Equal(t, "/media/tickets/qr_codes/qr_t-1.png", store.URL(rel))

	rel, err = store.SaveTicket("t-1", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("tickets", "png", "ticket_t-1.png"), rel)

	written, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), written)

	assert.Empty(t, store.URL(""))
}
