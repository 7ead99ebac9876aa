package table

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/imgajeed76/pinvite/internal/i18n"
	"github.com/imgajeed76/pinvite/internal/invite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func samplePage() invite.Page {
	return invite.Page{
		Total: 3,
		Records: []invite.Record{
			{
				ID:        "01JNZ8Y6QW3T5V7X9Z1B3D5F7H",
				Type:      invite.TypeEmail,
				Email:     "ada@example.com",
				Role:      "admin",
				InvitedBy: "zoe@example.com",
				Status:    invite.StatusPending,
				CreatedAt: now.Add(-2 * time.Hour),
				ExpiresAt: now.Add(3 * 24 * time.Hour),
			},
			{
				ID:          "01JNZ8Y6QW3T5V7X9Z1B3D5F8K",
				Type:        invite.TypeLink,
				Email:       "bob@example.com",
				Status:      invite.StatusPending,
				ResendCount: 2,
				CreatedAt:   now.Add(-10 * 24 * time.Hour),
				ExpiresAt:   now.Add(-time.Hour),
			},
		},
	}
}

func TestDisplayResults_Plain(t *testing.T) {
	var buf bytes.Buffer
	err := DisplayResults(&buf, samplePage(), i18n.KeyTranslator{}, DisplayOptions{Now: now})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "ID       Invite_type  Email"))
	assert.True(t, strings.HasPrefix(lines[1], "───────  ───────────  "))
	assert.Contains(t, lines[2], "b3d5f7h")
	assert.Contains(t, lines[2], "Status_pending")
	assert.Contains(t, lines[2], "2h ago")
	assert.Contains(t, lines[3], "Type_link")
	assert.Contains(t, lines[3], "Status_expired")
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "(Pending_count)", lines[5])
}

func TestDisplayResults_Raw(t *testing.T) {
	var buf bytes.Buffer
	err := DisplayResults(&buf, samplePage(), i18n.KeyTranslator{}, DisplayOptions{Raw: true, Now: now})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	cells := strings.Split(lines[0], "\t")
	require.Len(t, cells, 8)
	assert.Equal(t, "01JNZ8Y6QW3T5V7X9Z1B3D5F7H", cells[0])
	assert.Equal(t, "2026-03-10T10:00:00Z", cells[6])
}

func TestDisplayResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := DisplayResults(&buf, samplePage(), i18n.KeyTranslator{}, DisplayOptions{JSON: true, Now: now})
	require.NoError(t, err)

	var got jsonPage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.Total)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "pending", got.Records[0].Status)
	assert.Equal(t, "expired", got.Records[1].Status)
	assert.Equal(t, 2, got.Records[1].ResendCount)
	assert.NotContains(t, buf.String(), "token")
}

func TestPrintPlainTable_NoColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintPlainTable(&buf, nil, nil, ""))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "h", Truncate("hello", 1))
	assert.Equal(t, "", Truncate("hello", 0))
	assert.Equal(t, "ab  ", PadOrTruncate("ab", 4))
	assert.Equal(t, "abc…", PadOrTruncate("abcdef", 4))
}

func TestLabels(t *testing.T) {
	b, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	en := b.Printer("en-US")
	assert.Equal(t, "Link", TypeLabel(en, invite.TypeLink))
	assert.Equal(t, "Revoked", StatusLabel(en, invite.StatusRevoked))
}
