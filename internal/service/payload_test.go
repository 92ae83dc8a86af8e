package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradejournal/internal/models"
)

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		valid bool
		value float64
	}{
		{"native number", `{"size": 0.5}`, true, 0.5},
		{"numeric string", `{"size": "0.5"}`, true, 0.5},
		{"negative string", `{"size": "-2.25"}`, true, -2.25},
		{"integer", `{"size": 3}`, true, 3},
		{"garbage string", `{"size": "abc"}`, false, 0},
		{"null", `{"size": null}`, false, 0},
		{"empty string", `{"size": ""}`, false, 0},
		{"absent", `{}`, false, 0},
		{"boolean", `{"size": true}`, false, 0},
		{"object", `{"size": {"v": 1}}`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload TradePayload
			require.NoError(t, json.Unmarshal([]byte(tt.json), &payload))
			assert.Equal(t, tt.valid, payload.Size.Valid)
			if tt.valid {
				assert.Equal(t, tt.value, payload.Size.Float64)
			} else {
				assert.Nil(t, payload.Size.Ptr())
			}
		})
	}
}

func TestNumberNeverFailsDecode(t *testing.T) {
	// A single bad numeric field must not abort the whole payload.
	var payload TradePayload
	err := json.Unmarshal([]byte(`{"pair": "EURUSD", "pnl": "broken", "size": 1.5}`), &payload)
	require.NoError(t, err)
	require.NotNil(t, payload.Pair)
	assert.Equal(t, "EURUSD", *payload.Pair)
	assert.False(t, payload.PnL.Valid)
	assert.True(t, payload.Size.Valid)
}

func TestTextUnmarshal(t *testing.T) {
	var payload TradePayload
	require.NoError(t, json.Unmarshal([]byte(`{"ticket": "T123", "account_id": 998877}`), &payload))
	require.True(t, payload.Ticket.Valid)
	assert.Equal(t, "T123", payload.Ticket.String)
	// numeric broker account numbers keep their textual form
	require.True(t, payload.BrokerAccount.Valid)
	assert.Equal(t, "998877", payload.BrokerAccount.String)

	var empty TradePayload
	require.NoError(t, json.Unmarshal([]byte(`{"ticket": null, "account_id": ""}`), &empty))
	assert.False(t, empty.Ticket.Valid)
	assert.False(t, empty.BrokerAccount.Valid)
}

func TestParseTime(t *testing.T) {
	rfc := "2024-01-02T10:00:00Z"
	parsed := parseTime(&rfc)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), *parsed)

	plain := "2024-01-02 10:00:00"
	parsed = parseTime(&plain)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), *parsed)

	bad := "yesterday"
	assert.Nil(t, parseTime(&bad))
	empty := "  "
	assert.Nil(t, parseTime(&empty))
	assert.Nil(t, parseTime(nil))
}

func TestNormalizeDefaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var payload TradePayload
	require.NoError(t, json.Unmarshal([]byte(`{"pair": "EURUSD"}`), &payload))

	trade := payload.normalize(7, "ctrader", now)
	assert.Equal(t, uint(7), trade.UserID)
	assert.Equal(t, models.TradeStatusClosed, trade.Status)
	assert.Equal(t, "ctrader", trade.Platform)
	assert.Equal(t, now, trade.Timestamp)
	assert.Nil(t, trade.Ticket)
	assert.Nil(t, trade.Entry)
}

func TestNormalizeExplicitFieldsWin(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var payload TradePayload
	body := `{"status": "opened", "platform": "mt5", "entry": "1.0850", "ticket": 42}`
	require.NoError(t, json.Unmarshal([]byte(body), &payload))

	trade := payload.normalize(1, "ctrader", now)
	assert.Equal(t, models.TradeStatusOpened, trade.Status)
	assert.Equal(t, "mt5", trade.Platform)
	require.NotNil(t, trade.Entry)
	assert.Equal(t, 1.0850, *trade.Entry)
	require.NotNil(t, trade.Ticket)
	assert.Equal(t, "42", *trade.Ticket)
}

func TestNormalizeTimestampPriority(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// close_time wins over open_time
	var both TradePayload
	require.NoError(t, json.Unmarshal([]byte(
		`{"open_time": "2024-01-01T09:00:00Z", "close_time": "2024-01-02T10:00:00Z"}`), &both))
	trade := both.normalize(1, "ctrader", now)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), trade.Timestamp)

	// open_time alone is used
	var openOnly TradePayload
	require.NoError(t, json.Unmarshal([]byte(`{"open_time": "2024-01-01T09:00:00Z"}`), &openOnly))
	trade = openOnly.normalize(1, "ctrader", now)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), trade.Timestamp)

	// neither falls back to arrival time
	var neither TradePayload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &neither))
	trade = neither.normalize(1, "ctrader", now)
	assert.Equal(t, now, trade.Timestamp)

	// an unparseable close_time is treated as absent
	var garbled TradePayload
	require.NoError(t, json.Unmarshal([]byte(
		`{"open_time": "2024-01-01T09:00:00Z", "close_time": "not a time"}`), &garbled))
	trade = garbled.normalize(1, "ctrader", now)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), trade.Timestamp)
}
