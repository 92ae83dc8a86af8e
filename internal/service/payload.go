package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tradejournal/internal/models"
)

// Number is a tolerant numeric field for ingested payloads. It accepts
// JSON numbers and numeric strings; null, empty, or malformed values
// decode to "no value". It never fails a decode and never turns garbage
// into a zero, so one bad field cannot corrupt aggregate statistics or
// abort an otherwise valid submission.
type Number struct {
	Float64 float64
	Valid   bool
}

// UnmarshalJSON implements json.Unmarshaler. It always returns nil.
func (n *Number) UnmarshalJSON(data []byte) error {
	n.Float64, n.Valid = 0, false

	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	n.Float64, n.Valid = f, true
	return nil
}

// Ptr returns the value as a nullable pointer for persistence.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

// Text is a tolerant string field. Broker tickets and account numbers
// arrive quoted from some connectors and as bare numbers from others;
// both decode to the same string. Anything else decodes to "no value".
type Text struct {
	String string
	Valid  bool
}

// UnmarshalJSON implements json.Unmarshaler. It always returns nil.
func (t *Text) UnmarshalJSON(data []byte) error {
	t.String, t.Valid = "", false

	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		t.String, t.Valid = str, true
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return nil
	}
	t.String, t.Valid = num.String(), true
	return nil
}

// Ptr returns the value as a nullable pointer for persistence.
func (t Text) Ptr() *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// TradePayload is the wire shape of one ingested trade event. Every field
// is optional; unrecognized fields are ignored.
type TradePayload struct {
	Pair      *string `json:"pair"`
	Direction *string `json:"direction"`
	Entry     Number  `json:"entry"`
	ExitPrice Number  `json:"exit_price"`
	SL        Number  `json:"sl"`
	TP        Number  `json:"tp"`
	Size      Number  `json:"size"`

	TradeType     *string `json:"trade_type"`
	Platform      *string `json:"platform"`
	Strategy      *string `json:"strategy"`
	BrokerAccount Text    `json:"account_id"`
	Ticket        Text    `json:"ticket"`
	Status        *string `json:"status"`

	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`

	PnL           Number  `json:"pnl"`
	PnLPercentage Number  `json:"pnl_percentage"`
	ResultR       Number  `json:"result_r"`
	Notes         *string `json:"notes"`

	PnLCurrency *string `json:"pnl_currency"`
	Commission  Number  `json:"commission"`
	Swap        Number  `json:"swap"`
}

// timeLayouts covers the timestamp formats seen from connected bots.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// normalize turns the raw payload into a fully-typed trade record with
// every default applied:
//   - status defaults to "closed" (most integrations only report
//     completed trades)
//   - platform defaults to the configured primary integration
//   - the canonical timestamp is close time, else open time, else now
func (p *TradePayload) normalize(userID uint, defaultPlatform string, now time.Time) *models.Trade {
	status := models.TradeStatusClosed
	if p.Status != nil {
		if s := strings.TrimSpace(*p.Status); s != "" {
			status = models.TradeStatus(s)
		}
	}

	platform := defaultPlatform
	if p.Platform != nil {
		if s := strings.TrimSpace(*p.Platform); s != "" {
			platform = s
		}
	}

	openTime := parseTime(p.OpenTime)
	closeTime := parseTime(p.CloseTime)

	timestamp := now
	if closeTime != nil {
		timestamp = *closeTime
	} else if openTime != nil {
		timestamp = *openTime
	}

	return &models.Trade{
		UserID:        userID,
		Pair:          p.Pair,
		Direction:     p.Direction,
		Entry:         p.Entry.Ptr(),
		ExitPrice:     p.ExitPrice.Ptr(),
		SL:            p.SL.Ptr(),
		TP:            p.TP.Ptr(),
		Size:          p.Size.Ptr(),
		TradeType:     p.TradeType,
		Platform:      platform,
		Strategy:      p.Strategy,
		BrokerAccount: p.BrokerAccount.Ptr(),
		Ticket:        p.Ticket.Ptr(),
		Status:        status,
		OpenTime:      openTime,
		CloseTime:     closeTime,
		PnL:           p.PnL.Ptr(),
		PnLPercentage: p.PnLPercentage.Ptr(),
		ResultR:       p.ResultR.Ptr(),
		Notes:         p.Notes,
		PnLCurrency:   p.PnLCurrency,
		Commission:    p.Commission.Ptr(),
		Swap:          p.Swap.Ptr(),
		Timestamp:     timestamp,
	}
}
