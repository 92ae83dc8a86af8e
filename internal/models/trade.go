package models

import (
	"time"
)

// TradeStatus represents the lifecycle state of a trade
type TradeStatus string

const (
	TradeStatusOpened TradeStatus = "opened"
	TradeStatusClosed TradeStatus = "closed"
)

// Trade represents one logged position belonging to a user. Bot-submitted
// trades carry a broker ticket; (user_id, ticket, platform) is the natural
// key used to match a closing event to its earlier opening event. Manually
// entered trades have no ticket and are never matched.
//
// Numeric fields are pointers: an absent or malformed value on the wire is
// stored as NULL, never as zero, so aggregate statistics stay honest.
type Trade struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index;index:idx_trades_ticket_lookup" json:"user_id"`

	Pair      *string  `gorm:"size:30" json:"pair"`
	Direction *string  `gorm:"size:10" json:"direction"`
	Entry     *float64 `gorm:"type:decimal(20,8)" json:"entry"`
	ExitPrice *float64 `gorm:"type:decimal(20,8)" json:"exit_price"`
	SL        *float64 `gorm:"type:decimal(20,8)" json:"sl"`
	TP        *float64 `gorm:"type:decimal(20,8)" json:"tp"`
	Size      *float64 `gorm:"type:decimal(20,8)" json:"size"`

	TradeType      *string     `gorm:"size:50" json:"trade_type"`
	Platform       string      `gorm:"size:30;not null;index:idx_trades_ticket_lookup" json:"platform"`
	Strategy       *string     `gorm:"size:100" json:"strategy"`
	BrokerAccount  *string     `gorm:"column:account_id;size:64" json:"account_id"`
	Ticket         *string     `gorm:"size:64;index:idx_trades_ticket_lookup" json:"ticket"`
	Status         TradeStatus `gorm:"size:16" json:"status"`

	OpenTime  *time.Time `json:"open_time"`
	CloseTime *time.Time `json:"close_time"`

	PnL           *float64 `gorm:"column:pnl;type:decimal(20,8)" json:"pnl"`
	PnLPercentage *float64 `gorm:"column:pnl_percentage;type:decimal(20,8)" json:"pnl_percentage"`
	ResultR       *float64 `gorm:"type:decimal(20,8)" json:"result_r"`
	Notes         *string  `gorm:"type:text" json:"notes"`

	PnLCurrency *string  `gorm:"column:pnl_currency;size:10" json:"pnl_currency"`
	Commission  *float64 `gorm:"type:decimal(20,8)" json:"commission"`
	Swap        *float64 `gorm:"type:decimal(20,8)" json:"swap"`

	// Timestamp is the canonical display time every aggregate view sorts
	// and groups by: close time if known, else open time, else arrival.
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Trade model
func (Trade) TableName() string {
	return "trades"
}
