package service

import (
	"context"
	"errors"
	"time"

	"github.com/tradejournal/internal/models"
	"github.com/tradejournal/internal/repository"
	"github.com/tradejournal/internal/stream"
)

// SubmitMode reports how an ingested trade event was persisted
type SubmitMode string

const (
	SubmitInserted SubmitMode = "inserted"
	SubmitUpdated  SubmitMode = "updated"
)

// TradeService owns trade persistence: the reconciliation engine for
// bot-submitted events plus the dashboard's manual-entry and read paths.
type TradeService struct {
	tradeRepo       *repository.TradeRepository
	stats           *StatsService
	hub             *stream.Hub
	defaultPlatform string
}

// NewTradeService creates a new TradeService. stats and hub may be nil.
func NewTradeService(
	tradeRepo *repository.TradeRepository,
	stats *StatsService,
	hub *stream.Hub,
	defaultPlatform string,
) *TradeService {
	if defaultPlatform == "" {
		defaultPlatform = "ctrader"
	}
	return &TradeService{
		tradeRepo:       tradeRepo,
		stats:           stats,
		hub:             hub,
		defaultPlatform: defaultPlatform,
	}
}

// Submit decides insert-vs-update for one trade event and persists it,
// performing exactly one mutating statement.
//
// Only a "closed" event that carries a broker ticket is reconciled
// against the (user, ticket, platform) natural key: if a row exists it is
// updated in place, identified by its own row id so the natural key is
// not raced twice. Manual entries (no ticket) and "opened" events always
// insert; the matching "closed" event later finds and updates that row.
// Re-delivery of a "closed" event after a prior success therefore updates
// the same row instead of duplicating it.
func (s *TradeService) Submit(userID uint, payload *TradePayload) (SubmitMode, error) {
	trade := payload.normalize(userID, s.defaultPlatform, time.Now().UTC())

	if trade.Status == models.TradeStatusClosed && trade.Ticket != nil {
		existing, err := s.tradeRepo.FindByTicket(userID, *trade.Ticket, trade.Platform)
		if err != nil && !errors.Is(err, repository.ErrTradeNotFound) {
			return "", err
		}
		if existing != nil {
			if err := s.tradeRepo.UpdateByID(existing.ID, tradeValues(trade)); err != nil {
				return "", err
			}
			trade.ID = existing.ID
			s.afterWrite(userID, SubmitUpdated, trade)
			return SubmitUpdated, nil
		}
	}

	if err := s.tradeRepo.Create(trade); err != nil {
		return "", err
	}
	s.afterWrite(userID, SubmitInserted, trade)
	return SubmitInserted, nil
}

// tradeValues lists every normalized column plus the canonical timestamp
// for the update path. Nil entries deliberately overwrite with NULL: the
// closing event is the authoritative snapshot of the trade.
func tradeValues(t *models.Trade) map[string]interface{} {
	return map[string]interface{}{
		"pair":           t.Pair,
		"direction":      t.Direction,
		"entry":          t.Entry,
		"exit_price":     t.ExitPrice,
		"sl":             t.SL,
		"tp":             t.TP,
		"size":           t.Size,
		"trade_type":     t.TradeType,
		"platform":       t.Platform,
		"strategy":       t.Strategy,
		"account_id":     t.BrokerAccount,
		"ticket":         t.Ticket,
		"status":         t.Status,
		"open_time":      t.OpenTime,
		"close_time":     t.CloseTime,
		"pnl":            t.PnL,
		"pnl_percentage": t.PnLPercentage,
		"result_r":       t.ResultR,
		"notes":          t.Notes,
		"pnl_currency":   t.PnLCurrency,
		"commission":     t.Commission,
		"swap":           t.Swap,
		"timestamp":      t.Timestamp,
	}
}

func (s *TradeService) afterWrite(userID uint, mode SubmitMode, trade *models.Trade) {
	if s.stats != nil {
		s.stats.Invalidate(context.Background(), userID)
	}
	if s.hub != nil {
		s.hub.Publish(userID, stream.TradeEvent{
			Type:  "trade",
			Mode:  string(mode),
			Trade: trade,
		})
	}
}

// ManualTradeRequest is the dashboard's manual-entry form. Unlike bot
// payloads it is strict: a manual trade needs at least pair, direction
// and entry to be worth journaling.
type ManualTradeRequest struct {
	Pair      string   `json:"pair" binding:"required"`
	Direction string   `json:"direction" binding:"required,oneof=long short"`
	Entry     float64  `json:"entry" binding:"required"`
	ExitPrice *float64 `json:"exit_price"`
	SL        *float64 `json:"sl"`
	TP        *float64 `json:"tp"`
	Size      *float64 `json:"size"`

	TradeType *string `json:"trade_type"`
	Strategy  *string `json:"strategy"`
	Notes     *string `json:"notes"`

	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`

	PnL           *float64 `json:"pnl"`
	PnLPercentage *float64 `json:"pnl_percentage"`
	ResultR       *float64 `json:"result_r"`
	PnLCurrency   *string  `json:"pnl_currency"`
}

// CreateManual inserts a manually entered trade. Manual trades carry no
// broker ticket, so they never participate in reconciliation.
func (s *TradeService) CreateManual(userID uint, req *ManualTradeRequest) (*models.Trade, error) {
	now := time.Now().UTC()
	openTime := parseTime(req.OpenTime)
	closeTime := parseTime(req.CloseTime)

	timestamp := now
	if closeTime != nil {
		timestamp = *closeTime
	} else if openTime != nil {
		timestamp = *openTime
	}

	trade := &models.Trade{
		UserID:        userID,
		Pair:          &req.Pair,
		Direction:     &req.Direction,
		Entry:         &req.Entry,
		ExitPrice:     req.ExitPrice,
		SL:            req.SL,
		TP:            req.TP,
		Size:          req.Size,
		TradeType:     req.TradeType,
		Platform:      "manual",
		Strategy:      req.Strategy,
		Status:        models.TradeStatusClosed,
		OpenTime:      openTime,
		CloseTime:     closeTime,
		PnL:           req.PnL,
		PnLPercentage: req.PnLPercentage,
		ResultR:       req.ResultR,
		Notes:         req.Notes,
		PnLCurrency:   req.PnLCurrency,
		Timestamp:     timestamp,
	}

	if err := s.tradeRepo.Create(trade); err != nil {
		return nil, err
	}
	s.afterWrite(userID, SubmitInserted, trade)
	return trade, nil
}

// ListRecent returns the user's most recent trades by canonical
// timestamp. The limit is clamped to [1, 200] with a default of 50.
func (s *TradeService) ListRecent(userID uint, limit int) ([]models.Trade, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.tradeRepo.ListRecent(userID, limit)
}

// ListPaginated returns one dashboard page of trades, newest first
func (s *TradeService) ListPaginated(userID uint, page, pageSize int) ([]models.Trade, int64, error) {
	return s.tradeRepo.ListByUserPaginated(userID, page, pageSize)
}

// Delete removes one of the user's trades
func (s *TradeService) Delete(userID, tradeID uint) error {
	if err := s.tradeRepo.Delete(tradeID, userID); err != nil {
		return err
	}
	if s.stats != nil {
		s.stats.Invalidate(context.Background(), userID)
	}
	return nil
}
