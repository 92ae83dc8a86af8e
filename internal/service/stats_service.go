package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradejournal/internal/models"
	"github.com/tradejournal/internal/repository"
)

// weekdayLabels matches the dashboard's Monday-first week
var weekdayLabels = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// StatsService computes dashboard aggregates over a user's trades.
// The summary is cached in Redis with a short TTL and invalidated on
// every write; all other views are cheap enough to compute per request.
//
// Trades with a NULL pnl count toward totals but are neither wins nor
// losses, and contribute nothing to the equity curve. Normalization
// upstream guarantees a malformed pnl is NULL, never zero, which is what
// keeps these aggregates honest.
type StatsService struct {
	tradeRepo *repository.TradeRepository
	rdb       *redis.Client
	cacheTTL  time.Duration
}

// NewStatsService creates a new StatsService. rdb may be nil, in which
// case caching is disabled.
func NewStatsService(tradeRepo *repository.TradeRepository, rdb *redis.Client) *StatsService {
	return &StatsService{
		tradeRepo: tradeRepo,
		rdb:       rdb,
		cacheTTL:  60 * time.Second,
	}
}

// Summary is the headline dashboard block
type Summary struct {
	TotalTrades int      `json:"total_trades"`
	Wins        int      `json:"wins"`
	Losses      int      `json:"losses"`
	WinRate     float64  `json:"win_rate"`
	TotalPnL    float64  `json:"total_pnl"`
	AverageR    *float64 `json:"average_r"`
	BestPnL     *float64 `json:"best_pnl"`
	WorstPnL    *float64 `json:"worst_pnl"`
}

// EquityPoint is one step of the cumulative PnL curve
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// PairStat aggregates results per instrument
type PairStat struct {
	Pair     string  `json:"pair"`
	Trades   int     `json:"trades"`
	Wins     int     `json:"wins"`
	TotalPnL float64 `json:"total_pnl"`
}

// WeekdayStat aggregates results per weekday, Monday first
type WeekdayStat struct {
	Weekday  string  `json:"weekday"`
	Trades   int     `json:"trades"`
	TotalPnL float64 `json:"total_pnl"`
}

// CalendarDay is one cell of the monthly profit calendar
type CalendarDay struct {
	Date   string  `json:"date"`
	Trades int     `json:"trades"`
	PnL    float64 `json:"pnl"`
}

func summaryCacheKey(userID uint) string {
	return fmt.Sprintf("journal:stats:summary:%d", userID)
}

// Summary returns the cached headline stats for a user
func (s *StatsService) Summary(ctx context.Context, userID uint) (*Summary, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, summaryCacheKey(userID)).Bytes(); err == nil {
			var summary Summary
			if err := json.Unmarshal(cached, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	trades, err := s.tradeRepo.ListAllAscending(userID)
	if err != nil {
		return nil, err
	}

	summary := computeSummary(trades)

	if s.rdb != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.rdb.Set(ctx, summaryCacheKey(userID), data, s.cacheTTL).Err(); err != nil {
				log.Printf("[Stats] cache write failed for user %d: %v", userID, err)
			}
		}
	}

	return summary, nil
}

func computeSummary(trades []models.Trade) *Summary {
	summary := &Summary{TotalTrades: len(trades)}

	var rSum float64
	var rCount int
	for _, t := range trades {
		if t.PnL != nil {
			pnl := *t.PnL
			summary.TotalPnL += pnl
			if pnl > 0 {
				summary.Wins++
			} else if pnl < 0 {
				summary.Losses++
			}
			if summary.BestPnL == nil || pnl > *summary.BestPnL {
				v := pnl
				summary.BestPnL = &v
			}
			if summary.WorstPnL == nil || pnl < *summary.WorstPnL {
				v := pnl
				summary.WorstPnL = &v
			}
		}
		if t.ResultR != nil {
			rSum += *t.ResultR
			rCount++
		}
	}

	if summary.TotalTrades > 0 {
		summary.WinRate = float64(summary.Wins) / float64(summary.TotalTrades) * 100
	}
	if rCount > 0 {
		avg := rSum / float64(rCount)
		summary.AverageR = &avg
	}

	return summary
}

// EquityCurve returns the cumulative PnL over time, oldest first
func (s *StatsService) EquityCurve(ctx context.Context, userID uint) ([]EquityPoint, error) {
	trades, err := s.tradeRepo.ListAllAscending(userID)
	if err != nil {
		return nil, err
	}

	points := make([]EquityPoint, 0, len(trades))
	var running float64
	for _, t := range trades {
		if t.PnL == nil {
			continue
		}
		running += *t.PnL
		points = append(points, EquityPoint{Timestamp: t.Timestamp, Equity: running})
	}
	return points, nil
}

// PairBreakdown aggregates results per instrument. Trades without a pair
// are skipped.
func (s *StatsService) PairBreakdown(ctx context.Context, userID uint) ([]PairStat, error) {
	trades, err := s.tradeRepo.ListAllAscending(userID)
	if err != nil {
		return nil, err
	}

	byPair := make(map[string]*PairStat)
	order := make([]string, 0)
	for _, t := range trades {
		if t.Pair == nil || *t.Pair == "" {
			continue
		}
		stat, ok := byPair[*t.Pair]
		if !ok {
			stat = &PairStat{Pair: *t.Pair}
			byPair[*t.Pair] = stat
			order = append(order, *t.Pair)
		}
		stat.Trades++
		if t.PnL != nil {
			stat.TotalPnL += *t.PnL
			if *t.PnL > 0 {
				stat.Wins++
			}
		}
	}

	stats := make([]PairStat, 0, len(order))
	for _, pair := range order {
		stats = append(stats, *byPair[pair])
	}
	return stats, nil
}

// WeekdayBreakdown aggregates results per weekday of the canonical
// timestamp, Monday first
func (s *StatsService) WeekdayBreakdown(ctx context.Context, userID uint) ([]WeekdayStat, error) {
	trades, err := s.tradeRepo.ListAllAscending(userID)
	if err != nil {
		return nil, err
	}

	stats := make([]WeekdayStat, len(weekdayLabels))
	for i, label := range weekdayLabels {
		stats[i].Weekday = label
	}

	for _, t := range trades {
		// time.Weekday is Sunday-based; shift to Monday-first
		idx := (int(t.Timestamp.Weekday()) + 6) % 7
		stats[idx].Trades++
		if t.PnL != nil {
			stats[idx].TotalPnL += *t.PnL
		}
	}
	return stats, nil
}

// Calendar returns one cell per day of the given month with that day's
// trade count and summed PnL
func (s *StatsService) Calendar(ctx context.Context, userID uint, year int, month time.Month) ([]CalendarDay, error) {
	trades, err := s.tradeRepo.ListAllAscending(userID)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*CalendarDay)
	for _, t := range trades {
		ts := t.Timestamp.UTC()
		if ts.Year() != year || ts.Month() != month {
			continue
		}
		key := ts.Format("2006-01-02")
		day, ok := byDate[key]
		if !ok {
			day = &CalendarDay{Date: key}
			byDate[key] = day
		}
		day.Trades++
		if t.PnL != nil {
			day.PnL += *t.PnL
		}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	days := make([]CalendarDay, 0, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		key := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		if day, ok := byDate[key]; ok {
			days = append(days, *day)
		} else {
			days = append(days, CalendarDay{Date: key})
		}
	}
	return days, nil
}

// Invalidate drops the cached summary for a user. Called after every
// trade write; failures are logged and ignored.
func (s *StatsService) Invalidate(ctx context.Context, userID uint) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, summaryCacheKey(userID)).Err(); err != nil {
		log.Printf("[Stats] cache invalidation failed for user %d: %v", userID, err)
	}
}
