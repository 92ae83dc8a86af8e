package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradejournal/internal/models"
	"github.com/tradejournal/internal/repository"
)

func seedTrade(t *testing.T, repo *repository.TradeRepository, userID uint, pair string, pnl *float64, resultR *float64, ts time.Time) {
	t.Helper()
	trade := &models.Trade{
		UserID:    userID,
		Pair:      &pair,
		Platform:  "ctrader",
		Status:    models.TradeStatusClosed,
		PnL:       pnl,
		ResultR:   resultR,
		Timestamp: ts,
	}
	require.NoError(t, repo.Create(trade))
}

func f(v float64) *float64 { return &v }

func TestSummary(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTradeRepository(db)
	svc := NewStatsService(repo, nil)

	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC) // a Monday
	seedTrade(t, repo, 1, "EURUSD", f(50), f(2), base)
	seedTrade(t, repo, 1, "EURUSD", f(-25), f(-1), base.Add(time.Hour))
	seedTrade(t, repo, 1, "GBPUSD", f(100), nil, base.Add(24*time.Hour))
	// a pnl-less row counts toward totals but is neither win nor loss
	seedTrade(t, repo, 1, "GBPUSD", nil, nil, base.Add(48*time.Hour))

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalTrades)
	assert.Equal(t, 2, summary.Wins)
	assert.Equal(t, 1, summary.Losses)
	assert.InDelta(t, 50.0, summary.WinRate, 0.001)
	assert.InDelta(t, 125.0, summary.TotalPnL, 0.001)
	require.NotNil(t, summary.AverageR)
	assert.InDelta(t, 0.5, *summary.AverageR, 0.001)
	require.NotNil(t, summary.BestPnL)
	assert.Equal(t, 100.0, *summary.BestPnL)
	require.NotNil(t, summary.WorstPnL)
	assert.Equal(t, -25.0, *summary.WorstPnL)
}

func TestSummaryEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(repository.NewTradeRepository(db), nil)

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTrades)
	assert.Zero(t, summary.WinRate)
	assert.Nil(t, summary.AverageR)
	assert.Nil(t, summary.BestPnL)
}

func TestEquityCurveIsCumulative(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTradeRepository(db)
	svc := NewStatsService(repo, nil)

	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	seedTrade(t, repo, 1, "EURUSD", f(50), nil, base)
	seedTrade(t, repo, 1, "EURUSD", nil, nil, base.Add(time.Hour))
	seedTrade(t, repo, 1, "EURUSD", f(-20), nil, base.Add(2*time.Hour))

	points, err := svc.EquityCurve(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 50.0, points[0].Equity)
	assert.Equal(t, 30.0, points[1].Equity)
}

func TestPairBreakdown(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTradeRepository(db)
	svc := NewStatsService(repo, nil)

	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	seedTrade(t, repo, 1, "EURUSD", f(50), nil, base)
	seedTrade(t, repo, 1, "EURUSD", f(-25), nil, base.Add(time.Hour))
	seedTrade(t, repo, 1, "GBPUSD", f(10), nil, base.Add(2*time.Hour))

	stats, err := svc.PairBreakdown(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "EURUSD", stats[0].Pair)
	assert.Equal(t, 2, stats[0].Trades)
	assert.Equal(t, 1, stats[0].Wins)
	assert.InDelta(t, 25.0, stats[0].TotalPnL, 0.001)
	assert.Equal(t, "GBPUSD", stats[1].Pair)
}

func TestWeekdayBreakdownIsMondayFirst(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTradeRepository(db)
	svc := NewStatsService(repo, nil)

	monday := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	seedTrade(t, repo, 1, "EURUSD", f(50), nil, monday)
	seedTrade(t, repo, 1, "EURUSD", f(-10), nil, sunday)

	stats, err := svc.WeekdayBreakdown(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stats, 7)
	assert.Equal(t, "MON", stats[0].Weekday)
	assert.Equal(t, 1, stats[0].Trades)
	assert.InDelta(t, 50.0, stats[0].TotalPnL, 0.001)
	assert.Equal(t, "SUN", stats[6].Weekday)
	assert.Equal(t, 1, stats[6].Trades)
	assert.InDelta(t, -10.0, stats[6].TotalPnL, 0.001)
}

func TestCalendarCoversWholeMonth(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTradeRepository(db)
	svc := NewStatsService(repo, nil)

	seedTrade(t, repo, 1, "EURUSD", f(50), nil, time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC))
	seedTrade(t, repo, 1, "EURUSD", f(25), nil, time.Date(2024, 2, 15, 14, 0, 0, 0, time.UTC))
	// outside the requested month
	seedTrade(t, repo, 1, "EURUSD", f(999), nil, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	days, err := svc.Calendar(context.Background(), 1, 2024, time.February)
	require.NoError(t, err)
	require.Len(t, days, 29) // 2024 is a leap year

	assert.Equal(t, "2024-02-15", days[14].Date)
	assert.Equal(t, 2, days[14].Trades)
	assert.InDelta(t, 75.0, days[14].PnL, 0.001)

	assert.Equal(t, "2024-02-01", days[0].Date)
	assert.Zero(t, days[0].Trades)
}

func TestStatsAreScopedPerUser(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTradeRepository(db)
	svc := NewStatsService(repo, nil)

	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	seedTrade(t, repo, 1, "EURUSD", f(50), nil, base)
	seedTrade(t, repo, 2, "EURUSD", f(9999), nil, base)

	summary, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTrades)
	assert.InDelta(t, 50.0, summary.TotalPnL, 0.001)
}
