package checker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/airdrop-checker/internal/config"
	"github.com/yourorg/airdrop-checker/internal/fetch"
	"github.com/yourorg/airdrop-checker/internal/metrics"
	"github.com/yourorg/airdrop-checker/internal/model"
)

const (
	testAddress = "0x1111111111111111111111111111111111111111"
	day         = int64(24 * 60 * 60)
)

var fixedNow = time.Unix(1_750_000_000, 0)

type fakeHistory struct {
	history model.TransactionHistory
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeHistory) FetchHistory(ctx context.Context, address string) (model.TransactionHistory, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.history, f.err
}

type fakeCount struct {
	count uint64
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeCount) FetchCount(ctx context.Context, address string) (uint64, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.count, f.err
}

func testConfig() config.Config {
	return config.Config{RPCURL: "http://rpc", APIKey: "key", WalletAddress: testAddress}
}

// eligibleHistory returns 15 transactions, the oldest 120 days before now,
// one of them sent to the router with swapped case.
func eligibleHistory() model.TransactionHistory {
	start := fixedNow.Unix() - 120*day
	h := make(model.TransactionHistory, 0, 15)
	for i := 0; i < 15; i++ {
		to := "0x2222222222222222222222222222222222222222"
		if i == 9 {
			to = "0x7A250D5630b4Cf539739Df2c5DaCB4C659f2488d"
		}
		h = append(h, model.Transaction{
			Hash:      fmt.Sprintf("0x%02x", i),
			From:      testAddress,
			To:        to,
			Timestamp: start + int64(i)*3600,
		})
	}
	return h
}

func TestRun_EndToEndEligible(t *testing.T) {
	history := &fakeHistory{history: eligibleHistory()}
	counter := &fakeCount{count: 12}

	c := New(testConfig(), history, counter, WithClock(func() time.Time { return fixedNow }))
	report, err := c.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, testAddress, report.Address)
	assert.Equal(t, 15, report.HistoryLength)
	assert.Equal(t, fixedNow, report.CheckedAt)

	assert.True(t, report.WalletAge.Met)
	assert.Equal(t, int64(120), report.WalletAge.Value)
	assert.True(t, report.TxCount.Met)
	assert.Equal(t, int64(12), report.TxCount.Value)
	assert.True(t, report.DeFiInteraction.Met)
	assert.True(t, report.Eligible())

	assert.Equal(t, int32(1), history.calls.Load())
	assert.Equal(t, int32(1), counter.calls.Load())
}

func TestRun_IneligibleIsNotAnError(t *testing.T) {
	c := New(testConfig(), &fakeHistory{history: model.TransactionHistory{}}, &fakeCount{count: 0},
		WithClock(func() time.Time { return fixedNow }))

	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Eligible())
	assert.Equal(t, int64(0), report.WalletAge.Value)
	assert.False(t, report.DeFiInteraction.Met)
}

func TestRun_FetchFailuresProduceNoReport(t *testing.T) {
	historyErr := fmt.Errorf("%w: indexer API error: status 502", fetch.ErrNetwork)
	payloadErr := fmt.Errorf("%w: NOTOK: Invalid API Key", fetch.ErrAPI)
	countErr := fmt.Errorf("%w: eth_getTransactionCount: connection refused", fetch.ErrNetwork)

	tests := []struct {
		name     string
		history  *fakeHistory
		counter  *fakeCount
		wantErr  error
		contains []string
	}{
		{
			name:     "history network failure, count succeeds",
			history:  &fakeHistory{err: historyErr},
			counter:  &fakeCount{count: 50},
			wantErr:  fetch.ErrNetwork,
			contains: []string{"fetch transaction history", "status 502"},
		},
		{
			name:     "history malformed payload",
			history:  &fakeHistory{err: payloadErr},
			counter:  &fakeCount{count: 50},
			wantErr:  fetch.ErrAPI,
			contains: []string{"Invalid API Key"},
		},
		{
			name:     "count failure, history succeeds",
			history:  &fakeHistory{history: eligibleHistory()},
			counter:  &fakeCount{err: countErr},
			wantErr:  fetch.ErrNetwork,
			contains: []string{"fetch transaction count", "connection refused"},
		},
		{
			name:     "both fail",
			history:  &fakeHistory{err: payloadErr},
			counter:  &fakeCount{err: countErr},
			wantErr:  fetch.ErrAPI,
			contains: []string{"Invalid API Key", "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(testConfig(), tt.history, tt.counter)

			report, err := c.Run(context.Background())
			require.Error(t, err)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, tt.wantErr)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestRun_FetchesConcurrently(t *testing.T) {
	history := &fakeHistory{history: eligibleHistory(), delay: 150 * time.Millisecond}
	counter := &fakeCount{count: 12, delay: 150 * time.Millisecond}

	start := time.Now()
	_, err := New(testConfig(), history, counter).Run(context.Background())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 290*time.Millisecond)
}

func TestRun_RecordsMetrics(t *testing.T) {
	rec := metrics.NewRecorder()
	c := New(testConfig(), &fakeHistory{history: eligibleHistory()}, &fakeCount{count: 12},
		WithClock(func() time.Time { return fixedNow }), WithMetrics(rec))

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	// 2 fetch histograms + 3 criteria + 5 single gauges
	count, err := testutil.GatherAndCount(rec.Gatherer())
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestRun_FailureRecordsFetchErrorOnly(t *testing.T) {
	rec := metrics.NewRecorder()
	c := New(testConfig(), &fakeHistory{err: errors.New("boom")}, &fakeCount{count: 1}, WithMetrics(rec))

	_, err := c.Run(context.Background())
	require.Error(t, err)

	fetchErrors, err := testutil.GatherAndCount(rec.Gatherer(), "airdrop_fetch_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, fetchErrors)

	criteria, err := testutil.GatherAndCount(rec.Gatherer(), "airdrop_criterion_met")
	require.NoError(t, err)
	assert.Zero(t, criteria)
}
