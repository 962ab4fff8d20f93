// Package checker drives a single eligibility run: it fetches history and
// transaction count concurrently, evaluates each criterion as soon as its
// input arrives, and returns a complete report or an error, never both.
package checker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/airdrop-checker/internal/config"
	"github.com/yourorg/airdrop-checker/internal/eligibility"
	"github.com/yourorg/airdrop-checker/internal/metrics"
	"github.com/yourorg/airdrop-checker/internal/model"
	"github.com/yourorg/airdrop-checker/internal/otel"
	"github.com/yourorg/airdrop-checker/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HistoryFetcher returns the ascending transaction history of an address.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, address string) (model.TransactionHistory, error)
}

// CountFetcher returns the number of transactions sent by an address.
type CountFetcher interface {
	FetchCount(ctx context.Context, address string) (uint64, error)
}

// Checker evaluates one configured wallet.
type Checker struct {
	cfg     config.Config
	history HistoryFetcher
	counter CountFetcher
	now     func() time.Time
	metrics *metrics.Recorder
}

// Option configures a Checker.
type Option func(*Checker)

// WithClock overrides the time source used for the wallet-age check.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// WithMetrics records fetch timings and results into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Checker) {
		c.metrics = r
	}
}

// New creates a Checker. The configuration must already be validated.
func New(cfg config.Config, history HistoryFetcher, counter CountFetcher, opts ...Option) *Checker {
	c := &Checker{
		cfg:     cfg,
		history: history,
		counter: counter,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run performs the evaluation. Both fetches start immediately; the age and
// DeFi checks start once the history arrives and the count check once the
// count arrives. If either fetch fails the returned report is nil.
func (c *Checker) Run(ctx context.Context) (*model.Report, error) {
	addr := c.cfg.WalletAddress

	ctx, span := otel.Tracer().Start(ctx, "checker.run",
		trace.WithAttributes(attribute.String("wallet.address", addr)))
	defer span.End()

	now := c.now()
	report := model.Report{Address: addr, CheckedAt: now}

	var (
		wg         sync.WaitGroup
		historyErr error
		countErr   error
		count      uint64
	)

	wg.Add(2)
	go func() {
		defer wg.Done()

		start := time.Now()
		history, err := c.history.FetchHistory(ctx, addr)
		c.observe(metrics.SourceIndexer, start, err)
		if err != nil {
			historyErr = fmt.Errorf("fetch transaction history: %w", err)
			return
		}

		report.HistoryLength = len(history)

		var checks sync.WaitGroup
		checks.Add(2)
		go func() {
			defer checks.Done()
			report.WalletAge = eligibility.CheckWalletAge(history, now)
		}()
		go func() {
			defer checks.Done()
			report.DeFiInteraction = eligibility.CheckDeFiInteraction(history)
		}()
		checks.Wait()
	}()

	go func() {
		defer wg.Done()

		start := time.Now()
		n, err := c.counter.FetchCount(ctx, addr)
		c.observe(metrics.SourceRPC, start, err)
		if err != nil {
			countErr = fmt.Errorf("fetch transaction count: %w", err)
			return
		}

		count = n
		report.TxCount = eligibility.CheckTxCount(n)
	}()

	wg.Wait()

	if err := errors.Join(historyErr, countErr); err != nil {
		otel.RecordError(ctx, err)
		return nil, err
	}

	validation.CheckConsistency(addr, report.HistoryLength, count)

	if c.metrics != nil {
		c.metrics.RecordReport(report)
	}

	logrus.WithFields(logrus.Fields{
		"address":          addr,
		"eligible":         report.Eligible(),
		"wallet_age_days":  report.WalletAge.Value,
		"tx_count":         report.TxCount.Value,
		"defi_interaction": report.DeFiInteraction.Met,
	}).Info("Eligibility evaluated")

	span.SetAttributes(attribute.Bool("wallet.eligible", report.Eligible()))
	return &report, nil
}

func (c *Checker) observe(source string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.ObserveFetch(source, time.Since(start), err)
	}
}
