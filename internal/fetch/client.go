// Package fetch provides the remote clients that supply chain data for an
// address: an Etherscan-compatible indexer and an Ethereum JSON-RPC node.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// Error classes surfaced to the orchestrator. Both abort the run.
var (
	// ErrNetwork covers transport failures and non-success HTTP or RPC replies.
	ErrNetwork = errors.New("network error")

	// ErrAPI covers well-delivered responses whose payload is unusable.
	ErrAPI = errors.New("api error")
)

// NewHTTPClient builds the HTTP client shared by both fetchers. Requests are
// sent exactly once: the retrying transport is kept for its logging hooks
// but RetryMax is zero and failed responses are passed straight through.
func NewHTTPClient(timeout time.Duration) *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.CheckRetry = noRetry
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = leveledLogger{entry: logrus.WithField("component", "http")}
	c.HTTPClient.Timeout = timeout
	return c.StandardClient()
}

// noRetry never asks for another attempt and reports the transport error as is.
func noRetry(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, err
}

// leveledLogger adapts logrus to retryablehttp.LeveledLogger.
type leveledLogger struct {
	entry *logrus.Entry
}

func (l leveledLogger) with(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		switch v := keysAndValues[i+1].(type) {
		case error:
			fields[key] = redactAPIKey(v)
		case *url.URL, string:
			fields[key] = redactURL(fmt.Sprint(v))
		default:
			fields[key] = v
		}
	}
	return l.entry.WithFields(fields)
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Error(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Info(msg)
}

// Debug is where retryablehttp reports every outgoing request.
func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Debug(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.with(keysAndValues).Warn(msg)
}

// redactAPIKey masks the apikey query parameter in every *url.Error on the
// chain; net/http embeds the full request URL in transport errors.
func redactAPIKey(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if uerr, ok := e.(*url.Error); ok {
			uerr.URL = redactURL(uerr.URL)
		}
	}
	return err
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	q := u.Query()
	if !q.Has("apikey") {
		return raw
	}
	q.Set("apikey", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
