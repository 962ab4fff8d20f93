package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/airdrop-checker/internal/model"
	"github.com/yourorg/airdrop-checker/internal/otel"
	"github.com/yourorg/airdrop-checker/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Block range covering the whole chain.
const (
	startBlock = "0"
	endBlock   = "99999999"
)

// IndexerClient fetches transaction history from an Etherscan-compatible
// account API.
type IndexerClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewIndexerClient creates a new indexer client
func NewIndexerClient(baseURL, apiKey string, httpClient *http.Client) *IndexerClient {
	return &IndexerClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// txRecord matches one element of the txlist result array. All numeric
// fields arrive as decimal strings.
type txRecord struct {
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// FetchHistory returns the first page of transactions for address, oldest
// first. An address with no transactions yields an empty history.
func (c *IndexerClient) FetchHistory(ctx context.Context, address string) (model.TransactionHistory, error) {
	ctx, span := otel.Tracer().Start(ctx, "indexer.txlist",
		trace.WithAttributes(attribute.String("wallet.address", address)))
	defer span.End()

	history, err := c.fetchHistory(ctx, address)
	if err != nil {
		otel.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("history.length", len(history)))
	return history, nil
}

func (c *IndexerClient) fetchHistory(ctx context.Context, address string) (model.TransactionHistory, error) {
	reqURL, err := c.txListURL(address)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid indexer url: %w", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error creating request: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	logrus.WithField("address", address).Debug("Fetching transaction history from indexer")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error fetching transaction history: %w", ErrNetwork, redactAPIKey(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading indexer response: %w", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: indexer API error: status %d, body: %s", ErrNetwork, resp.StatusCode, truncate(body))
	}

	records, err := decodeTxList(body)
	if err != nil {
		return nil, err
	}

	history := make(model.TransactionHistory, 0, len(records))
	for _, r := range records {
		ts, err := strconv.ParseInt(r.TimeStamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %s has malformed timestamp %q", ErrAPI, r.Hash, r.TimeStamp)
		}
		history = append(history, model.Transaction{
			Hash:        r.Hash,
			BlockNumber: r.BlockNumber,
			From:        r.From,
			To:          r.To,
			Timestamp:   ts,
		})
	}

	logrus.WithFields(logrus.Fields{
		"address": address,
		"records": len(history),
	}).Debug("Received transaction history")

	return validation.NormalizeHistory(address, history), nil
}

func (c *IndexerClient) txListURL(address string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", startBlock)
	q.Set("endblock", endBlock)
	q.Set("sort", "asc")
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// decodeTxList unpacks the Etherscan envelope. The result field is an array
// on success and a plain string carrying the error text otherwise.
func decodeTxList(body []byte) ([]txRecord, error) {
	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: error decoding response: %w", ErrAPI, err)
	}

	raw := bytes.TrimSpace(envelope.Result)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: response has no result field (status %q, message %q)", ErrAPI, envelope.Status, envelope.Message)
	}

	switch raw[0] {
	case '[':
		var records []txRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("%w: error decoding transaction list: %w", ErrAPI, err)
		}
		return records, nil
	case '"':
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("%w: error decoding result message: %w", ErrAPI, err)
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrAPI, envelope.Message, msg)
	default:
		return nil, fmt.Errorf("%w: unexpected result type in response: %s", ErrAPI, truncate(raw))
	}
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
