// Package model defines the core data structures for the airdrop checker.
package model

import (
	"time"
)

// Transaction is a single indexed transaction for an address.
// It is produced by the indexer and never modified afterwards.
type Transaction struct {
	Hash        string `json:"hash"`
	BlockNumber string `json:"block_number"`
	From        string `json:"from"`

	// To is empty for contract-creation transactions
	To string `json:"to"`

	// Timestamp is the block time in Unix seconds
	Timestamp int64 `json:"timestamp"`
}

// Time returns the transaction timestamp as an absolute time.
func (t Transaction) Time() time.Time {
	return time.Unix(t.Timestamp, 0)
}

// TransactionHistory is a list of transactions ordered oldest first.
// Consumers rely on element 0 being the account's first transaction.
type TransactionHistory []Transaction

// First returns the oldest transaction, or false for an empty history.
func (h TransactionHistory) First() (Transaction, bool) {
	if len(h) == 0 {
		return Transaction{}, false
	}
	return h[0], true
}

// IsAscending reports whether timestamps never decrease.
func (h TransactionHistory) IsAscending() bool {
	for i := 1; i < len(h); i++ {
		if h[i].Timestamp < h[i-1].Timestamp {
			return false
		}
	}
	return true
}

// Criterion identifies one eligibility rule.
type Criterion string

// Eligibility criteria, in report order.
const (
	CriterionWalletAge       Criterion = "wallet_age"
	CriterionTxCount         Criterion = "tx_count"
	CriterionDeFiInteraction Criterion = "defi_interaction"
)

// EligibilityResult is the outcome of one criterion.
type EligibilityResult struct {
	Criterion Criterion `json:"criterion"`
	Met       bool      `json:"met"`

	// Value is the measured quantity: age in days or transaction count.
	// Measured is false for boolean-only checks.
	Value    int64 `json:"value"`
	Measured bool  `json:"measured"`
}

// Report holds the three results for one evaluated address.
type Report struct {
	Address   string    `json:"address"`
	CheckedAt time.Time `json:"checked_at"`

	// HistoryLength is the number of indexer records the checks ran over
	HistoryLength int `json:"history_length"`

	WalletAge       EligibilityResult `json:"wallet_age"`
	TxCount         EligibilityResult `json:"tx_count"`
	DeFiInteraction EligibilityResult `json:"defi_interaction"`
}

// Results returns the criteria in fixed report order.
func (r Report) Results() []EligibilityResult {
	return []EligibilityResult{r.WalletAge, r.TxCount, r.DeFiInteraction}
}

// Eligible reports whether every criterion was met.
func (r Report) Eligible() bool {
	for _, res := range r.Results() {
		if !res.Met {
			return false
		}
	}
	return true
}
