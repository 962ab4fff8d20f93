// Package validation checks fetched chain data against the preconditions the
// eligibility rules depend on.
package validation

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/airdrop-checker/internal/model"
)

// IndexerPageLimit is the largest page the Etherscan txlist endpoint returns.
// A page this size may be missing older or newer records.
const IndexerPageLimit = 10000

// NormalizeHistory enforces the ascending-timestamp precondition. Upstream
// order is kept when it already holds; otherwise the history is stable-sorted
// and the violation is logged. The input slice is never modified.
func NormalizeHistory(address string, history model.TransactionHistory) model.TransactionHistory {
	if len(history) >= IndexerPageLimit {
		logrus.WithFields(logrus.Fields{
			"address": address,
			"records": len(history),
		}).Warn("Indexer page is full; history may be truncated")
	}

	if history.IsAscending() {
		return history
	}

	sorted := make(model.TransactionHistory, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	logrus.WithFields(logrus.Fields{
		"address": address,
		"records": len(history),
	}).Warn("Indexer returned transactions out of order; sorted ascending")

	return sorted
}

// Inconsistency describes a disagreement between the indexer and the node.
type Inconsistency string

const (
	// ConsistencyOK means the two sources do not contradict each other.
	ConsistencyOK Inconsistency = ""

	// NonceWithoutHistory means the node reports sent transactions but the
	// indexer returned none.
	NonceWithoutHistory Inconsistency = "node reports outgoing transactions but indexer history is empty"

	// NonceAboveHistory means the node counts more sent transactions than the
	// indexer returned in total.
	NonceAboveHistory Inconsistency = "node transaction count exceeds indexed history length"
)

// CheckConsistency compares the indexed history length with the node's
// transaction count. The two sources stay independent: a mismatch is logged
// and returned but never changes a result. A count below the history length
// is normal, since the history also holds incoming transfers.
func CheckConsistency(address string, historyLen int, count uint64) Inconsistency {
	var issue Inconsistency
	switch {
	case historyLen == 0 && count > 0:
		issue = NonceWithoutHistory
	case historyLen > 0 && historyLen < IndexerPageLimit && count > uint64(historyLen):
		issue = NonceAboveHistory
	default:
		return ConsistencyOK
	}

	logrus.WithFields(logrus.Fields{
		"address":        address,
		"history_length": historyLen,
		"tx_count":       count,
	}).Warn(string(issue))

	return issue
}
