// Package eligibility implements the airdrop criteria as pure functions over
// already-fetched chain data.
package eligibility

import (
	"time"

	"github.com/yourorg/airdrop-checker/internal/address"
	"github.com/yourorg/airdrop-checker/internal/model"
)

// Airdrop criteria constants.
const (
	MinTxCount       = 10
	MinWalletAgeDays = 90

	// RouterAddress is the Uniswap V2 Router 02 contract.
	RouterAddress = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	RouterName    = "Uniswap V2 Router"
)

const secondsPerDay = 24 * 60 * 60

// CheckWalletAge measures whole days since the first transaction. The
// history must be ascending; element 0 is taken as the first transaction.
// An empty history fails with age 0.
func CheckWalletAge(history model.TransactionHistory, now time.Time) model.EligibilityResult {
	first, ok := history.First()
	if !ok {
		return model.EligibilityResult{Criterion: model.CriterionWalletAge, Met: false, Value: 0, Measured: true}
	}

	age := floorDiv(int64(now.Sub(first.Time())/time.Second), secondsPerDay)
	return model.EligibilityResult{
		Criterion: model.CriterionWalletAge,
		Met:       age >= MinWalletAgeDays,
		Value:     age,
		Measured:  true,
	}
}

// CheckTxCount compares the node-reported transaction count with the minimum.
func CheckTxCount(count uint64) model.EligibilityResult {
	return model.EligibilityResult{
		Criterion: model.CriterionTxCount,
		Met:       count >= MinTxCount,
		Value:     int64(count),
		Measured:  true,
	}
}

// CheckDeFiInteraction reports whether any transaction was sent to the router.
// Contract-creation transactions have no destination and never match.
func CheckDeFiInteraction(history model.TransactionHistory) model.EligibilityResult {
	res := model.EligibilityResult{Criterion: model.CriterionDeFiInteraction}
	for _, tx := range history {
		if address.Equal(tx.To, RouterAddress) {
			res.Met = true
			break
		}
	}
	return res
}

// floorDiv divides rounding toward negative infinity, so a first transaction
// stamped slightly in the future yields -1 days rather than 0.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
