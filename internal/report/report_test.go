package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/airdrop-checker/internal/model"
)

func passingReport() model.Report {
	return model.Report{
		Address:         "0x1111111111111111111111111111111111111111",
		CheckedAt:       time.Unix(1_750_000_000, 0),
		HistoryLength:   15,
		WalletAge:       model.EligibilityResult{Criterion: model.CriterionWalletAge, Met: true, Value: 120, Measured: true},
		TxCount:         model.EligibilityResult{Criterion: model.CriterionTxCount, Met: true, Value: 12, Measured: true},
		DeFiInteraction: model.EligibilityResult{Criterion: model.CriterionDeFiInteraction, Met: true},
	}
}

func TestRenderText_AllPass(t *testing.T) {
	want := "🚀 Checking Airdrop Eligibility for wallet: 0x1111111111111111111111111111111111111111\n" +
		"\n" +
		"--- Airdrop Eligibility Report ---\n" +
		"✅ Wallet Age >= 90 days (Actual: 120 days)\n" +
		"✅ Transaction Count >= 10 (Actual: 12 txs)\n" +
		"✅ Interacted with Uniswap V2 Router (Actual: yes)\n" +
		"---------------------------------\n"

	assert.Equal(t, want, RenderText(passingReport()))
}

func TestRenderText_Failures(t *testing.T) {
	r := passingReport()
	r.WalletAge = model.EligibilityResult{Criterion: model.CriterionWalletAge, Met: false, Value: 0, Measured: true}
	r.TxCount = model.EligibilityResult{Criterion: model.CriterionTxCount, Met: false, Value: 9, Measured: true}
	r.DeFiInteraction = model.EligibilityResult{Criterion: model.CriterionDeFiInteraction, Met: false}

	lines := strings.Split(strings.TrimSuffix(RenderText(r), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "❌ Wallet Age >= 90 days (Actual: 0 days)", lines[3])
	assert.Equal(t, "❌ Transaction Count >= 10 (Actual: 9 txs)", lines[4])
	assert.Equal(t, "❌ Interacted with Uniswap V2 Router (Actual: no)", lines[5])
}

func TestRenderText_Deterministic(t *testing.T) {
	r := passingReport()
	assert.Equal(t, RenderText(r), RenderText(r))
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(passingReport())
	require.NoError(t, err)

	var decoded struct {
		Address       string `json:"address"`
		CheckedAt     string `json:"checked_at"`
		HistoryLength int    `json:"history_length"`
		Eligible      bool   `json:"eligible"`
		Criteria      []struct {
			Criterion string      `json:"criterion"`
			Met       bool        `json:"met"`
			Threshold interface{} `json:"threshold"`
			Value     interface{} `json:"value"`
		} `json:"criteria"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, decoded.Eligible)
	assert.Equal(t, 15, decoded.HistoryLength)
	assert.Equal(t, "2025-06-15T15:06:40Z", decoded.CheckedAt)
	require.Len(t, decoded.Criteria, 3)

	assert.Equal(t, "wallet_age", decoded.Criteria[0].Criterion)
	assert.Equal(t, float64(90), decoded.Criteria[0].Threshold)
	assert.Equal(t, float64(120), decoded.Criteria[0].Value)

	assert.Equal(t, "tx_count", decoded.Criteria[1].Criterion)
	assert.Equal(t, float64(10), decoded.Criteria[1].Threshold)
	assert.Equal(t, float64(12), decoded.Criteria[1].Value)

	assert.Equal(t, "defi_interaction", decoded.Criteria[2].Criterion)
	assert.Equal(t, "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D", decoded.Criteria[2].Threshold)
	assert.Equal(t, true, decoded.Criteria[2].Value)
}
