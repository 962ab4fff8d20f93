// Package report renders eligibility results for the console.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yourorg/airdrop-checker/internal/eligibility"
	"github.com/yourorg/airdrop-checker/internal/model"
)

const (
	passGlyph = "✅"
	failGlyph = "❌"
	banner    = "--- Airdrop Eligibility Report ---"
	footer    = "---------------------------------"
)

// RenderText renders the report as fixed-format text, one line per criterion
// in report order. The output depends only on the report.
func RenderText(r model.Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🚀 Checking Airdrop Eligibility for wallet: %s\n\n", r.Address))
	sb.WriteString(banner + "\n")
	for _, res := range r.Results() {
		sb.WriteString(fmt.Sprintf("%s %s\n", glyph(res.Met), describe(res)))
	}
	sb.WriteString(footer + "\n")

	return sb.String()
}

func describe(res model.EligibilityResult) string {
	switch res.Criterion {
	case model.CriterionWalletAge:
		return fmt.Sprintf("Wallet Age >= %d days (Actual: %d days)", eligibility.MinWalletAgeDays, res.Value)
	case model.CriterionTxCount:
		return fmt.Sprintf("Transaction Count >= %d (Actual: %d txs)", eligibility.MinTxCount, res.Value)
	case model.CriterionDeFiInteraction:
		return fmt.Sprintf("Interacted with %s (Actual: %s)", eligibility.RouterName, yesNo(res.Met))
	default:
		return string(res.Criterion)
	}
}

func glyph(met bool) string {
	if met {
		return passGlyph
	}
	return failGlyph
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// jsonCriterion is one entry of the JSON report.
type jsonCriterion struct {
	Criterion model.Criterion `json:"criterion"`
	Met       bool            `json:"met"`
	Threshold interface{}     `json:"threshold"`
	Value     interface{}     `json:"value"`
}

type jsonReport struct {
	Address       string          `json:"address"`
	CheckedAt     string          `json:"checked_at"`
	HistoryLength int             `json:"history_length"`
	Eligible      bool            `json:"eligible"`
	Criteria      []jsonCriterion `json:"criteria"`
}

// RenderJSON renders the report as an indented JSON document.
func RenderJSON(r model.Report) ([]byte, error) {
	out := jsonReport{
		Address:       r.Address,
		CheckedAt:     r.CheckedAt.UTC().Format(time.RFC3339),
		HistoryLength: r.HistoryLength,
		Eligible:      r.Eligible(),
	}

	for _, res := range r.Results() {
		c := jsonCriterion{Criterion: res.Criterion, Met: res.Met}
		switch res.Criterion {
		case model.CriterionWalletAge:
			c.Threshold = eligibility.MinWalletAgeDays
		case model.CriterionTxCount:
			c.Threshold = eligibility.MinTxCount
		case model.CriterionDeFiInteraction:
			c.Threshold = eligibility.RouterAddress
		}
		if res.Measured {
			c.Value = res.Value
		} else {
			c.Value = res.Met
		}
		out.Criteria = append(out.Criteria, c)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(data, '\n'), nil
}
