// Package output provides utilities for formatting and displaying analysis results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/proformatools/proforma/internal/engine"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rendering of the analysis.
func PrettyFormat(w io.Writer, analysis *engine.Analysis) error {
	p := message.NewPrinter(language.English)

	if _, err := p.Fprintf(w, "--- Results for scenario %s ---\n", analysis.Scenario); err != nil {
		return err
	}

	m := analysis.Metrics
	p.Fprintf(w, "NPV:                  $%.2f\n", m.NPV)
	if m.IRR != nil {
		p.Fprintf(w, "IRR:                  %.2f%%\n", *m.IRR*100)
	} else {
		p.Fprintf(w, "IRR:                  undefined\n")
	}
	if m.PaybackYears != nil {
		p.Fprintf(w, "Payback:              %.1f years\n", *m.PaybackYears)
	} else {
		p.Fprintf(w, "Payback:              never\n")
	}
	if m.DiscountedPaybackYears != nil {
		p.Fprintf(w, "Discounted payback:   %.1f years\n", *m.DiscountedPaybackYears)
	} else {
		p.Fprintf(w, "Discounted payback:   never\n")
	}
	p.Fprintf(w, "Profitability index:  %.3f\n", m.ProfitabilityIndex)
	p.Fprintf(w, "Terminal value:       $%.2f\n", m.TerminalValue)

	if len(analysis.Tornado) > 0 {
		p.Fprintf(w, "\n--- Sensitivity (NPV swing, largest first) ---\n")
		p.Fprintf(w, "Variable             | Low NPV        | High NPV       | Swing\n")
		p.Fprintf(w, "________             | _______        | ________       | _____\n")
		for _, row := range analysis.Tornado {
			p.Fprintf(w, "%-20s | $%.2f | $%.2f | $%.2f\n", row.Variable, row.LowNPV, row.HighNPV, row.Swing)
		}
	}

	if mc := analysis.MonteCarlo; mc != nil {
		p.Fprintf(w, "\n--- Monte Carlo (%d trials, seed %d) ---\n", mc.Valid, mc.Seed)
		p.Fprintf(w, "Mean NPV:             $%.2f\n", mc.MeanNPV)
		p.Fprintf(w, "Std dev NPV:          $%.2f\n", mc.StdDevNPV)
		p.Fprintf(w, "P(NPV > 0):           %.1f%%\n", mc.ProbPositive*100)
		p.Fprintf(w, "P10 / P50 / P90:      $%.2f / $%.2f / $%.2f\n",
			mc.Percentiles.P10, mc.Percentiles.P50, mc.Percentiles.P90)
		if mc.IRR != nil && mc.IRR.Defined > 0 {
			p.Fprintf(w, "Mean IRR:             %.2f%% (%d trials with defined IRR)\n", mc.IRR.Mean*100, mc.IRR.Defined)
		}
		if mc.Excluded > 0 {
			p.Fprintf(w, "Excluded trials:      %d\n", mc.Excluded)
		}
		if mc.Clamped > 0 {
			p.Fprintf(w, "Clamped draws:        %d\n", mc.Clamped)
		}
	}

	if len(analysis.Notes) > 0 {
		p.Fprintf(w, "\n--- Notes ---\n")
		for _, note := range analysis.Notes {
			p.Fprintf(w, "- %s\n", note)
		}
	}

	if len(analysis.CashFlows) > 0 {
		p.Fprintf(w, "\n--- Cash flows ---\n")
		p.Fprintf(w, "Period | Phase          | Net            | Cumulative\n")
		p.Fprintf(w, "______ | _____          | ___            | __________\n")
		for _, cf := range analysis.CashFlows {
			p.Fprintf(w, "%6d | %-14s | $%.2f | $%.2f\n", cf.Period, cf.Phase, cf.Net, cf.Cumulative)
		}
	}
	return nil
}

// CsvFormat writes the period-by-period cash flow table in comma-separated
// value format.
func CsvFormat(w io.Writer, analysis *engine.Analysis) error {
	cw := csv.NewWriter(w)

	header := []string{"period", "phase", "revenue", "expenses", "taxes", "capex", "net", "cumulative"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, cf := range analysis.CashFlows {
		record := []string{
			strconv.Itoa(cf.Period),
			string(cf.Phase),
			formatAmount(cf.Revenue),
			formatAmount(cf.Expenses),
			formatAmount(cf.Taxes),
			formatAmount(cf.CapEx),
			formatAmount(cf.Net),
			formatAmount(cf.Cumulative),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat writes the complete analysis as indented JSON.
func JSONFormat(w io.Writer, analysis *engine.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(analysis)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
