package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeLines splits raw OCR text into trimmed, non-empty lines, preserving
// document order. Empty input yields an empty slice.
func NormalizeLines(text string) []string {
	if text == "" {
		return nil
	}
	raw := lineBreaks.Split(text, -1)
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

// parseAmount reads a monetary value from the end of a line. Receipts print
// amounts with either decimal separator and an optional dollar sign.
func parseAmount(line string) (decimal.Decimal, bool) {
	m := trailingAmount.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// amountOn returns the amount for a label at position i: inline on the label
// line itself, or alone on the following line.
func amountOn(lines []string, i int) (decimal.Decimal, bool) {
	if amt, ok := parseAmount(lines[i]); ok {
		return amt, true
	}
	if i+1 < len(lines) && bareAmount.MatchString(lines[i+1]) {
		return parseAmount(lines[i+1])
	}
	return decimal.Decimal{}, false
}
