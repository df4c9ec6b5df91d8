package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// docExtract is the intermediate state the document-level scan folds into.
// One field per category; the merge into the draft Invoice happens once, in
// Parse.
type docExtract struct {
	subtotal      *decimal.Decimal
	taxes         map[string]decimal.Decimal
	taxSeen       map[string]bool
	grandTotal    *decimal.Decimal
	payment       *Payment
	lastAmount    *decimal.Decimal
	invoiceNumber string
	issueDate     string
	declaredCount int
}

// scanDocument runs the document-level extraction pass: one sequential fold
// over the normalized lines, top to bottom. For the monetary categories
// (subtotal, taxes, grand total, payment) every matching line overwrites the
// previously recorded value — receipts often reprint the total near the
// payment block, and the later, contextually final figure is treated as
// authoritative. Labels with no inline amount take the value from the
// following line.
func (p *Parser) scanDocument(lines []string) docExtract {
	st := docExtract{
		taxes:   map[string]decimal.Decimal{},
		taxSeen: map[string]bool{},
	}
	for i := range lines {
		p.foldLine(&st, lines, i)
	}
	return st
}

func (p *Parser) foldLine(st *docExtract, lines []string, i int) {
	line := lines[i]
	lower := strings.ToLower(line)

	// Carry-forward: the most recently observed monetary value is the
	// fallback payment amount when a payment line has none of its own.
	if amt, ok := parseAmount(line); ok {
		st.lastAmount = &amt
	}

	for _, pat := range datePatterns {
		if m := pat.FindString(line); m != "" {
			st.issueDate = m
			break
		}
	}

	if m := invoiceNumber.FindStringSubmatch(line); m != nil {
		st.invoiceNumber = m[1]
	}

	if m := declaredItemCount.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			st.declaredCount = n
		}
	}

	// Subtotal. A subtotal line is never a grand-total line.
	if subtotalKeyword.MatchString(lower) {
		if amt, ok := amountOn(lines, i); ok {
			st.subtotal = &amt
		}
		return
	}

	for _, tm := range p.taxMatchers {
		if !tm.alias.MatchString(line) {
			continue
		}
		if amt, ok := parseAmount(line); ok {
			st.taxes[tm.name] = amt
			st.taxSeen[tm.name] = true
		} else if tm.bareRe.MatchString(line) {
			if amt, ok := amountOn(lines, i); ok {
				st.taxes[tm.name] = amt
				st.taxSeen[tm.name] = true
			}
		}
	}

	if totalKeyword.MatchString(line) || bareTotalLabel.MatchString(line) {
		if amt, ok := amountOn(lines, i); ok && amt.IsPositive() {
			st.grandTotal = &amt
		}
	}

	if m := p.paymentLine.FindStringSubmatch(line); m != nil {
		mode := strings.ToUpper(m[1])
		if amt, ok := parseAmount(line); ok {
			st.payment = &Payment{Mode: mode, Amount: amt}
		} else if p.barePayment.MatchString(line) {
			amt, ok := amountOn(lines, i)
			if !ok && st.lastAmount != nil {
				amt = *st.lastAmount
			}
			st.payment = &Payment{Mode: mode, Amount: amt}
		}
	}
}
