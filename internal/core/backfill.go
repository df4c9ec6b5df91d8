package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// backfill fills the monetary fields the document scan could not extract,
// using what was extracted plus the merchant's tax profile. Every computed
// value is flagged with a warning so callers can tell extraction from
// inference.
func (p *Parser) backfill(inv *Invoice, merchant *Merchant, doc docExtract) {
	if inv.Subtotal == nil && len(inv.Items) > 0 {
		sum := decimal.Zero
		for _, it := range inv.Items {
			sum = sum.Add(it.LineTotal)
		}
		sum = sum.Round(2)
		inv.Subtotal = &sum
		inv.Metadata.Warnings = append(inv.Metadata.Warnings, "subtotal computed from items")
	}

	if merchant != nil && len(merchant.TaxProfile) > 0 && inv.Subtotal != nil {
		for _, name := range p.cfg.taxNames() {
			if doc.taxSeen[name] {
				continue
			}
			rate, ok := merchant.TaxProfile[name]
			if !ok {
				continue
			}
			inv.Taxes[name] = inv.Subtotal.Mul(rate).Round(2)
			inv.Metadata.Warnings = append(inv.Metadata.Warnings,
				fmt.Sprintf("%s computed at the standard %s%% rate", name, rate.Mul(decimal.NewFromInt(100))))
		}
	}

	if inv.GrandTotal == nil && inv.Subtotal != nil {
		total := *inv.Subtotal
		for _, amt := range inv.Taxes {
			total = total.Add(amt)
		}
		total = total.Round(2)
		inv.GrandTotal = &total
		inv.Metadata.Warnings = append(inv.Metadata.Warnings, "grand total computed from subtotal and taxes")
	}
}
