package core

// ApplyCorrections returns a copy of the invoice with every proposed
// correction applied. The input invoice is not modified; a second validation
// pass over the result produces no arithmetic warnings.
func ApplyCorrections(inv Invoice, res ValidationResult) Invoice {
	out := inv.Clone()
	for _, c := range res.Corrections {
		switch c.Target {
		case TargetSubtotal:
			v := c.Corrected
			out.Subtotal = &v
		case TargetTax:
			if out.Taxes == nil {
				out.Taxes = TaxBreakdown{}
			}
			out.Taxes[c.TaxName] = c.Corrected
		case TargetGrandTotal:
			v := c.Corrected
			out.GrandTotal = &v
		}
	}
	return out
}
