package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Validator checks a parsed invoice for structural problems and arithmetic
// drift. Structural problems (no items, unusable dates) make the invoice
// invalid; arithmetic drift produces warnings with proposed corrections but
// leaves the invoice valid, since OCR noise in one digit should not block a
// review workflow.
type Validator struct {
	Cfg Config

	// Now supplies the clock for future-date checks. Tests pin it.
	Now func() time.Time
}

func NewValidator(cfg Config) *Validator {
	return &Validator{Cfg: cfg, Now: time.Now}
}

// Validate runs the default validator.
func Validate(inv Invoice) ValidationResult {
	return NewValidator(DefaultConfig()).Validate(inv)
}

func (v *Validator) Validate(inv Invoice) ValidationResult {
	var res ValidationResult

	v.checkStructure(inv, &res)
	v.checkArithmetic(inv, &res)
	v.checkPayment(inv, &res)

	res.IsValid = len(res.Errors) == 0
	return res
}

func (v *Validator) checkStructure(inv Invoice, res *ValidationResult) {
	if inv.Vendor.Name == "" {
		res.Errors = append(res.Errors, "vendor name is empty")
	}

	if len(inv.Items) == 0 {
		res.Errors = append(res.Errors, "no line items found")
	}
	for i, it := range inv.Items {
		if len(it.Description) < 2 {
			res.Errors = append(res.Errors, fmt.Sprintf("item %d: description too short", i+1))
		}
		if it.Quantity < 1 {
			res.Errors = append(res.Errors, fmt.Sprintf("item %d (%s): quantity must be at least 1", i+1, it.Description))
		}
		if !it.UnitPrice.IsPositive() {
			res.Errors = append(res.Errors, fmt.Sprintf("item %d (%s): unit price must be positive", i+1, it.Description))
		}
	}

	if inv.IssueDate == "" {
		res.Errors = append(res.Errors, "issue date is missing")
	} else if d, err := ParseIssueDate(inv.IssueDate); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("issue date %q is not in a recognized format", inv.IssueDate))
	} else if d.After(v.Now()) {
		res.Errors = append(res.Errors, fmt.Sprintf("issue date %s is in the future", d.Format("2006-01-02")))
	}
}

// checkArithmetic recomputes the money chain from the items up. Expected
// taxes come from the stored subtotal when one was printed, so that a
// single corrupted line item does not cascade into three corrections; the
// expected grand total, however, is anchored on the recomputed subtotal so
// that applying every proposed correction yields an invoice that validates
// cleanly on the next pass.
func (v *Validator) checkArithmetic(inv Invoice, res *ValidationResult) {
	if len(inv.Items) == 0 {
		return
	}
	tol := v.Cfg.Tolerance

	computed := decimal.Zero
	for _, it := range inv.Items {
		computed = computed.Add(it.LineTotal)
	}
	computed = computed.Round(2)

	taxBase := computed
	if inv.Subtotal != nil {
		taxBase = *inv.Subtotal
		if diff := inv.Subtotal.Sub(computed).Abs(); diff.GreaterThan(tol) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"subtotal %s does not match the sum of items %s",
				inv.Subtotal.StringFixed(2), computed.StringFixed(2)))
			res.Corrections = append(res.Corrections, Correction{
				Target:    TargetSubtotal,
				Original:  *inv.Subtotal,
				Corrected: computed,
				Reason:    "sum of item line totals",
			})
		}
	}

	expectedTotal := computed
	for _, tc := range v.Cfg.TaxCodes {
		expected := taxBase.Mul(tc.Rate).Round(2)
		expectedTotal = expectedTotal.Add(expected)

		stored, ok := inv.Taxes[tc.Name]
		if !ok {
			continue
		}
		if diff := stored.Sub(expected).Abs(); diff.GreaterThan(tol) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s %s does not match the expected %s (%s%% of %s)",
				tc.Name, stored.StringFixed(2), expected.StringFixed(2),
				tc.Rate.Mul(decimal.NewFromInt(100)).String(), taxBase.StringFixed(2)))
			res.Corrections = append(res.Corrections, Correction{
				Target:    TargetTax,
				TaxName:   tc.Name,
				Original:  stored,
				Corrected: expected,
				Reason:    fmt.Sprintf("recomputed at the %s%% rate", tc.Rate.Mul(decimal.NewFromInt(100)).String()),
			})
		}
	}

	if inv.GrandTotal != nil {
		if diff := inv.GrandTotal.Sub(expectedTotal).Abs(); diff.GreaterThan(tol) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"grand total %s does not match the expected %s",
				inv.GrandTotal.StringFixed(2), expectedTotal.StringFixed(2)))
			res.Corrections = append(res.Corrections, Correction{
				Target:    TargetGrandTotal,
				Original:  *inv.GrandTotal,
				Corrected: expectedTotal,
				Reason:    "subtotal plus expected taxes",
			})
		}
	}
}

func (v *Validator) checkPayment(inv Invoice, res *ValidationResult) {
	if inv.Payment == nil || inv.Payment.Mode == UnknownPaymentMode {
		return
	}
	for _, m := range v.Cfg.PaymentModes {
		if inv.Payment.Mode == m {
			return
		}
	}
	res.Warnings = append(res.Warnings, fmt.Sprintf("unrecognized payment mode %q", inv.Payment.Mode))
}
