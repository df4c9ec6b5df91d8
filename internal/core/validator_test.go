package core_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"receipt-engine/internal/core"
)

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// newTestValidator pins the clock so future-date checks are stable.
func newTestValidator() *core.Validator {
	v := core.NewValidator(core.DefaultConfig())
	v.Now = func() time.Time {
		return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
	return v
}

// consistentInvoice is arithmetically clean: items sum to the subtotal, both
// taxes sit exactly at the regional rates, and the grand total closes.
func consistentInvoice() core.Invoice {
	return core.Invoice{
		Vendor: core.Vendor{Name: "L'Imaginaire"},
		Items: []core.LineItem{
			{Description: "JEU DE SOCIETE", Quantity: 2, UnitPrice: d("30.00"), LineTotal: d("60.00")},
			{Description: "CASSE-TETE", Quantity: 1, UnitPrice: d("40.00"), LineTotal: d("40.00")},
		},
		Subtotal: dp("100.00"),
		Taxes: core.TaxBreakdown{
			"TPS": d("5.00"),
			"TVQ": d("9.98"),
		},
		GrandTotal: dp("114.98"),
		Payment:    &core.Payment{Mode: "INTERAC", Amount: d("114.98")},
		IssueDate:  "20 janvier 2025",
	}
}

func TestValidate_ConsistentInvoice(t *testing.T) {
	res := newTestValidator().Validate(consistentInvoice())

	if !res.IsValid {
		t.Errorf("IsValid = false, errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings: %v", res.Warnings)
	}
	if len(res.Corrections) != 0 {
		t.Errorf("corrections: %v", res.Corrections)
	}
}

func TestValidate_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*core.Invoice)
		wantErr string
	}{
		{
			name:    "empty vendor name",
			mutate:  func(inv *core.Invoice) { inv.Vendor.Name = "" },
			wantErr: "vendor name is empty",
		},
		{
			name:    "no items",
			mutate:  func(inv *core.Invoice) { inv.Items = nil },
			wantErr: "no line items found",
		},
		{
			name:    "short description",
			mutate:  func(inv *core.Invoice) { inv.Items[0].Description = "X" },
			wantErr: "description too short",
		},
		{
			name:    "zero quantity",
			mutate:  func(inv *core.Invoice) { inv.Items[0].Quantity = 0 },
			wantErr: "quantity must be at least 1",
		},
		{
			name:    "zero unit price",
			mutate:  func(inv *core.Invoice) { inv.Items[0].UnitPrice = decimal.Zero },
			wantErr: "unit price must be positive",
		},
		{
			name:    "missing issue date",
			mutate:  func(inv *core.Invoice) { inv.IssueDate = "" },
			wantErr: "issue date is missing",
		},
		{
			name:    "unparseable issue date",
			mutate:  func(inv *core.Invoice) { inv.IssueDate = "hier soir" },
			wantErr: "not in a recognized format",
		},
		{
			name:    "future issue date",
			mutate:  func(inv *core.Invoice) { inv.IssueDate = "25/12/2030" },
			wantErr: "is in the future",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := consistentInvoice()
			tt.mutate(&inv)
			res := newTestValidator().Validate(inv)

			if res.IsValid {
				t.Fatal("IsValid = true, want false")
			}
			if !containsSubstring(res.Errors, tt.wantErr) {
				t.Errorf("errors %v do not mention %q", res.Errors, tt.wantErr)
			}
		})
	}
}

func TestValidate_UnknownVendorNamePasses(t *testing.T) {
	inv := consistentInvoice()
	inv.Vendor.Name = core.UnknownVendor

	res := newTestValidator().Validate(inv)
	if !res.IsValid {
		t.Errorf("an unidentified vendor should not block validation, errors: %v", res.Errors)
	}
}

func TestValidate_ArithmeticCorrections(t *testing.T) {
	t.Run("subtotal drift", func(t *testing.T) {
		inv := consistentInvoice()
		inv.Subtotal = dp("101.50")

		res := newTestValidator().Validate(inv)
		if !res.IsValid {
			t.Fatalf("arithmetic drift must stay non-blocking, errors: %v", res.Errors)
		}
		c := findCorrection(t, res, core.TargetSubtotal, "")
		if !c.Corrected.Equal(d("100.00")) {
			t.Errorf("corrected subtotal = %s, want 100.00", c.Corrected)
		}
	})

	t.Run("tax drift", func(t *testing.T) {
		inv := consistentInvoice()
		inv.Taxes["TPS"] = d("0.00")

		res := newTestValidator().Validate(inv)
		c := findCorrection(t, res, core.TargetTax, "TPS")
		if !c.Corrected.Equal(d("5.00")) {
			t.Errorf("corrected TPS = %s, want 5.00", c.Corrected)
		}
		if c.Field() != "taxes.TPS" {
			t.Errorf("field = %q, want taxes.TPS", c.Field())
		}
	})

	t.Run("grand total drift", func(t *testing.T) {
		inv := consistentInvoice()
		inv.GrandTotal = dp("110.00")

		res := newTestValidator().Validate(inv)
		c := findCorrection(t, res, core.TargetGrandTotal, "")
		if !c.Corrected.Equal(d("114.98")) {
			t.Errorf("corrected grand total = %s, want 114.98", c.Corrected)
		}
	})

	t.Run("drift within tolerance is accepted", func(t *testing.T) {
		inv := consistentInvoice()
		inv.Taxes["TVQ"] = d("9.97")
		inv.GrandTotal = dp("114.97")

		res := newTestValidator().Validate(inv)
		if len(res.Corrections) != 0 {
			t.Errorf("corrections within tolerance: %v", res.Corrections)
		}
	})

	t.Run("expected taxes follow the printed subtotal", func(t *testing.T) {
		// When the printed subtotal is off, taxes are judged against it,
		// not against the recomputed item sum, so one bad line does not
		// cascade into tax corrections.
		inv := consistentInvoice()
		inv.Subtotal = dp("200.00")
		inv.Taxes["TPS"] = d("10.00")
		inv.Taxes["TVQ"] = d("19.95")
		inv.GrandTotal = dp("129.95")

		res := newTestValidator().Validate(inv)
		for _, c := range res.Corrections {
			if c.Target == core.TargetTax {
				t.Errorf("unexpected tax correction: %+v", c)
			}
		}
		c := findCorrection(t, res, core.TargetSubtotal, "")
		if !c.Corrected.Equal(d("100.00")) {
			t.Errorf("corrected subtotal = %s, want 100.00", c.Corrected)
		}
	})
}

func TestValidate_PaymentModeWhitelist(t *testing.T) {
	inv := consistentInvoice()
	inv.Payment = &core.Payment{Mode: "BITCOIN", Amount: d("114.98")}

	res := newTestValidator().Validate(inv)
	if !res.IsValid {
		t.Fatalf("unknown payment mode must stay non-blocking, errors: %v", res.Errors)
	}
	if !containsSubstring(res.Warnings, `unrecognized payment mode "BITCOIN"`) {
		t.Errorf("warnings %v do not mention the payment mode", res.Warnings)
	}
}

func findCorrection(t *testing.T, res core.ValidationResult, target core.CorrectionTarget, taxName string) core.Correction {
	t.Helper()
	for _, c := range res.Corrections {
		if c.Target == target && c.TaxName == taxName {
			return c
		}
	}
	t.Fatalf("no correction for %s/%s in %v", target, taxName, res.Corrections)
	return core.Correction{}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
