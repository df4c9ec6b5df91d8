package core_test

import (
	"testing"

	"receipt-engine/internal/core"
)

func TestApplyCorrections_ClosesTheArithmetic(t *testing.T) {
	inv := core.Parse(imaginaireReceipt)
	v := newTestValidator()

	first := v.Validate(inv)
	if !first.IsValid {
		t.Fatalf("fixture should be structurally valid, errors: %v", first.Errors)
	}
	// The receipt prints TPS 0.00 and a grand total that omits it; both get
	// corrections.
	if len(first.Corrections) != 2 {
		t.Fatalf("corrections = %v, want TPS and grand total", first.Corrections)
	}

	fixed := core.ApplyCorrections(inv, first)

	if !fixed.Taxes["TPS"].Equal(d("1.45")) {
		t.Errorf("corrected TPS = %s, want 1.45", fixed.Taxes["TPS"])
	}
	if fixed.GrandTotal == nil || !fixed.GrandTotal.Equal(d("33.30")) {
		t.Errorf("corrected grand total = %v, want 33.30", fixed.GrandTotal)
	}

	second := v.Validate(fixed)
	if !second.IsValid || len(second.Corrections) != 0 {
		t.Errorf("corrected invoice should validate cleanly, got %+v", second)
	}
}

func TestApplyCorrections_DoesNotMutateInput(t *testing.T) {
	inv := consistentInvoice()
	res := core.ValidationResult{
		Corrections: []core.Correction{
			{Target: core.TargetSubtotal, Original: d("100.00"), Corrected: d("99.00")},
			{Target: core.TargetTax, TaxName: "TPS", Original: d("5.00"), Corrected: d("4.95")},
			{Target: core.TargetGrandTotal, Original: d("114.98"), Corrected: d("113.91")},
		},
	}

	out := core.ApplyCorrections(inv, res)

	if !out.Subtotal.Equal(d("99.00")) || !out.Taxes["TPS"].Equal(d("4.95")) || !out.GrandTotal.Equal(d("113.91")) {
		t.Errorf("corrections not applied: %+v", out)
	}
	if !inv.Subtotal.Equal(d("100.00")) || !inv.Taxes["TPS"].Equal(d("5.00")) || !inv.GrandTotal.Equal(d("114.98")) {
		t.Error("input invoice was mutated")
	}
}

func TestApplyCorrections_NoCorrectionsIsIdentity(t *testing.T) {
	inv := consistentInvoice()
	out := core.ApplyCorrections(inv, core.ValidationResult{IsValid: true})

	if !out.Subtotal.Equal(*inv.Subtotal) || len(out.Items) != len(inv.Items) {
		t.Errorf("identity application changed the invoice: %+v", out)
	}
}
