package core_test

import (
	"testing"

	"receipt-engine/internal/core"
)

func TestParse_DocumentAmounts(t *testing.T) {
	tests := []struct {
		name string
		text string
		check func(t *testing.T, inv core.Invoice)
	}{
		{
			name: "reprinted total, last occurrence wins",
			text: "CAFE\n3.00$\nTOTAL: 10.00$\nMERCI\nTOTAL: 12.00$",
			check: func(t *testing.T, inv core.Invoice) {
				if inv.GrandTotal == nil || !inv.GrandTotal.Equal(d("12.00")) {
					t.Errorf("grand total = %v, want 12.00", inv.GrandTotal)
				}
			},
		},
		{
			name: "subtotal line never feeds the total",
			text: "CAFE\n3.00$\nSOUS-TOTAL: 9.00$\nTOTAL: 11.00$",
			check: func(t *testing.T, inv core.Invoice) {
				if inv.Subtotal == nil || !inv.Subtotal.Equal(d("9.00")) {
					t.Errorf("subtotal = %v, want 9.00", inv.Subtotal)
				}
				if inv.GrandTotal == nil || !inv.GrandTotal.Equal(d("11.00")) {
					t.Errorf("grand total = %v, want 11.00", inv.GrandTotal)
				}
			},
		},
		{
			name: "inline tax amounts",
			text: "CAFE\n10.00$\nTPS 0.50$\nTVQ 1.00$\nTOTAL: 11.50$",
			check: func(t *testing.T, inv core.Invoice) {
				if !inv.Taxes["TPS"].Equal(d("0.50")) {
					t.Errorf("TPS = %s, want 0.50", inv.Taxes["TPS"])
				}
				if !inv.Taxes["TVQ"].Equal(d("1.00")) {
					t.Errorf("TVQ = %s, want 1.00", inv.Taxes["TVQ"])
				}
			},
		},
		{
			name: "tax aliases map to canonical names",
			text: "CAFE\n10.00$\nGST 0.50$\nQST 1.00$\nTOTAL: 11.50$",
			check: func(t *testing.T, inv core.Invoice) {
				if !inv.Taxes["TPS"].Equal(d("0.50")) {
					t.Errorf("TPS (from GST) = %s, want 0.50", inv.Taxes["TPS"])
				}
				if !inv.Taxes["TVQ"].Equal(d("1.00")) {
					t.Errorf("TVQ (from QST) = %s, want 1.00", inv.Taxes["TVQ"])
				}
			},
		},
		{
			name: "comma decimal separator",
			text: "CAFE\n3.00$\nTOTAL: 31,85 $",
			check: func(t *testing.T, inv core.Invoice) {
				if inv.GrandTotal == nil || !inv.GrandTotal.Equal(d("31.85")) {
					t.Errorf("grand total = %v, want 31.85", inv.GrandTotal)
				}
			},
		},
		{
			name: "payment with inline amount",
			text: "CAFE\n3.00$\nTOTAL: 12.00$\nVISA 12.00$",
			check: func(t *testing.T, inv core.Invoice) {
				if inv.Payment == nil {
					t.Fatal("payment missing")
				}
				if inv.Payment.Mode != "VISA" || !inv.Payment.Amount.Equal(d("12.00")) {
					t.Errorf("payment = %+v", inv.Payment)
				}
			},
		},
		{
			name: "bare payment line falls back to the last amount seen",
			text: "CAFE\n3.00$\nTOTAL: 12.00$\nINTERAC",
			check: func(t *testing.T, inv core.Invoice) {
				if inv.Payment == nil {
					t.Fatal("payment missing")
				}
				if inv.Payment.Mode != "INTERAC" || !inv.Payment.Amount.Equal(d("12.00")) {
					t.Errorf("payment = %+v", inv.Payment)
				}
			},
		},
		{
			name: "numeric day-first date",
			text: "CAFE\n3.00$\nDate: 20/01/2025\nTOTAL: 3.00$",
			check: func(t *testing.T, inv core.Invoice) {
				if inv.IssueDate != "20/01/2025" {
					t.Errorf("issue date = %q, want 20/01/2025", inv.IssueDate)
				}
			},
		},
		{
			name: "invoice number variants",
			text: "CAFE\n3.00$\nReçu # 42\nTOTAL: 3.00$",
			check: func(t *testing.T, inv core.Invoice) {
				if inv.InvoiceNumber != "42" {
					t.Errorf("invoice number = %q, want 42", inv.InvoiceNumber)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, core.Parse(tt.text))
		})
	}
}
