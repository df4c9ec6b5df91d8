package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// UnknownVendor is the vendor name assigned when no identification heuristic matched.
const UnknownVendor = "Unknown"

// UnknownPaymentMode is the payment mode assigned when a payment line carried no
// recognizable method token.
const UnknownPaymentMode = "Unknown"

// Vendor is the merchant that issued the receipt. It is identified once per
// document and never overwritten by later, less authoritative lines.
type Vendor struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// LineItem is one purchased product entry. LineTotal is always
// UnitPrice × Quantity rounded to cents.
type LineItem struct {
	Description string          `json:"description"`
	Barcode     string          `json:"barcode,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// TaxBreakdown maps a tax name (TPS, TVQ, ...) to its amount.
type TaxBreakdown map[string]decimal.Decimal

// Payment is the payment method and amount recorded on the receipt.
type Payment struct {
	Mode   string          `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
}

// Metadata carries the raw input text and any parse-time warnings.
type Metadata struct {
	RawText  string   `json:"raw_text"`
	Warnings []string `json:"warnings"`
}

// Invoice is the structured reconstruction of one receipt. It is a plain value:
// Parse builds a fresh one per call and nothing mutates it afterwards.
// Subtotal and GrandTotal are nil when the document carried no such line and
// backfill could not compute one.
type Invoice struct {
	Vendor        Vendor           `json:"vendor"`
	Items         []LineItem       `json:"items"`
	Subtotal      *decimal.Decimal `json:"subtotal,omitempty"`
	Taxes         TaxBreakdown     `json:"taxes"`
	GrandTotal    *decimal.Decimal `json:"grand_total,omitempty"`
	Payment       *Payment         `json:"payment,omitempty"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	IssueDate     string           `json:"issue_date,omitempty"`
	Metadata      Metadata         `json:"metadata"`
}

// Clone returns a deep copy of the invoice. ApplyCorrections works on a clone
// so the original value stays untouched.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]LineItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	if inv.Taxes != nil {
		out.Taxes = make(TaxBreakdown, len(inv.Taxes))
		for k, v := range inv.Taxes {
			out.Taxes[k] = v
		}
	}
	if inv.Subtotal != nil {
		v := *inv.Subtotal
		out.Subtotal = &v
	}
	if inv.GrandTotal != nil {
		v := *inv.GrandTotal
		out.GrandTotal = &v
	}
	if inv.Payment != nil {
		p := *inv.Payment
		out.Payment = &p
	}
	if inv.Metadata.Warnings != nil {
		out.Metadata.Warnings = make([]string, len(inv.Metadata.Warnings))
		copy(out.Metadata.Warnings, inv.Metadata.Warnings)
	}
	return out
}

// ItemQuantity is the total number of units across all line items.
func (inv Invoice) ItemQuantity() int {
	total := 0
	for _, it := range inv.Items {
		total += it.Quantity
	}
	return total
}

// CorrectionTarget identifies the invoice field a suggested correction applies to.
// A tagged variant is used instead of a dotted field path so application is an
// exhaustive switch rather than stringly-typed navigation.
type CorrectionTarget int

const (
	TargetSubtotal CorrectionTarget = iota
	TargetTax
	TargetGrandTotal
)

func (t CorrectionTarget) String() string {
	switch t {
	case TargetSubtotal:
		return "subtotal"
	case TargetTax:
		return "tax"
	case TargetGrandTotal:
		return "grand_total"
	}
	return fmt.Sprintf("CorrectionTarget(%d)", int(t))
}

// MarshalText lets targets round-trip through JSON as readable names.
func (t CorrectionTarget) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *CorrectionTarget) UnmarshalText(b []byte) error {
	switch string(b) {
	case "subtotal":
		*t = TargetSubtotal
	case "tax":
		*t = TargetTax
	case "grand_total":
		*t = TargetGrandTotal
	default:
		return fmt.Errorf("unknown correction target %q", string(b))
	}
	return nil
}

// Correction is one suggested fix for an arithmetic mismatch. TaxName is set
// only when Target is TargetTax.
type Correction struct {
	Target    CorrectionTarget `json:"target"`
	TaxName   string           `json:"tax_name,omitempty"`
	Original  decimal.Decimal  `json:"original"`
	Corrected decimal.Decimal  `json:"corrected"`
	Reason    string           `json:"reason"`
}

// Field renders the target as a display path, e.g. "taxes.TVQ".
func (c Correction) Field() string {
	if c.Target == TargetTax {
		return "taxes." + c.TaxName
	}
	return c.Target.String()
}

// ValidationResult classifies findings about one invoice. Errors are blocking
// (IsValid is false when any exist); warnings and corrections are advisory.
type ValidationResult struct {
	IsValid     bool         `json:"is_valid"`
	Errors      []string     `json:"errors"`
	Warnings    []string     `json:"warnings"`
	Corrections []Correction `json:"corrections"`
}
