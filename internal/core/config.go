package core

import "github.com/shopspring/decimal"

// Merchant is one entry of the known-merchant table: name variants mapped to a
// canonical identity and, when known, the tax rates that store charges.
type Merchant struct {
	Canonical string
	Variants  []string
	Website   string
	// TaxProfile maps a tax name to its rate (e.g. TPS -> 0.05). Empty when the
	// merchant's rates are not known; backfill then leaves missing taxes alone.
	TaxProfile map[string]decimal.Decimal
}

// TaxCode describes one regional tax the extractor looks for.
type TaxCode struct {
	Name    string   // canonical name used as TaxBreakdown key
	Aliases []string // receipt spellings, e.g. TPS and GST
	// Rate is the regional default rate the validator reconciles against.
	Rate decimal.Decimal
}

// Config is the read-only table set the parser and validator run against.
// It is built once (DefaultConfig) and passed in by value; no component
// mutates it, so any number of Parse/Validate calls may share one Config
// across goroutines.
type Config struct {
	Merchants    []Merchant // ordered: first table entry to match wins
	TaxCodes     []TaxCode  // ordered: extraction and reconciliation order
	PaymentModes []string   // whitelist the validator accepts
	// VendorScanLines bounds how deep vendor identification looks into the
	// document. Receipts put the merchant block at the top.
	VendorScanLines int
	// Tolerance is the allowance when comparing extracted vs. recomputed
	// amounts, absorbing OCR and rounding noise.
	Tolerance decimal.Decimal
}

// DefaultConfig returns the Québec retail configuration: TPS/TVQ tax codes,
// the known-merchant table, and the standard payment method vocabulary.
func DefaultConfig() Config {
	tps := decimal.NewFromFloat(0.05)
	tvq := decimal.NewFromFloat(0.09975)

	return Config{
		Merchants: []Merchant{
			{
				Canonical: "L'Imaginaire",
				Variants:  []string{"L'Imaginaire", "L'IMAGINAIRE", "IMAGINAIRE"},
				Website:   "www.imaginaire.com",
				TaxProfile: map[string]decimal.Decimal{
					"TPS": tps,
					"TVQ": tvq,
				},
			},
			{
				Canonical: "Walmart",
				Variants:  []string{"Walmart", "WAL-MART", "WAL MART"},
				Website:   "www.walmart.ca",
				TaxProfile: map[string]decimal.Decimal{
					"TPS": tps,
					"TVQ": tvq,
				},
			},
		},
		TaxCodes: []TaxCode{
			{Name: "TPS", Aliases: []string{"TPS", "GST"}, Rate: tps},
			{Name: "TVQ", Aliases: []string{"TVQ", "QST"}, Rate: tvq},
		},
		PaymentModes: []string{
			"INTERAC", "VISA", "MASTERCARD", "COMPTANT", "CASH", "DEBIT", "CREDIT",
		},
		VendorScanLines: 10,
		Tolerance:       decimal.NewFromFloat(0.02),
	}
}

// taxNames returns the configured tax names in extraction order.
func (c Config) taxNames() []string {
	names := make([]string, 0, len(c.TaxCodes))
	for _, tc := range c.TaxCodes {
		names = append(names, tc.Name)
	}
	return names
}
