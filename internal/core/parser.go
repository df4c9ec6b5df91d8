package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Parser turns raw receipt text into a draft Invoice. It is stateless between
// calls: the only thing it holds is the configuration and the matchers
// compiled from it, so one Parser may serve any number of goroutines.
type Parser struct {
	cfg Config

	taxMatchers []taxMatcher
	paymentLine *regexp.Regexp
	barePayment *regexp.Regexp
	reserved    *regexp.Regexp
}

type taxMatcher struct {
	name    string
	alias   *regexp.Regexp // alias appears anywhere in the line
	bareRe  *regexp.Regexp // line is only the alias, amount follows on next line
}

// NewParser compiles the config-dependent matchers once.
func NewParser(cfg Config) *Parser {
	p := &Parser{cfg: cfg}

	for _, tc := range cfg.TaxCodes {
		alt := strings.Join(tc.Aliases, "|")
		p.taxMatchers = append(p.taxMatchers, taxMatcher{
			name:   tc.Name,
			alias:  regexp.MustCompile(`(?i)\b(?:` + alt + `)\b`),
			bareRe: regexp.MustCompile(`(?i)^(?:` + alt + `)\s*:?\s*$`),
		})
	}

	modes := strings.Join(paymentModeTokens, "|")
	p.paymentLine = regexp.MustCompile(`(?i)^(` + modes + `)\b`)
	p.barePayment = regexp.MustCompile(`(?i)^(` + modes + `)\s*:?\s*$`)

	// Reserved keywords disqualify a line from item candidacy: totals, tax
	// lines and payment lines all end with amounts and would otherwise parse
	// as items.
	words := []string{"sous-total", "subtotal", "total", "montant"}
	for _, tc := range cfg.TaxCodes {
		words = append(words, tc.Aliases...)
	}
	words = append(words, paymentModeTokens...)
	p.reserved = regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`)

	return p
}

// Parse reconstructs an Invoice from raw receipt text. It never fails: a
// malformed or partially unreadable receipt still yields a best-effort value
// with defaulted fields and the uncertainty recorded as metadata warnings.
func Parse(text string) Invoice {
	return NewParser(DefaultConfig()).Parse(text)
}

func (p *Parser) Parse(text string) Invoice {
	lines := NormalizeLines(text)

	vendor, merchant := p.identifyVendor(lines)
	doc := p.scanDocument(lines)
	items := p.extractItems(lines)

	inv := Invoice{
		Vendor:   vendor,
		Items:    items,
		Taxes:    p.seedTaxes(doc),
		Metadata: Metadata{RawText: text, Warnings: []string{}},
	}
	inv.Subtotal = doc.subtotal
	inv.GrandTotal = doc.grandTotal
	inv.Payment = doc.payment
	inv.InvoiceNumber = doc.invoiceNumber
	inv.IssueDate = doc.issueDate

	p.backfill(&inv, merchant, doc)

	if doc.declaredCount > 0 {
		if got := inv.ItemQuantity(); got != doc.declaredCount {
			inv.Metadata.Warnings = append(inv.Metadata.Warnings,
				fmt.Sprintf("item count mismatch: found %d, receipt declares %d", got, doc.declaredCount))
		}
	}

	return inv
}

// seedTaxes starts every configured tax at zero, then overlays the extracted
// amounts. A receipt with no TPS line still reports TPS 0.00.
func (p *Parser) seedTaxes(doc docExtract) TaxBreakdown {
	taxes := make(TaxBreakdown, len(p.cfg.TaxCodes))
	for _, name := range p.cfg.taxNames() {
		taxes[name] = decimal.Zero
	}
	for name, amt := range doc.taxes {
		taxes[name] = amt
	}
	return taxes
}
