package core

import "regexp"

// Static pattern sets, compiled once at load. Ordered lists are tried first to
// last; the first match wins within a category. These cover the word-order
// variants OCR output produces (label-first, inline amount, amount on the
// following line).
var (
	// lineBreaks splits on any line-break convention.
	lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)

	// trailingAmount captures a monetary value at the end of a line:
	// "28.96$", "TOTAL: 31,85 $", "7.99".
	trailingAmount = regexp.MustCompile(`(\d+[.,]\d{2})\s*\$?\s*$`)

	// bareAmount matches lines that are nothing but a monetary value. Such
	// lines carry the amount for the label line above them and are never item
	// descriptions.
	bareAmount = regexp.MustCompile(`^\d+[.,]\d{2}\s*\$?\s*$`)

	// barcode matches pure UPC/EAN digit runs.
	barcode = regexp.MustCompile(`^[0-9]{8,14}$`)

	phonePattern   = regexp.MustCompile(`(?:\+?\d{1,2}\s*)?(?:\(\d{3}\)\s*|\d{3}[-.]?\s*)\d{3}[-.]?\s*\d{4}`)
	postalCode     = regexp.MustCompile(`(?i)[A-Z]\d[A-Z]\s*\d[A-Z]\d`)
	websitePattern = regexp.MustCompile(`(?i)(?:www\.)?[a-z0-9-]+(?:\.[a-z0-9-]+)*\.[a-z]{2,}`)

	// adminLine marks header lines that look like addresses but are
	// administrative (cashier, client, invoice number blocks).
	adminLine = regexp.MustCompile(`(?i)facture|client|employé|caisse|www\.|@`)

	addressPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\d{1,5}\s+[A-Za-zÀ-ÿ\s-]*(?:rue|avenue|boulevard|chemin|boul\.|av\.|ch\.)`),
		regexp.MustCompile(`(?i)^(?:Saint|Sainte|St|Ste)-[A-Za-zÀ-ÿ\s-]+(?:,\s*[A-Z]{2})?`),
		regexp.MustCompile(`^[A-Za-zÀ-ÿ\s-]+(?:,\s*[A-Z]{2})?`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2})\s*(janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s*(\d{4})`),
		regexp.MustCompile(`(\d{2})[-/.]\s*(\d{2})[-/.]\s*(\d{4})`),
		regexp.MustCompile(`(\d{4})[-/.]\s*(\d{2})[-/.]\s*(\d{2})`),
	}

	invoiceNumber = regexp.MustCompile(`(?i)(?:facture|reçu|ticket)\s*#?\s*[:.]?\s*(\d+)`)

	// declaredItemCount reads the document-level "N Article(s)" summary line.
	// It is a cross-check for the aggregator, not a per-item quantity.
	declaredItemCount = regexp.MustCompile(`(?i)(\d+)\s*Article\(s\)`)

	quantityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(\d+)\s*[xX]\s*`),
		regexp.MustCompile(`^(\d+)\s*@\s*`),
		regexp.MustCompile(`\((\d+)\)`),
		regexp.MustCompile(`(?i)QTE\s*:\s*(\d+)`),
	}

	leadingQuantity  = regexp.MustCompile(`^\d+\s*[xX]\s*`)
	trailingQuantity = regexp.MustCompile(`\s*\(\d+\)\s*$`)

	// totalKeyword flags a grand-total line. Lines containing a subtotal
	// marker are excluded before this is consulted, so the subtotal value
	// never leaks into the total slot.
	totalKeyword    = regexp.MustCompile(`(?i)\b(?:TOTAL|MONTANT)\b`)
	subtotalKeyword = regexp.MustCompile(`(?i)sous-total|subtotal`)

	// bareTotalLabel matches a total label with the amount on the next line.
	bareTotalLabel = regexp.MustCompile(`(?i)^(?:TOTAL|MONTANT)\s*:?\s*$`)

	// paymentModeTokens is the extraction vocabulary for payment lines. The
	// accented spellings appear on printed receipts; the validator whitelist
	// (Config.PaymentModes) decides which of them are considered known.
	paymentModeTokens = []string{
		"INTERAC", "VISA", "MASTERCARD", "DÉBIT", "DEBIT", "CRÉDIT", "CREDIT", "COMPTANT", "CASH",
	}
)
