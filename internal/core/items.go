package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// extractItems runs the item pass: an independent walk over the same
// normalized lines. A candidate line becomes an item only when the following
// line carries its price; the price line is then consumed. Barcode lines are
// attached to the item they follow. Duplicate items are merged afterwards.
func (p *Parser) extractItems(lines []string) []LineItem {
	var items []LineItem
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if p.reserved.MatchString(line) || barcode.MatchString(line) || bareAmount.MatchString(line) {
			continue
		}
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		// A reserved line can carry a trailing amount (inline tax or total);
		// it is never an item's price line.
		if p.reserved.MatchString(next) {
			continue
		}
		item, ok := parseItem(line, next)
		if !ok {
			continue
		}
		if i+2 < len(lines) && barcode.MatchString(lines[i+2]) {
			item.Barcode = lines[i+2]
		}
		items = append(items, item)
		i++ // price line consumed
	}
	return aggregateItems(items)
}

// parseItem reads one candidate: quantity markers are stripped from the
// description, the price comes from the following line. Candidates whose
// following line is not a price are discarded — they are address lines,
// slogans, or other noise.
func parseItem(line, next string) (LineItem, bool) {
	total, ok := parseAmount(next)
	if !ok {
		return LineItem{}, false
	}

	quantity := 1
	description := line
	for _, pat := range quantityPatterns {
		m := pat.FindStringSubmatch(description)
		if m == nil {
			continue
		}
		if q, err := strconv.Atoi(m[1]); err == nil && q >= 1 {
			quantity = q
		}
		description = strings.TrimSpace(pat.ReplaceAllString(description, ""))
		break
	}
	description = leadingQuantity.ReplaceAllString(description, "")
	description = trailingQuantity.ReplaceAllString(description, "")
	description = strings.TrimSpace(description)

	unit := total.DivRound(decimal.NewFromInt(int64(quantity)), 2)
	return LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unit,
		LineTotal:   total,
	}, true
}

// aggregateItems merges line items sharing (description, unit price): the
// repeated scans of the same product on a receipt become one entry with the
// quantities summed. LineTotal is recomputed as quantity × unit price rounded
// to cents, and first-seen order is preserved.
func aggregateItems(items []LineItem) []LineItem {
	type key struct {
		description string
		unitPrice   string
	}
	merged := map[key]*LineItem{}
	var order []key
	for _, it := range items {
		k := key{it.Description, it.UnitPrice.StringFixed(2)}
		if existing, ok := merged[k]; ok {
			existing.Quantity += it.Quantity
			if existing.Barcode == "" {
				existing.Barcode = it.Barcode
			}
			continue
		}
		copied := it
		merged[k] = &copied
		order = append(order, k)
	}

	out := make([]LineItem, 0, len(order))
	for _, k := range order {
		it := *merged[k]
		it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		out = append(out, it)
	}
	return out
}
