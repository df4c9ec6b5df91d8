package core

import "strings"

// identifyVendor resolves the merchant from the top of the document. The
// known-merchant table is consulted first and the first table entry whose
// variant appears in the scan window wins; identity is never overwritten by a
// later line. Only when no table entry matches does detection fall back to
// phone, website and address heuristics over the same window. The matched
// Merchant (nil if none) is returned so backfill can use its tax profile.
func (p *Parser) identifyVendor(lines []string) (Vendor, *Merchant) {
	v := Vendor{Name: UnknownVendor}

	window := lines
	if len(window) > p.cfg.VendorScanLines {
		window = window[:p.cfg.VendorScanLines]
	}

	var matched *Merchant
merchants:
	for i := range p.cfg.Merchants {
		m := &p.cfg.Merchants[i]
		for _, line := range window {
			if m.matches(line) {
				v.Name = m.Canonical
				v.Website = m.Website
				matched = m
				break merchants
			}
		}
	}
	if matched != nil {
		return v, matched
	}

	var addressParts []string
	addressDone := false
	for i := 0; i < len(window) && !addressDone; i++ {
		line := window[i]

		if v.Phone == "" && phonePattern.MatchString(line) {
			v.Phone = phonePattern.FindString(line)
			continue
		}
		if v.Website == "" && websitePattern.MatchString(line) {
			v.Website = websitePattern.FindString(line)
			continue
		}

		for _, pat := range addressPatterns {
			if !pat.MatchString(line) {
				continue
			}
			if adminLine.MatchString(line) {
				break
			}
			addressParts = append(addressParts, line)
			// A postal code on the following line closes the address block.
			if i+1 < len(window) && postalCode.MatchString(window[i+1]) {
				addressParts = append(addressParts, postalCode.FindString(window[i+1]))
				i++
				addressDone = true
			}
			break
		}
	}
	if len(addressParts) > 0 {
		v.Address = strings.Join(addressParts, ", ")
	}

	return v, nil
}

// matches reports whether any name variant appears in the line,
// case-insensitively.
func (m *Merchant) matches(line string) bool {
	lower := strings.ToLower(line)
	for _, variant := range m.Variants {
		if strings.Contains(lower, strings.ToLower(variant)) {
			return true
		}
	}
	return false
}
