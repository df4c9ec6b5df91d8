package repl

import (
	"fmt"
	"sort"
	"strings"

	"receipt-engine/internal/core"
	"receipt-engine/internal/store"
)

func printInvoice(inv core.Invoice) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  VENDOR:   %s\n", inv.Vendor.Name)
	if inv.Vendor.Address != "" {
		fmt.Printf("  ADDRESS:  %s\n", inv.Vendor.Address)
	}
	if inv.Vendor.Phone != "" {
		fmt.Printf("  PHONE:    %s\n", inv.Vendor.Phone)
	}
	if inv.Vendor.Website != "" {
		fmt.Printf("  WEBSITE:  %s\n", inv.Vendor.Website)
	}
	if inv.InvoiceNumber != "" {
		fmt.Printf("  NUMBER:   %s\n", inv.InvoiceNumber)
	}
	if inv.IssueDate != "" {
		fmt.Printf("  DATE:     %s\n", inv.IssueDate)
	}
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("  %-38s %4s %10s %12s\n", "ITEM", "QTY", "UNIT", "TOTAL")
	fmt.Println(strings.Repeat("-", 70))
	for _, it := range inv.Items {
		fmt.Printf("  %-38s %4d %10s %12s\n",
			truncate(it.Description, 38), it.Quantity, it.UnitPrice.StringFixed(2), it.LineTotal.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 70))
	if inv.Subtotal != nil {
		fmt.Printf("  %-54s %12s\n", "SUBTOTAL", inv.Subtotal.StringFixed(2))
	}
	for _, name := range sortedTaxNames(inv.Taxes) {
		fmt.Printf("  %-54s %12s\n", name, inv.Taxes[name].StringFixed(2))
	}
	if inv.GrandTotal != nil {
		fmt.Printf("  %-54s %12s\n", "TOTAL", inv.GrandTotal.StringFixed(2))
	}
	if inv.Payment != nil {
		fmt.Printf("  %-54s %12s\n", "PAID ("+inv.Payment.Mode+")", inv.Payment.Amount.StringFixed(2))
	}
	for _, w := range inv.Metadata.Warnings {
		fmt.Printf("  note: %s\n", w)
	}
	fmt.Println(strings.Repeat("=", 70))
}

func printValidation(res core.ValidationResult) {
	if res.IsValid {
		fmt.Println("  VALID")
	} else {
		fmt.Println("  INVALID")
		for _, e := range res.Errors {
			fmt.Printf("    error: %s\n", e)
		}
	}
	for _, w := range res.Warnings {
		fmt.Printf("    warning: %s\n", w)
	}
	for _, c := range res.Corrections {
		fmt.Printf("    suggested: %s %s -> %s (%s)\n",
			c.Field(), c.Original.StringFixed(2), c.Corrected.StringFixed(2), c.Reason)
	}
}

func printInvoiceList(list []store.StoredInvoice) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 88))
	fmt.Printf("  %-36s %-24s %10s  %s\n", "ID", "VENDOR", "TOTAL", "SAVED AT")
	fmt.Println(strings.Repeat("-", 88))
	if len(list) == 0 {
		fmt.Println("  No invoices saved.")
	}
	for _, si := range list {
		total := ""
		if si.Invoice.GrandTotal != nil {
			total = si.Invoice.GrandTotal.StringFixed(2)
		}
		fmt.Printf("  %-36s %-24s %10s  %s\n",
			si.ID, truncate(si.Invoice.Vendor.Name, 24), total, si.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println(strings.Repeat("=", 88))
}

func printHelp() {
	fmt.Println(`
Commands:
  /list [n]           List saved invoices (default 20)
  /get <id>           Show a saved invoice
  /delete <id>        Delete a saved invoice
  /export [file]      Export saved invoices to XLSX (default invoices.xlsx)
  /scan <image-file>  Transcribe and parse a receipt photo
  /help               Show this help
  /exit               Quit

Anything else starts a receipt paste buffer; finish with a single '.' line.`)
}

func sortedTaxNames(taxes core.TaxBreakdown) []string {
	names := make([]string, 0, len(taxes))
	for name := range taxes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
