package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"receipt-engine/internal/app"
	"receipt-engine/internal/core"
	"receipt-engine/internal/store"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "parse", "p":
		text := readTextArg(args)
		result, err := svc.ParseText(ctx, text)
		if err != nil {
			log.Fatalf("Parse error: %v", err)
		}
		printResult(result)

	case "validate", "val", "v":
		var inv core.Invoice
		if err := json.NewDecoder(os.Stdin).Decode(&inv); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		res, err := svc.ValidateInvoice(ctx, inv)
		if err != nil {
			log.Fatalf("Validation error: %v", err)
		}
		printJSON(res)

	case "correct", "c":
		var inv core.Invoice
		if err := json.NewDecoder(os.Stdin).Decode(&inv); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		res, err := svc.ValidateInvoice(ctx, inv)
		if err != nil {
			log.Fatalf("Validation error: %v", err)
		}
		result, err := svc.ApplyCorrections(ctx, inv, *res)
		if err != nil {
			log.Fatalf("Correction error: %v", err)
		}
		printResult(result)

	case "scan", "s":
		if len(args) < 2 {
			log.Fatal("Usage: app scan <image-file>")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			log.Fatalf("Failed to read image: %v", err)
		}
		result, err := svc.ScanImage(ctx, app.Attachment{
			MimeType: mimeTypeFor(args[1]),
			Data:     data,
		})
		if err != nil {
			log.Fatalf("Scan error: %v", err)
		}
		printResult(result)

	case "save":
		var inv core.Invoice
		if err := json.NewDecoder(os.Stdin).Decode(&inv); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		res, err := svc.SaveInvoice(ctx, inv)
		if err != nil {
			log.Fatalf("Save failed: %v", err)
		}
		fmt.Println("Saved:", res.ID)

	case "list", "ls":
		list, err := svc.ListInvoices(ctx, 50)
		if err != nil {
			log.Fatalf("List failed: %v", err)
		}
		printInvoiceList(list)

	case "get":
		if len(args) < 2 {
			log.Fatal("Usage: app get <invoice-id>")
		}
		id, err := app.ParseID(args[1])
		if err != nil {
			log.Fatal(err)
		}
		si, err := svc.GetInvoice(ctx, id)
		if err != nil {
			log.Fatalf("Get failed: %v", err)
		}
		printJSON(si)

	case "delete", "del", "rm":
		if len(args) < 2 {
			log.Fatal("Usage: app delete <invoice-id>")
		}
		id, err := app.ParseID(args[1])
		if err != nil {
			log.Fatal(err)
		}
		if err := svc.DeleteInvoice(ctx, id); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		fmt.Println("Deleted:", id)

	case "export", "x":
		out := "invoices.xlsx"
		if len(args) > 1 {
			out = args[1]
		}
		data, err := svc.ExportInvoicesXLSX(ctx, 0)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", out, err)
		}
		fmt.Println("Exported:", out)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: parse, validate, correct, scan, save, list, get, delete, export", args[0])
	}
}

// readTextArg takes the receipt text from the argument list, or from stdin
// when the argument is missing or "-".
func readTextArg(args []string) string {
	if len(args) > 1 && args[1] != "-" {
		return args[1]
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("Failed to read stdin: %v", err)
	}
	return string(data)
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printResult(result *app.ParseResult) {
	printJSON(result.Invoice)

	res := result.Validation
	if res.IsValid {
		fmt.Fprintln(os.Stderr, "Invoice is valid.")
	} else {
		fmt.Fprintln(os.Stderr, "Invoice has blocking errors:")
		for _, e := range res.Errors {
			fmt.Fprintln(os.Stderr, "  -", e)
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "  warning:", w)
	}
	for _, c := range res.Corrections {
		fmt.Fprintf(os.Stderr, "  suggested: %s %s -> %s (%s)\n",
			c.Field(), c.Original.StringFixed(2), c.Corrected.StringFixed(2), c.Reason)
	}
}

func printInvoiceList(list []store.StoredInvoice) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 88))
	fmt.Printf("  %-36s %-24s %10s  %s\n", "ID", "VENDOR", "TOTAL", "SAVED AT")
	fmt.Println(strings.Repeat("-", 88))
	for _, si := range list {
		total := ""
		if si.Invoice.GrandTotal != nil {
			total = si.Invoice.GrandTotal.StringFixed(2)
		}
		fmt.Printf("  %-36s %-24s %10s  %s\n",
			si.ID, si.Invoice.Vendor.Name, total, si.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println(strings.Repeat("=", 88))
}
