package repl

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"receipt-engine/internal/app"
)

// Run starts the interactive REPL loop.
// Slash commands are dispatched deterministically; any other input opens a
// paste buffer for receipt text, which then goes through the parse/review
// flow.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	fmt.Println("Receipt Engine")
	fmt.Println("Paste receipt text to parse it, or use /help for commands.")
	fmt.Println("Finish a pasted receipt with a single '.' on its own line.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "list", "ls":
			limit := 20
			if len(args) > 0 {
				n, err := app.ParseLimit(args[0])
				if err != nil {
					fmt.Println(err)
					return nil
				}
				limit = n
			}
			list, err := svc.ListInvoices(ctx, limit)
			if err != nil {
				return err
			}
			printInvoiceList(list)

		case "get":
			if len(args) < 1 {
				fmt.Println("Usage: /get <invoice-id>")
				return nil
			}
			id, err := app.ParseID(args[0])
			if err != nil {
				fmt.Println(err)
				return nil
			}
			si, err := svc.GetInvoice(ctx, id)
			if err != nil {
				return err
			}
			printInvoice(si.Invoice)

		case "delete", "del":
			if len(args) < 1 {
				fmt.Println("Usage: /delete <invoice-id>")
				return nil
			}
			id, err := app.ParseID(args[0])
			if err != nil {
				fmt.Println(err)
				return nil
			}
			if err := svc.DeleteInvoice(ctx, id); err != nil {
				return err
			}
			fmt.Println("Deleted.")

		case "export":
			out := "invoices.xlsx"
			if len(args) > 0 {
				out = args[0]
			}
			data, err := svc.ExportInvoicesXLSX(ctx, 0)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Println("Exported:", out)

		case "scan":
			if len(args) < 1 {
				fmt.Println("Usage: /scan <image-file>")
				return nil
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			fmt.Println("Transcribing...")
			result, err := svc.ScanImage(ctx, app.Attachment{MimeType: mimeTypeFor(args[0]), Data: data})
			if err != nil {
				return err
			}
			reviewResult(ctx, reader, svc, result)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("Goodbye!")
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// Slash prefix → deterministic command dispatcher.
		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					fmt.Println("Goodbye!")
					break
				}
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		// Anything else starts a receipt paste buffer.
		text := collectReceipt(reader, input)
		result, err := svc.ParseText(ctx, text)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		reviewResult(ctx, reader, svc, result)
	}
}

// collectReceipt reads lines until a lone "." terminator, starting from the
// already-consumed first line.
func collectReceipt(reader *bufio.Reader, first string) string {
	lines := []string{first}
	for {
		line, err := reader.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if err != nil || strings.TrimSpace(trimmed) == "." {
			break
		}
		lines = append(lines, trimmed)
	}
	return strings.Join(lines, "\n")
}

// reviewResult walks the user through the parse outcome: show the invoice and
// findings, offer to apply suggested corrections, then offer to save.
func reviewResult(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, result *app.ParseResult) {
	printInvoice(result.Invoice)
	printValidation(result.Validation)

	if len(result.Validation.Corrections) > 0 {
		fmt.Print("\nApply suggested corrections? (y/n): ")
		if readChoice(reader) {
			fixed, err := svc.ApplyCorrections(ctx, result.Invoice, result.Validation)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			result = fixed
			fmt.Println("\nCorrected invoice:")
			printInvoice(result.Invoice)
			printValidation(result.Validation)
		}
	}

	fmt.Print("\nSave this invoice? (y/n): ")
	if !readChoice(reader) {
		fmt.Println("Not saved.")
		return
	}
	saved, err := svc.SaveInvoice(ctx, result.Invoice)
	if err != nil {
		fmt.Printf("Save FAILED: %v\n", err)
		return
	}
	fmt.Println("Saved:", saved.ID)
}

func readChoice(reader *bufio.Reader) bool {
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	return choice == "y" || choice == "yes"
}

func mimeTypeFor(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
