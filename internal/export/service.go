package export

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xuri/excelize/v2"

	"receipt-engine/internal/store"
)

// Service produces XLSX workbooks from saved invoices.
type Service struct {
	invoices store.InvoiceStoreService
}

func NewService(invoices store.InvoiceStoreService) *Service {
	return &Service{invoices: invoices}
}

// ExportInvoicesXLSX returns an XLSX workbook of saved invoices, one row per
// invoice, newest first. limit <= 0 exports everything.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	summaries, err := s.invoices.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Saved At",
		"Vendor",
		"Invoice #",
		"Issue Date",
		"Items",
		"Subtotal",
		"TPS",
		"TVQ",
		"Grand Total",
		"Payment",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, summary := range summaries {
		// The list query carries only header columns; item and tax detail
		// come from the full record.
		full, err := s.invoices.Get(ctx, summary.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch invoice %s: %w", summary.ID, err)
		}
		inv := full.Invoice

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, full.CreatedAt.Format("2006-01-02 15:04"))
		write(2, inv.Vendor.Name)
		write(3, inv.InvoiceNumber)
		write(4, inv.IssueDate)
		write(5, inv.ItemQuantity())
		if inv.Subtotal != nil {
			write(6, inv.Subtotal.StringFixed(2))
		}
		write(7, inv.Taxes["TPS"].StringFixed(2))
		write(8, inv.Taxes["TVQ"].StringFixed(2))
		if inv.GrandTotal != nil {
			write(9, inv.GrandTotal.StringFixed(2))
		}
		if inv.Payment != nil {
			write(10, fmt.Sprintf("%s %s", inv.Payment.Mode, inv.Payment.Amount.StringFixed(2)))
		}

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "D", 16)
	_ = f.SetColWidth(sheet, "F", "I", 12)
	_ = f.SetColWidth(sheet, "J", "J", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	log.Printf("exported %d invoices to xlsx in %dms", len(summaries), time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
