package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"receipt-engine/internal/ai"
	"receipt-engine/internal/core"
	"receipt-engine/internal/export"
	"receipt-engine/internal/store"
)

type appService struct {
	parser    *core.Parser
	validator *core.Validator
	invoices  store.InvoiceStoreService
	exporter  *export.Service
	agent     ai.AgentService
}

// NewAppService constructs an appService that satisfies ApplicationService.
// invoices and agent may be nil; the corresponding operations then return an
// explicit "not configured" error instead of panicking, so the text-only CLI
// works without a database or API key.
func NewAppService(cfg core.Config, invoices store.InvoiceStoreService, exporter *export.Service, agent ai.AgentService) ApplicationService {
	return &appService{
		parser:    core.NewParser(cfg),
		validator: core.NewValidator(cfg),
		invoices:  invoices,
		exporter:  exporter,
		agent:     agent,
	}
}

func (s *appService) ParseText(ctx context.Context, rawText string) (*ParseResult, error) {
	inv := s.parser.Parse(rawText)
	res := s.validator.Validate(inv)
	return &ParseResult{Invoice: inv, Validation: res}, nil
}

func (s *appService) ValidateInvoice(ctx context.Context, inv core.Invoice) (*core.ValidationResult, error) {
	res := s.validator.Validate(inv)
	return &res, nil
}

func (s *appService) ApplyCorrections(ctx context.Context, inv core.Invoice, res core.ValidationResult) (*ParseResult, error) {
	fixed := core.ApplyCorrections(inv, res)
	return &ParseResult{Invoice: fixed, Validation: s.validator.Validate(fixed)}, nil
}

func (s *appService) ScanImage(ctx context.Context, att Attachment) (*ParseResult, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("AI agent not configured: set OPENAI_API_KEY")
	}
	if len(att.Data) == 0 {
		return nil, fmt.Errorf("empty attachment")
	}

	rawText, err := s.agent.TranscribeImage(ctx, att.MimeType, att.Data)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	result, err := s.ParseText(ctx, rawText)
	if err != nil {
		return nil, err
	}

	// When the deterministic pass could not read the receipt, fall back to
	// model-side field extraction over the same transcription.
	if len(result.Invoice.Items) == 0 || result.Invoice.Vendor.Name == core.UnknownVendor {
		fields, err := s.agent.ExtractFields(ctx, rawText)
		if err != nil {
			// The parse result still stands on its own.
			return result, nil
		}
		merged := mergeFields(result.Invoice, fields)
		res := s.validator.Validate(merged)
		result = &ParseResult{Invoice: merged, Validation: res}
	}

	return result, nil
}

// mergeFields overlays model-extracted fields onto the parsed invoice,
// touching only what the parser left empty. Model output is advisory, so
// every overlaid field is flagged in the metadata warnings.
func mergeFields(inv core.Invoice, fields *ai.ReceiptFields) core.Invoice {
	out := inv.Clone()
	note := func(field string) {
		out.Metadata.Warnings = append(out.Metadata.Warnings, field+" filled in by the extraction model")
	}

	if out.Vendor.Name == core.UnknownVendor && fields.Company != "" {
		out.Vendor.Name = fields.Company
		note("vendor name")
	}
	if out.IssueDate == "" && fields.Date != "" {
		out.IssueDate = fields.Date
		note("issue date")
	}
	if len(out.Items) == 0 && len(fields.Products) > 0 {
		for _, p := range fields.Products {
			name := strings.TrimSpace(p.Name)
			if name == "" {
				continue
			}
			qty := p.Quantity
			if qty < 1 {
				qty = 1
			}
			unit := decimal.NewFromFloat(p.Price).Round(2)
			out.Items = append(out.Items, core.LineItem{
				Description: name,
				Quantity:    qty,
				UnitPrice:   unit,
				LineTotal:   unit.Mul(decimal.NewFromInt(int64(qty))).Round(2),
			})
		}
		if len(out.Items) > 0 {
			note("line items")
		}
	}
	if out.Subtotal == nil && fields.Subtotal > 0 {
		v := decimal.NewFromFloat(fields.Subtotal).Round(2)
		out.Subtotal = &v
		note("subtotal")
	}
	if out.Taxes == nil {
		out.Taxes = core.TaxBreakdown{}
	}
	if out.Taxes["TPS"].IsZero() && fields.TPS > 0 {
		out.Taxes["TPS"] = decimal.NewFromFloat(fields.TPS).Round(2)
		note("TPS")
	}
	if out.Taxes["TVQ"].IsZero() && fields.TVQ > 0 {
		out.Taxes["TVQ"] = decimal.NewFromFloat(fields.TVQ).Round(2)
		note("TVQ")
	}
	if out.GrandTotal == nil && fields.Total > 0 {
		v := decimal.NewFromFloat(fields.Total).Round(2)
		out.GrandTotal = &v
		note("grand total")
	}
	if out.Payment == nil && fields.PaymentMethod != "" {
		amount := decimal.Zero
		if out.GrandTotal != nil {
			amount = *out.GrandTotal
		}
		out.Payment = &core.Payment{Mode: strings.ToUpper(fields.PaymentMethod), Amount: amount}
		note("payment")
	}
	return out
}

func (s *appService) SaveInvoice(ctx context.Context, inv core.Invoice) (*SaveResult, error) {
	if s.invoices == nil {
		return nil, fmt.Errorf("storage not configured: set DATABASE_URL")
	}
	id, err := s.invoices.Save(ctx, inv)
	if err != nil {
		return nil, err
	}
	return &SaveResult{ID: id}, nil
}

func (s *appService) GetInvoice(ctx context.Context, id uuid.UUID) (*store.StoredInvoice, error) {
	if s.invoices == nil {
		return nil, fmt.Errorf("storage not configured: set DATABASE_URL")
	}
	return s.invoices.Get(ctx, id)
}

func (s *appService) ListInvoices(ctx context.Context, limit int) ([]store.StoredInvoice, error) {
	if s.invoices == nil {
		return nil, fmt.Errorf("storage not configured: set DATABASE_URL")
	}
	return s.invoices.List(ctx, limit)
}

func (s *appService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if s.invoices == nil {
		return fmt.Errorf("storage not configured: set DATABASE_URL")
	}
	return s.invoices.Delete(ctx, id)
}

func (s *appService) ExportInvoicesXLSX(ctx context.Context, limit int) ([]byte, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("storage not configured: set DATABASE_URL")
	}
	return s.exporter.ExportInvoicesXLSX(ctx, limit)
}

// ParseID reads an invoice ID from user input. The full UUID is required.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid invoice id %q: %w", s, err)
	}
	return id, nil
}

// ParseLimit reads an optional row limit from user input; empty means no limit.
func ParseLimit(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q", s)
	}
	return n, nil
}
