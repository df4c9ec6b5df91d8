package app

import (
	"context"

	"github.com/google/uuid"

	"receipt-engine/internal/core"
	"receipt-engine/internal/store"
)

// Attachment is an uploaded receipt image for vision model input.
// Supported formats: JPG, PNG, WEBP.
type Attachment struct {
	MimeType string // "image/jpeg", "image/png", "image/webp"
	Data     []byte // raw file bytes
}

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web)
// call. It decouples presentation from business logic. Implementations must
// contain no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ParseText reconstructs an invoice from raw receipt text and validates it.
	ParseText(ctx context.Context, rawText string) (*ParseResult, error)

	// ValidateInvoice re-runs validation over an already-built invoice.
	ValidateInvoice(ctx context.Context, inv core.Invoice) (*core.ValidationResult, error)

	// ApplyCorrections returns a copy of the invoice with the validator's
	// suggested corrections applied, revalidated.
	ApplyCorrections(ctx context.Context, inv core.Invoice, res core.ValidationResult) (*ParseResult, error)

	// ScanImage transcribes a receipt photo with the vision model and runs the
	// result through ParseText. When the deterministic parse comes back
	// unusable, the structured extraction model fills the gaps.
	ScanImage(ctx context.Context, att Attachment) (*ParseResult, error)

	// SaveInvoice persists an invoice and returns its storage identity.
	SaveInvoice(ctx context.Context, inv core.Invoice) (*SaveResult, error)

	// GetInvoice returns a saved invoice with full item and tax detail.
	GetInvoice(ctx context.Context, id uuid.UUID) (*store.StoredInvoice, error)

	// ListInvoices returns saved invoice summaries, newest first.
	// limit <= 0 means no limit.
	ListInvoices(ctx context.Context, limit int) ([]store.StoredInvoice, error)

	// DeleteInvoice removes a saved invoice and its detail rows.
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	// ExportInvoicesXLSX renders saved invoices to an XLSX workbook.
	ExportInvoicesXLSX(ctx context.Context, limit int) ([]byte, error)
}

// ParseResult pairs an invoice with its validation findings.
type ParseResult struct {
	Invoice    core.Invoice          `json:"invoice"`
	Validation core.ValidationResult `json:"validation"`
}

// SaveResult is returned by SaveInvoice.
type SaveResult struct {
	ID uuid.UUID `json:"id"`
}
