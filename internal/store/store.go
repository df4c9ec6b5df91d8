package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"receipt-engine/internal/core"
)

// ErrNotFound is returned when an invoice ID does not exist.
var ErrNotFound = errors.New("invoice not found")

type InvoiceStoreService interface {
	Save(ctx context.Context, inv core.Invoice) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*StoredInvoice, error)
	List(ctx context.Context, limit int) ([]StoredInvoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StoredInvoice is an invoice as persisted, with its storage identity.
type StoredInvoice struct {
	ID        uuid.UUID    `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Invoice   core.Invoice `json:"invoice"`
}

type InvoiceStore struct {
	pool *pgxpool.Pool
}

func NewInvoiceStore(pool *pgxpool.Pool) *InvoiceStore {
	return &InvoiceStore{pool: pool}
}

// Save persists the invoice with its items and tax breakdown in one
// transaction and returns the generated ID.
func (s *InvoiceStore) Save(ctx context.Context, inv core.Invoice) (uuid.UUID, error) {
	id := uuid.New()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var paymentMode *string
	var paymentAmount *decimal.Decimal
	if inv.Payment != nil {
		paymentMode = &inv.Payment.Mode
		paymentAmount = &inv.Payment.Amount
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (
			id, vendor_name, vendor_address, vendor_phone, vendor_website,
			subtotal, grand_total, payment_mode, payment_amount,
			invoice_number, issue_date, raw_text, warnings
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, id, inv.Vendor.Name, inv.Vendor.Address, inv.Vendor.Phone, inv.Vendor.Website,
		inv.Subtotal, inv.GrandTotal, paymentMode, paymentAmount,
		inv.InvoiceNumber, inv.IssueDate, inv.Metadata.RawText, inv.Metadata.Warnings)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	for pos, it := range inv.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, position, description, barcode, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, id, pos, it.Description, it.Barcode, it.Quantity, it.UnitPrice, it.LineTotal)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert invoice item %d: %w", pos, err)
		}
	}

	for name, amount := range inv.Taxes {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_taxes (invoice_id, name, amount)
			VALUES ($1, $2, $3)
		`, id, name, amount)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert tax %s: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

func (s *InvoiceStore) Get(ctx context.Context, id uuid.UUID) (*StoredInvoice, error) {
	var (
		si            StoredInvoice
		paymentMode   *string
		paymentAmount *decimal.Decimal
	)
	si.ID = id
	si.Invoice.Taxes = core.TaxBreakdown{}

	err := s.pool.QueryRow(ctx, `
		SELECT vendor_name, vendor_address, vendor_phone, vendor_website,
		       subtotal, grand_total, payment_mode, payment_amount,
		       invoice_number, issue_date, raw_text, warnings, created_at
		FROM invoices WHERE id = $1
	`, id).Scan(
		&si.Invoice.Vendor.Name, &si.Invoice.Vendor.Address, &si.Invoice.Vendor.Phone, &si.Invoice.Vendor.Website,
		&si.Invoice.Subtotal, &si.Invoice.GrandTotal, &paymentMode, &paymentAmount,
		&si.Invoice.InvoiceNumber, &si.Invoice.IssueDate, &si.Invoice.Metadata.RawText, &si.Invoice.Metadata.Warnings,
		&si.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	if paymentMode != nil && paymentAmount != nil {
		si.Invoice.Payment = &core.Payment{Mode: *paymentMode, Amount: *paymentAmount}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT description, barcode, quantity, unit_price, line_total
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it core.LineItem
		if err := rows.Scan(&it.Description, &it.Barcode, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		si.Invoice.Items = append(si.Invoice.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read invoice items: %w", err)
	}

	taxRows, err := s.pool.Query(ctx, `
		SELECT name, amount FROM invoice_taxes WHERE invoice_id = $1 ORDER BY name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice taxes: %w", err)
	}
	defer taxRows.Close()
	for taxRows.Next() {
		var (
			name   string
			amount decimal.Decimal
		)
		if err := taxRows.Scan(&name, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan tax: %w", err)
		}
		si.Invoice.Taxes[name] = amount
	}
	if err := taxRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read invoice taxes: %w", err)
	}

	return &si, nil
}

// List returns saved invoices, newest first, without their item and tax
// detail. limit <= 0 means no limit.
func (s *InvoiceStore) List(ctx context.Context, limit int) ([]StoredInvoice, error) {
	query := `
		SELECT id, vendor_name, subtotal, grand_total, invoice_number, issue_date, created_at
		FROM invoices ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var out []StoredInvoice
	for rows.Next() {
		var si StoredInvoice
		if err := rows.Scan(&si.ID, &si.Invoice.Vendor.Name, &si.Invoice.Subtotal,
			&si.Invoice.GrandTotal, &si.Invoice.InvoiceNumber, &si.Invoice.IssueDate, &si.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		out = append(out, si)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read invoice rows: %w", err)
	}
	return out, nil
}

func (s *InvoiceStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
