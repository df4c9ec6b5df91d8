package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"receipt-engine/internal/adapters/web"
	"receipt-engine/internal/app"
	"receipt-engine/internal/core"
	"receipt-engine/internal/store"
)

// stubService is a canned ApplicationService for handler tests.
type stubService struct {
	parseResult *app.ParseResult
	scanErr     error
	saved       []core.Invoice
	stored      map[uuid.UUID]*store.StoredInvoice
}

func newStubService() *stubService {
	inv := core.Parse("CAFE\n3.00$\nTOTAL: 3.00$")
	return &stubService{
		parseResult: &app.ParseResult{Invoice: inv, Validation: core.Validate(inv)},
		stored:      map[uuid.UUID]*store.StoredInvoice{},
	}
}

func (s *stubService) ParseText(ctx context.Context, rawText string) (*app.ParseResult, error) {
	return s.parseResult, nil
}

func (s *stubService) ValidateInvoice(ctx context.Context, inv core.Invoice) (*core.ValidationResult, error) {
	res := core.Validate(inv)
	return &res, nil
}

func (s *stubService) ApplyCorrections(ctx context.Context, inv core.Invoice, res core.ValidationResult) (*app.ParseResult, error) {
	fixed := core.ApplyCorrections(inv, res)
	return &app.ParseResult{Invoice: fixed, Validation: core.Validate(fixed)}, nil
}

func (s *stubService) ScanImage(ctx context.Context, att app.Attachment) (*app.ParseResult, error) {
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return s.parseResult, nil
}

func (s *stubService) SaveInvoice(ctx context.Context, inv core.Invoice) (*app.SaveResult, error) {
	id := uuid.New()
	s.saved = append(s.saved, inv)
	s.stored[id] = &store.StoredInvoice{ID: id, Invoice: inv}
	return &app.SaveResult{ID: id}, nil
}

func (s *stubService) GetInvoice(ctx context.Context, id uuid.UUID) (*store.StoredInvoice, error) {
	si, ok := s.stored[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return si, nil
}

func (s *stubService) ListInvoices(ctx context.Context, limit int) ([]store.StoredInvoice, error) {
	var out []store.StoredInvoice
	for _, si := range s.stored {
		out = append(out, *si)
	}
	return out, nil
}

func (s *stubService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.stored[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.stored, id)
	return nil
}

func (s *stubService) ExportInvoicesXLSX(ctx context.Context, limit int) ([]byte, error) {
	return []byte("PK-stub"), nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubService) {
	t.Helper()
	svc := newStubService()
	srv := httptest.NewServer(web.NewHandler(svc, ""))
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestParseEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/parse", "application/json",
		strings.NewReader(`{"raw_text":"CAFE\n3.00$\nTOTAL: 3.00$"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var result app.ParseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Invoice.Items) != 1 {
		t.Errorf("items = %d, want 1", len(result.Invoice.Items))
	}
}

func TestParseEndpoint_BadJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/parse", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if id := resp.Header.Get("X-Request-ID"); id == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestScanEndpoint_Multipart(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "receipt.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("not-a-real-jpeg")); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/scan", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestScanEndpoint_MissingFile(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/scan", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestScanEndpoint_UpstreamFailure(t *testing.T) {
	srv, svc := newTestServer(t)
	svc.scanErr = fmt.Errorf("transcription failed")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", "receipt.jpg")
	fw.Write([]byte("x"))
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/scan", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestInvoiceLifecycleEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	client := srv.Client()

	inv := core.Parse("CAFE\n3.00$\nTOTAL: 3.00$")
	body, _ := json.Marshal(inv)

	resp, err := client.Post(srv.URL+"/api/invoices", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d, want 201", resp.StatusCode)
	}
	var saved app.SaveResult
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = client.Get(srv.URL + "/api/invoices/" + saved.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/invoices/"+saved.ID.String(), nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = client.Get(srv.URL + "/api/invoices/" + saved.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGetInvoice_BadID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/invoices/not-a-uuid")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/export")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "invoices.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}
}
