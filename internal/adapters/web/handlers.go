package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"receipt-engine/internal/app"
	"receipt-engine/internal/core"
	"receipt-engine/internal/store"
)

// maxBodyBytes caps request bodies; receipt images stay well under this.
const maxBodyBytes = 10 << 20

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(maxBodyBytes))

	r.Get("/api/health", h.health)

	r.Post("/api/parse", h.parseText)
	r.Post("/api/validate", h.validateInvoice)
	r.Post("/api/corrections/apply", h.applyCorrections)
	r.Post("/api/scan", h.scanImage)

	r.Post("/api/invoices", h.saveInvoice)
	r.Get("/api/invoices", h.listInvoices)
	r.Get("/api/invoices/{id}", h.getInvoice)
	r.Delete("/api/invoices/{id}", h.deleteInvoice)
	r.Get("/api/export", h.exportInvoices)

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type parseRequest struct {
	RawText string `json:"raw_text"`
}

func (h *Handler) parseText(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.ParseText(r.Context(), req.RawText)
	if err != nil {
		writeError(w, r, err.Error(), "PARSE_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) validateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv core.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.ValidateInvoice(r.Context(), inv)
	if err != nil {
		writeError(w, r, err.Error(), "VALIDATE_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

type applyCorrectionsRequest struct {
	Invoice    core.Invoice          `json:"invoice"`
	Validation core.ValidationResult `json:"validation"`
}

func (h *Handler) applyCorrections(w http.ResponseWriter, r *http.Request) {
	var req applyCorrectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.ApplyCorrections(r.Context(), req.Invoice, req.Validation)
	if err != nil {
		writeError(w, r, err.Error(), "APPLY_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// scanImage accepts a multipart upload under the "image" field, runs the
// vision transcription, and returns the parsed and validated invoice.
func (h *Handler) scanImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeError(w, r, "invalid multipart body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, "missing image field", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, "failed to read upload", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	result, err := h.svc.ScanImage(r.Context(), app.Attachment{MimeType: mimeType, Data: data})
	if err != nil {
		writeError(w, r, err.Error(), "SCAN_FAILED", http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) saveInvoice(w http.ResponseWriter, r *http.Request) {
	var inv core.Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.SaveInvoice(r.Context(), inv)
	if err != nil {
		writeError(w, r, err.Error(), "SAVE_FAILED", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, r, "invalid limit", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := h.svc.ListInvoices(r.Context(), limit)
	if err != nil {
		writeError(w, r, err.Error(), "LIST_FAILED", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []store.StoredInvoice{}
	}
	writeJSON(w, list)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid invoice id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	si, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, "invoice not found", "NOT_FOUND", http.StatusNotFound)
			return
		}
		writeError(w, r, err.Error(), "GET_FAILED", http.StatusInternalServerError)
		return
	}
	writeJSON(w, si)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid invoice id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, "invoice not found", "NOT_FOUND", http.StatusNotFound)
			return
		}
		writeError(w, r, err.Error(), "DELETE_FAILED", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportInvoices(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, r, "invalid limit", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}
	data, err := h.svc.ExportInvoicesXLSX(r.Context(), limit)
	if err != nil {
		writeError(w, r, err.Error(), "EXPORT_FAILED", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	_, _ = w.Write(data)
}
