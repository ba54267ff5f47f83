package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vsinha/quoting/pkg/application/dto"
	"github.com/vsinha/quoting/pkg/application/services"
	"github.com/vsinha/quoting/pkg/domain/entities"
	"github.com/vsinha/quoting/pkg/domain/repositories"
	"github.com/vsinha/quoting/pkg/interfaces/cli/output"
	"github.com/vsinha/quoting/pkg/rollup"
)

// Handlers serves the quote rollup API
type Handlers struct {
	svc    *services.QuoteService
	writer repositories.QuoteWriter
}

// NewHandlers creates the API handlers
func NewHandlers(svc *services.QuoteService, writer repositories.QuoteWriter) *Handlers {
	return &Handlers{svc: svc, writer: writer}
}

type errorResponse struct {
	Error string `json:"error"`
}

type recomputeResponse struct {
	QuoteID    string   `json:"quote_id"`
	Generation uint64   `json:"generation"`
	LineIDs    []string `json:"line_ids"`
	Warnings   []string `json:"warnings,omitempty"`
}

type effectsResponse struct {
	QuoteID  string                `json:"quote_id"`
	LineID   string                `json:"line_id"`
	Effects  map[string]int        `json:"effects"`
	Quantity *float64              `json:"quantity,omitempty"`
	Totals   *rollup.CostBreakdown `json:"totals,omitempty"`
}

type eventResponse struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Version int         `json:"version"`
	Time    time.Time   `json:"time"`
	Data    interface{} `json:"data,omitempty"`
}

type valueResponse struct {
	Value float64 `json:"value"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Recompute reloads the quote from storage and rebuilds its effects
func (h *Handlers) Recompute(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "quoteID")

	engine, err := h.svc.Load(r.Context(), quoteID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.recomputed(quoteID, engine))
}

// PutSnapshot accepts a full snapshot from the editor and recomputes it
func (h *Handlers) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "quoteID")

	var snapshot entities.QuoteSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid snapshot: " + err.Error()})
		return
	}
	if snapshot.QuoteID == "" {
		snapshot.QuoteID = quoteID
	}
	if snapshot.QuoteID != quoteID {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quote id in body does not match path"})
		return
	}
	if err := snapshot.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	engine, err := h.svc.Store(r.Context(), h.writer, &snapshot)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.recomputed(quoteID, engine))
}

func (h *Handlers) recomputed(quoteID string, engine *rollup.Engine) recomputeResponse {
	return recomputeResponse{
		QuoteID:    quoteID,
		Generation: h.svc.Generation(quoteID),
		LineIDs:    engine.LineIDs(),
		Warnings:   engine.Warnings(),
	}
}

// Effects reports how many effects each category holds, plus totals when a
// quantity is given
func (h *Handlers) Effects(w http.ResponseWriter, r *http.Request) {
	quoteID, lineID := chi.URLParam(r, "quoteID"), chi.URLParam(r, "lineID")
	if err := h.ensureLoaded(r.Context(), quoteID); err != nil {
		writeServiceError(w, err)
		return
	}

	effects, err := h.svc.Effects(quoteID, lineID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := effectsResponse{
		QuoteID: quoteID,
		LineID:  lineID,
		Effects: make(map[string]int, len(rollup.Categories())),
	}
	for _, c := range rollup.Categories() {
		resp.Effects[c.String()] = effects.Len(c)
	}

	if raw := r.URL.Query().Get("quantity"); raw != "" {
		q, err := parseQuantity(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		engine, err := h.svc.Engine(quoteID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		totals := engine.Totals(lineID, q)
		resp.Quantity = &q
		resp.Totals = &totals
	}

	writeJSON(w, http.StatusOK, resp)
}

// Evaluate sums one category of a line at a quantity
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	quoteID, lineID := chi.URLParam(r, "quoteID"), chi.URLParam(r, "lineID")

	category, err := rollup.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	q, err := parseQuantity(r.URL.Query().Get("quantity"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := h.ensureLoaded(r.Context(), quoteID); err != nil {
		writeServiceError(w, err)
		return
	}
	value, err := h.svc.Evaluate(quoteID, lineID, category, q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{Value: value})
}

// Prices returns the price break of every quantity row of a line
func (h *Handlers) Prices(w http.ResponseWriter, r *http.Request) {
	quoteID, lineID := chi.URLParam(r, "quoteID"), chi.URLParam(r, "lineID")
	if err := h.ensureLoaded(r.Context(), quoteID); err != nil {
		writeServiceError(w, err)
		return
	}

	breaks, err := h.svc.PriceBreaks(quoteID, lineID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breaks)
}

// Rollup returns the whole quote view
func (h *Handlers) Rollup(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "quoteID")
	if err := h.ensureLoaded(r.Context(), quoteID); err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.svc.Rollup(quoteID, services.RollupOptions{})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Events lists the quote's recent recompute history
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "quoteID")

	history, err := h.svc.History(quoteID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]eventResponse, 0, len(history))
	for _, e := range history {
		resp = append(resp, eventResponse{
			ID:      e.ID(),
			Type:    e.Type(),
			Version: e.Version(),
			Time:    e.Timestamp(),
			Data:    e.Data(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ExportExcel(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", output.GenerateExcel)
}

func (h *Handlers) ExportPDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "pdf", "application/pdf", output.GeneratePDF)
}

func (h *Handlers) export(w http.ResponseWriter, r *http.Request, ext, contentType string, render func(*dto.QuoteRollup) ([]byte, error)) {
	quoteID := chi.URLParam(r, "quoteID")
	if err := h.ensureLoaded(r.Context(), quoteID); err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.svc.Rollup(quoteID, services.RollupOptions{})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	data, err := render(result)
	if err != nil {
		log.Printf("[http] export %s for quote %s failed: %v", ext, quoteID, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: ext + " generation failed"})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="quote_`+quoteID+`.`+ext+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ensureLoaded recomputes a quote on first access. A load superseded by a
// newer recompute serves whatever that recompute committed.
func (h *Handlers) ensureLoaded(ctx context.Context, quoteID string) error {
	if _, err := h.svc.Engine(quoteID); !errors.Is(err, services.ErrQuoteNotLoaded) {
		return err
	}

	_, err := h.svc.Load(ctx, quoteID)
	if errors.Is(err, services.ErrStaleRecompute) {
		if _, err = h.svc.Engine(quoteID); errors.Is(err, services.ErrQuoteNotLoaded) {
			_, err = h.svc.Load(ctx, quoteID)
		}
	}
	return err
}

func parseQuantity(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("quantity is required")
	}
	q, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("invalid quantity: " + raw)
	}
	return q, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrStaleRecompute):
		status = http.StatusConflict
	case errors.Is(err, rollup.ErrAssemblyCycle):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, repositories.ErrQuoteNotFound),
		errors.Is(err, services.ErrQuoteNotLoaded),
		errors.Is(err, services.ErrLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("[http] %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}
