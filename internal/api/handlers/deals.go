package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/dealflow/internal/analytics"
	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/dates"
	"github.com/wonny/dealflow/internal/deals"
	"github.com/wonny/dealflow/internal/export"
	"github.com/wonny/dealflow/pkg/logger"
)

// maxBodyBytes bounds a POST /api/deals payload (batches included)
const maxBodyBytes = 10 << 20

// DealHandler serves ingestion and the dashboard views
// ⭐ SSOT: Deal API 핸들러는 이 구조체에서만
type DealHandler struct {
	pipeline   *deals.Pipeline
	reassigner *deals.Reassigner
	store      contracts.DealStore
	dates      dates.Parser
	logger     *logger.Logger
}

// NewDealHandler creates a new deal handler
func NewDealHandler(
	pipeline *deals.Pipeline,
	reassigner *deals.Reassigner,
	store contracts.DealStore,
	parser dates.Parser,
	log *logger.Logger,
) *DealHandler {
	return &DealHandler{
		pipeline:   pipeline,
		reassigner: reassigner,
		store:      store,
		dates:      parser,
		logger:     log,
	}
}

// decodeBody reads exactly one JSON value; anything after it is an error
func decodeBody(r io.Reader) (interface{}, error) {
	dec := json.NewDecoder(r)

	var body interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return body, nil
}

// Create ingests one deal (JSON object) or a batch (JSON array)
// POST /api/deals
func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, h.logger)

	body, err := decodeBody(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		// Unreadable payloads share the internal error response
		log.WithError(err).Warn("Failed to parse deal payload")
		respondError(w, http.StatusInternalServerError, contracts.MsgInternalError)
		return
	}

	if batch, ok := body.([]interface{}); ok {
		result, err := h.pipeline.IngestMany(ctx, batch)
		if err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"processed": result.Success + len(result.Errors),
				"total":     len(batch),
			}).Warn("Batch ingestion interrupted")
		}
		respondJSON(w, http.StatusMultiStatus, result)
		return
	}

	result := h.pipeline.IngestOne(ctx, body)
	switch {
	case result.Accepted():
		respondJSON(w, http.StatusCreated, map[string]string{"deal_id": result.DealID})
	case result.Reason == contracts.RejectInternal:
		respondError(w, http.StatusInternalServerError, result.ErrorPayload())
	default:
		respondError(w, http.StatusBadRequest, result.ErrorPayload())
	}
}

// load reads every stored deal, answering 500 itself on failure
func (h *DealHandler) load(w http.ResponseWriter, r *http.Request) ([]contracts.Deal, bool) {
	all, err := h.store.FindAll(r.Context())
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).Error("Failed to load deals")
		respondError(w, http.StatusInternalServerError, contracts.MsgInternalError)
		return nil, false
	}
	return all, true
}

// Analytics returns deals grouped by stage
// GET /api/deals
func (h *DealHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	all, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, analytics.Aggregate(all))
}

// Metrics returns the KPI cards
// GET /api/deals/metrics
func (h *DealHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	all, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, analytics.ComputeMetrics(analytics.Aggregate(all)))
}

// Funnel returns the per-stage funnel bars
// GET /api/deals/funnel
func (h *DealHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	all, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, analytics.BuildFunnel(analytics.Aggregate(all)))
}

func listOptions(r *http.Request) analytics.ListOptions {
	q := r.URL.Query()
	return analytics.ListOptions{
		Search:    q.Get("q"),
		SortField: q.Get("sort"),
		Direction: analytics.SortDirection(strings.ToLower(q.Get("dir"))),
	}
}

// List returns deals filtered by ?q= and ordered by ?sort=&dir=
// GET /api/deals/list
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	all, ok := h.load(w, r)
	if !ok {
		return
	}

	result, err := analytics.ListDeals(all, listOptions(r), h.dates)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Export streams the listed deals as an Excel workbook
// GET /api/deals/export
func (h *DealHandler) Export(w http.ResponseWriter, r *http.Request) {
	all, ok := h.load(w, r)
	if !ok {
		return
	}

	result, err := analytics.ListDeals(all, listOptions(r), h.dates)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="deals.xlsx"`)
	if err := export.WriteDealsXLSX(w, result.Deals); err != nil {
		// Headers are already out; all that is left is to log
		logger.FromContext(r.Context(), h.logger).WithError(err).Error("Failed to write deals export")
	}
}

// Schema returns the declarative deal schema
// GET /api/deals/schema
func (h *DealHandler) Schema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"fields": deals.DealSchema,
	})
}

// ReassignRequest is the PATCH body for a sales rep change
type ReassignRequest struct {
	SalesRep string `json:"sales_rep"`
}

// ReassignSalesRep moves a deal to another sales rep
// PATCH /api/deals/{dealID}/sales-rep
func (h *DealHandler) ReassignSalesRep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dealID := mux.Vars(r)["dealID"]

	var req ReassignRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deal, err := h.reassigner.ReassignSalesRep(ctx, dealID, req.SalesRep)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, deal)
	case errors.Is(err, deals.ErrDealNotFound):
		respondError(w, http.StatusNotFound, "Deal not found")
	case errors.Is(err, deals.ErrInvalidSalesRep):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.FromContext(ctx, h.logger).WithError(err).WithField("deal_id", dealID).Error("Failed to reassign deal")
		respondError(w, http.StatusInternalServerError, contracts.MsgInternalError)
	}
}
