package handlers

import (
	"fmt"
	"net/http"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/internal/seed"
	"github.com/wonny/dealflow/pkg/logger"
)

// SampleSource yields the deals loaded by POST /api/seed
type SampleSource func() ([]contracts.Deal, error)

// AdminHandler serves seeding and the audit/snapshot history
type AdminHandler struct {
	store   contracts.Store
	seeder  *seed.Seeder
	samples SampleSource
	logger  *logger.Logger
}

// NewAdminHandler creates a new admin handler. A nil samples uses the embedded sample pipeline.
func NewAdminHandler(store contracts.Store, seeder *seed.Seeder, samples SampleSource, log *logger.Logger) *AdminHandler {
	if samples == nil {
		samples = seed.SampleDeals
	}
	return &AdminHandler{
		store:   store,
		seeder:  seeder,
		samples: samples,
		logger:  log,
	}
}

// Seed replaces every stored deal with the sample pipeline
// POST /api/seed
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.logger)

	samples, err := h.samples()
	if err == nil {
		var count int
		count, err = h.seeder.Seed(r.Context(), samples)
		if err == nil {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"message": fmt.Sprintf("Successfully seeded %d deals", count),
				"count":   count,
			})
			return
		}
	}

	log.WithError(err).Error("Failed to seed database")
	respondError(w, http.StatusInternalServerError, "Failed to seed database")
}

// AuditLogs returns the newest audit rows first
// GET /api/audit-logs?limit=
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	logs, err := h.store.ListAuditLogs(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).Error("Failed to list audit logs")
		respondError(w, http.StatusInternalServerError, contracts.MsgInternalError)
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// Snapshots returns the newest daily pipeline snapshots first
// GET /api/analytics/snapshots?limit=
func (h *AdminHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	snapshots, err := h.store.ListSnapshots(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).Error("Failed to list snapshots")
		respondError(w, http.StatusInternalServerError, contracts.MsgInternalError)
		return
	}

	respondJSON(w, http.StatusOK, snapshots)
}
