// Package audit records field changes on stored deals.
package audit

import (
	"context"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/metrics"
)

const (
	dealsTable     = "deals"
	salesRepColumn = "sales_rep"
)

// Hook writes an audit row whenever a deal's sales rep changes.
// It runs inside the store's update call and never fails the update:
// write errors are logged and dropped.
// ⭐ SSOT: 감사 로그 기록은 여기서만
type Hook struct {
	logs    contracts.AuditLogStore
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewHook creates an audit hook writing to logs. m may be nil.
func NewHook(logs contracts.AuditLogStore, log *logger.Logger, m *metrics.Metrics) *Hook {
	return &Hook{logs: logs, logger: log, metrics: m}
}

// AfterUpdate implements contracts.MutationHook
func (h *Hook) AfterUpdate(ctx context.Context, before, after contracts.Deal) {
	if before.SalesRep == after.SalesRep {
		return
	}

	log := logger.FromContext(ctx, h.logger).WithFields(map[string]interface{}{
		"deal_id":            after.DealID,
		"previous_sales_rep": before.SalesRep,
		"new_sales_rep":      after.SalesRep,
	})

	entry := &contracts.AuditLog{
		TableName:     dealsTable,
		ColumnName:    salesRepColumn,
		PreviousValue: before.SalesRep,
		NewValue:      after.SalesRep,
	}
	if err := h.logs.InsertAuditLog(ctx, entry); err != nil {
		log.WithError(err).Error("Failed to create audit log for sales_rep change")
		return
	}

	if h.metrics != nil {
		h.metrics.AuditLogsWritten.Inc()
	}
	log.WithField("audit_log_id", entry.ID).Info("Audit log created for sales_rep change")
}
