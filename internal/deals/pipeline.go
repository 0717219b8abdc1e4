package deals

import (
	"context"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/metrics"
)

// Pipeline runs validate → duplicate check → persist for incoming deals
// ⭐ SSOT: Deal 생성 경로는 여기서만 (seed 제외)
type Pipeline struct {
	validator  *Validator
	duplicates *DuplicateChecker
	store      contracts.DealStore
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// NewPipeline creates a pipeline writing to store. m may be nil.
func NewPipeline(store contracts.DealStore, validator *Validator, log *logger.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		validator:  validator,
		duplicates: NewDuplicateChecker(store),
		store:      store,
		logger:     log,
		metrics:    m,
	}
}

// IngestOne runs a single input through the pipeline. Every outcome is data;
// storage failures are logged here and reported as RejectInternal.
func (p *Pipeline) IngestOne(ctx context.Context, input any) contracts.IngestResult {
	log := logger.FromContext(ctx, p.logger)

	// 1. Validate
	deal, failures := p.validator.Validate(input)
	if len(failures) > 0 {
		dealID := ExtractDealID(input)
		log.WithFields(map[string]interface{}{
			"deal_id":  dealID,
			"failures": len(failures),
		}).Debug("Deal failed validation")
		p.metrics.ObserveIngest(metrics.OutcomeValidation)
		return contracts.IngestResult{
			Status:   contracts.IngestRejected,
			DealID:   dealID,
			Reason:   contracts.RejectValidation,
			Failures: failures,
		}
	}

	// 2. Duplicate check
	exists, err := p.duplicates.Exists(ctx, deal.DealID)
	if err != nil {
		return p.internal(log, deal.DealID, err)
	}
	if exists {
		log.WithField("deal_id", deal.DealID).Info("Duplicate deal rejected")
		p.metrics.ObserveIngest(metrics.OutcomeDuplicate)
		return contracts.IngestResult{
			Status: contracts.IngestRejected,
			DealID: deal.DealID,
			Reason: contracts.RejectDuplicate,
		}
	}

	// 3. Persist
	if err := p.store.Insert(ctx, &deal); err != nil {
		return p.internal(log, deal.DealID, err)
	}

	p.metrics.ObserveIngest(metrics.OutcomeAccepted)
	return contracts.IngestResult{
		Status: contracts.IngestAccepted,
		DealID: deal.DealID,
	}
}

// IngestMany runs each input through IngestOne in order. A rejected element never
// stops the batch; a cancelled context does, and the partial result is returned
// with the context error. Elements already persisted stay persisted.
func (p *Pipeline) IngestMany(ctx context.Context, inputs []any) (contracts.BatchResult, error) {
	result := contracts.BatchResult{Errors: []contracts.BatchError{}}

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome := p.IngestOne(ctx, input)
		if outcome.Accepted() {
			result.Success++
			continue
		}
		result.Errors = append(result.Errors, contracts.BatchError{
			DealID: outcome.DealID,
			Error:  outcome.ErrorPayload(),
		})
	}

	return result, nil
}

func (p *Pipeline) internal(log *logger.Logger, dealID string, err error) contracts.IngestResult {
	log.WithError(err).WithField("deal_id", dealID).Error("Deal ingestion failed")
	p.metrics.ObserveIngest(metrics.OutcomeInternal)
	return contracts.IngestResult{
		Status: contracts.IngestRejected,
		DealID: dealID,
		Reason: contracts.RejectInternal,
	}
}
