package upstream

import (
	"context"

	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/config"
	"go.uber.org/zap"
)

// InvoicingSink forwards canonical records downstream. The sink deduplicates
// on sourceReference, so resubmitting after a crash is safe.
type InvoicingSink struct {
	client
	log *zap.Logger
}

func NewInvoicingSink(log *zap.Logger, cfg config.Config) *InvoicingSink {
	return &InvoicingSink{
		client: newClient(cfg.Upstream, cfg.Upstream.InvoicingSinkURL),
		log:    log.Named("upstream.invoicing_sink"),
	}
}

func (s *InvoicingSink) Submit(ctx context.Context, record *domain.CanonicalBillingRecord) error {
	_, err := s.postJSON(ctx, "/v1/billing-records", record, nil)
	if err != nil {
		return err
	}
	s.log.Debug("record submitted",
		zap.String("source_reference", record.SourceReference),
	)
	return nil
}
