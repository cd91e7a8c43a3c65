package upstream

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/config"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SourceGateway fetches billing-eligible events from the process platform.
type SourceGateway struct {
	client
	log *zap.Logger
}

func NewSourceGateway(log *zap.Logger, cfg config.Config) *SourceGateway {
	return &SourceGateway{
		client: newClient(cfg.Upstream, cfg.Upstream.SourceGatewayURL),
		log:    log.Named("upstream.source_gateway"),
	}
}

type eventResponse struct {
	FlowInstanceID string            `json:"flowInstanceId"`
	FamilyID       string            `json:"familyId"`
	LegalID        string            `json:"legalId"`
	MunicipalityID string            `json:"municipalityId"`
	Payload        datatypes.JSONMap `json:"payload"`
}

func (r eventResponse) toDomain() domain.RawEvent {
	return domain.RawEvent{
		FlowInstanceID: r.FlowInstanceID,
		FamilyID:       r.FamilyID,
		LegalID:        r.LegalID,
		MunicipalityID: r.MunicipalityID,
		Payload:        r.Payload,
	}
}

func (g *SourceGateway) Fetch(ctx context.Context, familyID string, from, to time.Time) ([]domain.RawEvent, error) {
	query := url.Values{}
	query.Set("familyId", familyID)
	query.Set("fromDate", from.Format("2006-01-02"))
	query.Set("toDate", to.Format("2006-01-02"))

	var out []eventResponse
	if _, err := g.getJSON(ctx, "/v1/events", query, &out); err != nil {
		return nil, err
	}

	events := make([]domain.RawEvent, 0, len(out))
	for _, e := range out {
		events = append(events, e.toDomain())
	}
	return events, nil
}

func (g *SourceGateway) FetchOne(ctx context.Context, flowInstanceID string) (*domain.RawEvent, error) {
	var out eventResponse
	status, err := g.getJSON(ctx, "/v1/events/"+url.PathEscape(flowInstanceID), nil, &out)
	if status == http.StatusNotFound {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	event := out.toDomain()
	return &event, nil
}
