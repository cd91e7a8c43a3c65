package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/config"
	"go.uber.org/zap"
)

// PartyRegistry resolves legal ids to stable party ids.
type PartyRegistry struct {
	client
	log *zap.Logger
}

func NewPartyRegistry(log *zap.Logger, cfg config.Config) *PartyRegistry {
	return &PartyRegistry{
		client: newClient(cfg.Upstream, cfg.Upstream.PartyRegistryURL),
		log:    log.Named("upstream.party_registry"),
	}
}

func (r *PartyRegistry) Resolve(ctx context.Context, legalID string) (string, error) {
	query := url.Values{}
	query.Set("legalId", legalID)

	var out struct {
		PartyID string `json:"partyId"`
	}
	status, err := r.getJSON(ctx, "/v1/parties", query, &out)
	if status == http.StatusNotFound {
		return "", domain.ErrPartyNotFound
	}
	if err != nil {
		return "", err
	}
	if out.PartyID == "" {
		return "", domain.ErrPartyNotFound
	}
	return out.PartyID, nil
}
