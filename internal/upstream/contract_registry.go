package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/config"
	"go.uber.org/zap"
)

// ContractRegistry resolves billing contracts per municipality.
type ContractRegistry struct {
	client
	log *zap.Logger
}

func NewContractRegistry(log *zap.Logger, cfg config.Config) *ContractRegistry {
	return &ContractRegistry{
		client: newClient(cfg.Upstream, cfg.Upstream.ContractRegistryURL),
		log:    log.Named("upstream.contract_registry"),
	}
}

func (r *ContractRegistry) Get(ctx context.Context, municipalityID, contractID string) (*domain.Contract, error) {
	query := url.Values{}
	query.Set("municipalityId", municipalityID)
	if contractID != "" {
		query.Set("contractId", contractID)
	}

	var out struct {
		ContractID   string `json:"contractId"`
		IntervalType string `json:"intervalType"`
		CostCenter   string `json:"costCenter"`
		Counterpart  string `json:"counterpart"`
	}
	status, err := r.getJSON(ctx, "/v1/contracts", query, &out)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if out.ContractID == "" {
		return nil, nil
	}
	return &domain.Contract{
		ContractID:   out.ContractID,
		IntervalType: out.IntervalType,
		CostCenter:   out.CostCenter,
		Counterpart:  out.Counterpart,
	}, nil
}
