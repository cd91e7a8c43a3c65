package decorator

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"go.uber.org/zap"
)

const FamilyInternalInvoice = "internal-invoice-form"

// InternalInvoiceDecorator stamps counterparty accounting coordinates on
// municipality-to-municipality records from the billing contract.
type InternalInvoiceDecorator struct {
	log       *zap.Logger
	contracts domain.ContractLookup
}

func NewInternalInvoiceDecorator(log *zap.Logger, contracts domain.ContractLookup) *InternalInvoiceDecorator {
	return &InternalInvoiceDecorator{
		log:       log.Named("decorator.internal_invoice"),
		contracts: contracts,
	}
}

func (d *InternalInvoiceDecorator) FamilyID() string { return FamilyInternalInvoice }

func (d *InternalInvoiceDecorator) Decorate(ctx context.Context, wrapper *domain.Wrapper) error {
	contract, err := d.contracts.Get(ctx, wrapper.MunicipalityID, wrapper.Record.Recipient.OrganizationID)
	if err != nil {
		return fmt.Errorf("lookup contract for flow instance %s: %w", wrapper.FlowInstanceID, err)
	}
	if contract == nil {
		return domain.ErrContractNotFound
	}

	for i := range wrapper.Record.Rows {
		wrapper.Record.Rows[i].AccountInformation.CostCenter = contract.CostCenter
		wrapper.Record.Rows[i].AccountInformation.CounterpartyID = contract.Counterpart
	}
	return nil
}
