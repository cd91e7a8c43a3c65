package decorator

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"go.uber.org/zap"
)

const FamilyCustomerInvoice = "customer-invoice-form"

// CustomerInvoiceDecorator enriches customer invoice events. External
// recipients (private persons) get their party id resolved from the legal id;
// internal municipality-to-municipality records pass through unchanged.
type CustomerInvoiceDecorator struct {
	log      *zap.Logger
	identity domain.IdentityResolver
}

func NewCustomerInvoiceDecorator(log *zap.Logger, identity domain.IdentityResolver) *CustomerInvoiceDecorator {
	return &CustomerInvoiceDecorator{
		log:      log.Named("decorator.customer_invoice"),
		identity: identity,
	}
}

func (d *CustomerInvoiceDecorator) FamilyID() string { return FamilyCustomerInvoice }

func (d *CustomerInvoiceDecorator) Decorate(ctx context.Context, wrapper *domain.Wrapper) error {
	if !wrapper.IsRecipientPrivatePerson {
		return nil
	}

	partyID, err := d.identity.Resolve(ctx, wrapper.LegalID)
	if err != nil {
		return fmt.Errorf("resolve party for flow instance %s: %w", wrapper.FlowInstanceID, err)
	}

	wrapper.Record.Recipient.PartyID = partyID
	d.log.Debug("party id resolved",
		zap.String("flow_instance_id", wrapper.FlowInstanceID),
	)
	return nil
}
