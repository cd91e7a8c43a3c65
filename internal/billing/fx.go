package billing

import (
	"github.com/smallbiznis/billcollect/internal/billing/decorator"
	"github.com/smallbiznis/billcollect/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(decorator.NewCustomerInvoiceDecorator),
	fx.Provide(decorator.NewInternalInvoiceDecorator),
	fx.Provide(newRegistry),
	fx.Provide(service.New),
)

type registryParams struct {
	fx.In

	CustomerInvoice *decorator.CustomerInvoiceDecorator
	InternalInvoice *decorator.InternalInvoiceDecorator
}

func newRegistry(p registryParams) (*decorator.Registry, error) {
	return decorator.NewRegistry(p.CustomerInvoice, p.InternalInvoice)
}
