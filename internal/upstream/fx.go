package upstream

import (
	"github.com/smallbiznis/billcollect/internal/billing/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("upstream",
	fx.Provide(
		fx.Annotate(NewSourceGateway, fx.As(new(domain.SourceCollector))),
		fx.Annotate(NewPartyRegistry, fx.As(new(domain.IdentityResolver))),
		fx.Annotate(NewContractRegistry, fx.As(new(domain.ContractLookup))),
		fx.Annotate(NewInvoicingSink, fx.As(new(domain.RecordSink))),
	),
)
