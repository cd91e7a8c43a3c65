package scheduledbilling

import (
	"github.com/smallbiznis/billcollect/internal/scheduledbilling/repository"
	"github.com/smallbiznis/billcollect/internal/scheduledbilling/service"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduledbilling.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
