package jobstate

import (
	"github.com/smallbiznis/billcollect/internal/jobstate/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("jobstate",
	fx.Provide(repository.Provide),
)
