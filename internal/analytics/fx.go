package analytics

import (
	"github.com/inkhaus/studio/internal/analytics/repository"
	"github.com/inkhaus/studio/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
