package design

import (
	"github.com/inkhaus/studio/internal/design/service"
	"go.uber.org/fx"
)

var Module = fx.Module("design.service",
	fx.Provide(service.New),
)
