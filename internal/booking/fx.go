package booking

import (
	"github.com/inkhaus/studio/internal/booking/repository"
	"github.com/inkhaus/studio/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
