package sync

import (
	bookingdomain "github.com/inkhaus/studio/internal/booking/domain"
	"github.com/inkhaus/studio/internal/calcom"
	"github.com/inkhaus/studio/internal/clock"
	"github.com/inkhaus/studio/internal/config"
	"github.com/inkhaus/studio/internal/realtime"
	"github.com/inkhaus/studio/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleParams struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Cfg     config.Config
	Client  *calcom.Client
	Repo    bookingdomain.Repository
	Hub     *realtime.Hub      `optional:"true"`
	Metrics *telemetry.Metrics `optional:"true"`
}

var Module = fx.Module("sync",
	fx.Provide(func(p moduleParams) *Service {
		return New(Params{
			Log:             p.Log,
			Clock:           p.Clock,
			Source:          p.Client,
			Repo:            p.Repo,
			Hub:             p.Hub,
			Metrics:         p.Metrics,
			DefaultPageSize: p.Cfg.SyncPageSize,
		})
	}),
)
