package calcom

import "go.uber.org/fx"

var Module = fx.Module("calcom.client",
	fx.Provide(NewClient),
)
