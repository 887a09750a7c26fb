package session

import (
	"github.com/SeredDEV/store-payments/internal/session/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("session",
	fx.Provide(repository.Provide),
)
