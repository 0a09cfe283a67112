package shop

import (
	"github.com/smallbiznis/bizledger/internal/shop/repository"
	"github.com/smallbiznis/bizledger/internal/shop/service"
	"go.uber.org/fx"
)

var Module = fx.Module("shop.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
