package supplier

import (
	"github.com/smallbiznis/bizledger/internal/supplier/domain"
	"github.com/smallbiznis/bizledger/internal/supplier/service"
	"github.com/smallbiznis/bizledger/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("supplier.service",
	fx.Provide(repository.ProvideStore[domain.Vendor]),
	fx.Provide(service.New),
)
