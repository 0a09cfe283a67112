package transaction

import (
	"github.com/smallbiznis/bizledger/internal/transaction/repository"
	"github.com/smallbiznis/bizledger/internal/transaction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transaction.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
