package customer

import (
	"github.com/smallbiznis/bizledger/internal/customer/repository"
	"github.com/smallbiznis/bizledger/internal/customer/service"
	"go.uber.org/fx"
)

// Module provides customers. The repository is shared with the shop, which
// resolves sale customers through it.
var Module = fx.Module("customer",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
