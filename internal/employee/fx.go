package employee

import (
	"github.com/smallbiznis/bizledger/internal/employee/domain"
	"github.com/smallbiznis/bizledger/internal/employee/service"
	"github.com/smallbiznis/bizledger/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.service",
	fx.Provide(repository.ProvideStore[domain.Employee]),
	fx.Provide(service.New),
)
