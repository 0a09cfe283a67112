package project

import (
	"github.com/smallbiznis/bizledger/internal/project/repository"
	"github.com/smallbiznis/bizledger/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
