package audit

import (
	"github.com/smallbiznis/bizledger/internal/audit/repository"
	"github.com/smallbiznis/bizledger/internal/audit/service"
	"go.uber.org/fx"
)

// Module provides the audit trail that every ledger mutation writes to.
var Module = fx.Module("audit",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
