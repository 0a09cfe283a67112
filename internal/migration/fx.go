package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/seed"
	dbpkg "github.com/smallbiznis/bizledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, log *zap.Logger) error {
		log = log.Named("migration")

		switch cfg.DBType {
		case dbpkg.TypePostgres:
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		default:
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}
		log.Info("schema ready", zap.String("db_type", cfg.DBType))

		if !cfg.SeedDefaultAccount {
			return nil
		}
		return seed.EnsureDefaultAccount(conn, node, cfg.DefaultCurrency)
	}),
)
