package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	customerdomain "github.com/smallbiznis/bizledger/internal/customer/domain"
	employeedomain "github.com/smallbiznis/bizledger/internal/employee/domain"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	projectdomain "github.com/smallbiznis/bizledger/internal/project/domain"
	reportdomain "github.com/smallbiznis/bizledger/internal/report/domain"
	shopdomain "github.com/smallbiznis/bizledger/internal/shop/domain"
	vendordomain "github.com/smallbiznis/bizledger/internal/supplier/domain"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// migrator.Close would close the shared *sql.DB.

	return nil
}

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&accountdomain.Account{},
		&customerdomain.Customer{},
		&vendordomain.Vendor{},
		&employeedomain.Employee{},
		&projectdomain.Project{},
		&projectdomain.MaterialUsage{},
		&projectdomain.LaborRecord{},
		&transactiondomain.Transaction{},
		&expensedomain.Expense{},
		&shopdomain.Product{},
		&shopdomain.Sale{},
		&shopdomain.SaleItem{},
		&reportdomain.ScheduleState{},
		&auditdomain.AuditLog{},
	}
}

// AutoMigrate creates the schema from the models for sqlite and mysql setups.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
