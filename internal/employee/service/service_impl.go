package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/employee/domain"
	"github.com/smallbiznis/bizledger/pkg/db/option"
	"github.com/smallbiznis/bizledger/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     repository.Repository[domain.Employee]
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     repository.Repository[domain.Employee]
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("employee.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEmployeeRequest) (domain.Employee, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Employee{}, domain.ErrInvalidName
	}
	email := optionalString(req.Email)
	if email != nil && !strings.Contains(*email, "@") {
		return domain.Employee{}, domain.ErrInvalidEmail
	}
	if req.Salary != nil && req.Salary.IsNegative() {
		return domain.Employee{}, domain.ErrInvalidSalary
	}

	now := time.Now().UTC()
	employee := domain.Employee{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		Phone:     optionalString(req.Phone),
		Address:   optionalString(req.Address),
		Position:  optionalString(req.Position),
		Salary:    req.Salary,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTrx(tx).Create(ctx, &employee); err != nil {
			return err
		}
		if s.auditSvc == nil {
			return nil
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			Action:   "employee.create",
			Target:   auditdomain.TargetEmployee,
			TargetID: employee.ID,
			Metadata: map[string]any{"name": employee.Name, "position": req.Position},
		})
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return employee, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEmployeeRequest) ([]domain.Employee, error) {
	opts := []option.QueryOption{option.WithSortBy("name", false)}
	if name := strings.ToLower(strings.TrimSpace(req.Name)); name != "" {
		opts = append(opts, option.WithWhere("LOWER(name) LIKE ?", "%"+name+"%"))
	}
	if req.ActiveOnly {
		opts = append(opts, option.WithWhere("is_active = ?", true))
	}

	items, err := s.repo.List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	employees := make([]domain.Employee, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		employees = append(employees, *item)
	}
	return employees, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Employee, error) {
	employeeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || employeeID == 0 {
		return domain.Employee{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		return domain.Employee{}, err
	}
	if item == nil {
		return domain.Employee{}, domain.ErrNotFound
	}
	return *item, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
