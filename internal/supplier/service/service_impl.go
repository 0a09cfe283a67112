package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/supplier/domain"
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
	Repo     repository.Repository[domain.Vendor]
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     repository.Repository[domain.Vendor]
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("vendor.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateVendorRequest) (domain.Vendor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Vendor{}, domain.ErrInvalidName
	}
	email := optionalString(req.Email)
	if email != nil && !strings.Contains(*email, "@") {
		return domain.Vendor{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	vendor := domain.Vendor{
		ID:            s.genID.Generate(),
		Name:          name,
		ContactPerson: optionalString(req.ContactPerson),
		Email:         email,
		Phone:         optionalString(req.Phone),
		Address:       optionalString(req.Address),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTrx(tx).Create(ctx, &vendor); err != nil {
			return err
		}
		if s.auditSvc == nil {
			return nil
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			Action:   "vendor.create",
			Target:   auditdomain.TargetVendor,
			TargetID: vendor.ID,
			Metadata: map[string]any{"name": vendor.Name},
		})
	})
	if err != nil {
		return domain.Vendor{}, err
	}
	return vendor, nil
}

func (s *Service) List(ctx context.Context, name string) ([]domain.Vendor, error) {
	opts := []option.QueryOption{option.WithSortBy("name", false)}
	if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
		opts = append(opts, option.WithWhere("LOWER(name) LIKE ?", "%"+name+"%"))
	}

	items, err := s.repo.List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	vendors := make([]domain.Vendor, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		vendors = append(vendors, *item)
	}
	return vendors, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Vendor, error) {
	vendorID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || vendorID == 0 {
		return domain.Vendor{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, vendorID)
	if err != nil {
		return domain.Vendor{}, err
	}
	if item == nil {
		return domain.Vendor{}, domain.ErrNotFound
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
