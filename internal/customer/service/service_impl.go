package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/customer/domain"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("customer.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.Customer{}, err
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		Phone:     optionalString(req.Phone),
		Address:   optionalString(req.Address),
		Company:   optionalString(req.Company),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, &customer); err != nil {
			return err
		}
		return s.audit(ctx, tx, "customer.create", customer)
	})
	if err != nil {
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customerID, err := s.parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}

	var updated domain.Customer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return domain.ErrInvalidName
			}
			item.Name = name
		}
		if req.Email != nil {
			email, err := normalizeEmail(*req.Email)
			if err != nil {
				return err
			}
			item.Email = email
		}
		if req.Phone != nil {
			item.Phone = optionalString(*req.Phone)
		}
		if req.Address != nil {
			item.Address = optionalString(*req.Address)
		}
		if req.Company != nil {
			item.Company = optionalString(*req.Company)
		}
		item.UpdatedAt = time.Now().UTC()

		if err := s.repo.Save(ctx, tx, item); err != nil {
			return err
		}
		updated = *item
		return s.audit(ctx, tx, "customer.update", *item)
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Search:      strings.TrimSpace(req.Search),
		Name:        strings.ToLower(strings.TrimSpace(req.Name)),
		Email:       strings.TrimSpace(req.Email),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}

	if _, err := pagination.ParseToken(req.PageToken); err != nil {
		return domain.ListCustomerResponse{}, domain.ErrInvalidPageToken
	}
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: int(req.PageSize)}

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Size(), func(customer *domain.Customer) string {
		return pagination.Token(customer.ID, customer.CreatedAt)
	})

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	resp := domain.ListCustomerResponse{Customers: customers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, action string, customer domain.Customer) error {
	if s.auditSvc == nil {
		return nil
	}
	metadata := map[string]any{"name": customer.Name}
	if customer.Email != nil {
		metadata["email"] = *customer.Email
	}
	if customer.Phone != nil {
		metadata["phone"] = *customer.Phone
	}
	return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
		Action:   action,
		Target:   auditdomain.TargetCustomer,
		TargetID: customer.ID,
		Metadata: metadata,
	})
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeEmail(raw string) (*string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return nil, nil
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return nil, domain.ErrInvalidEmail
	}
	return &email, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
