package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/account/domain"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/events"
	"github.com/smallbiznis/bizledger/pkg/db"
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
	Events   events.Publisher    `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	auditSvc auditdomain.Service
	events   events.Publisher
}

func New(p Params) domain.Service {
	publisher := p.Events
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("account.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
		events:   publisher,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAccountRequest) (domain.Account, error) {
	var invalid []error
	name := strings.TrimSpace(req.Name)
	if name == "" {
		invalid = append(invalid, domain.ErrInvalidName)
	}

	accountType := domain.AccountType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if !accountType.Valid() {
		invalid = append(invalid, domain.ErrInvalidType)
	}

	balance := decimal.Zero
	if req.Balance != nil {
		balance = *req.Balance
	}
	if balance.IsNegative() {
		invalid = append(invalid, domain.ErrInvalidBalance)
	}

	currency, err := normalizeCurrency(req.Currency)
	if err != nil {
		invalid = append(invalid, err)
	}
	// Every failing field is reported, not only the first.
	if len(invalid) > 0 {
		return domain.Account{}, errors.Join(invalid...)
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:            s.genID.Generate(),
		Name:          name,
		Type:          accountType,
		Balance:       balance,
		Currency:      currency,
		AccountNumber: optionalString(req.AccountNumber),
		Description:   optionalString(req.Description),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &account); err != nil {
			return err
		}
		return s.audit(ctx, tx, "account.create", account.ID, map[string]any{
			"name":          account.Name,
			"type":          string(account.Type),
			"balance":       account.Balance.String(),
			"accountNumber": req.AccountNumber,
		})
	})
	if err != nil {
		return domain.Account{}, err
	}

	s.events.Publish(ctx, events.New(events.TypeAccountUpdated, events.TopicAccounts).WithAccounts(int64(account.ID)))
	return account, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAccountRequest) ([]domain.Account, error) {
	filter := domain.ListFilter{ActiveOnly: req.ActiveOnly}
	if raw := strings.TrimSpace(req.Type); raw != "" {
		accountType := domain.AccountType(strings.ToUpper(raw))
		if !accountType.Valid() {
			return nil, domain.ErrInvalidType
		}
		filter.Type = accountType
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		accounts = append(accounts, *item)
	}
	return accounts, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Account, error) {
	accountID, err := parseID(id)
	if err != nil {
		return domain.Account{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if item == nil {
		return domain.Account{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateAccountRequest) (domain.Account, error) {
	accountID, err := parseID(id)
	if err != nil {
		return domain.Account{}, err
	}

	var updated domain.Account
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		var invalid []error
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				invalid = append(invalid, domain.ErrInvalidName)
			}
			item.Name = name
		}
		if req.Type != nil {
			accountType := domain.AccountType(strings.ToUpper(strings.TrimSpace(*req.Type)))
			if !accountType.Valid() {
				invalid = append(invalid, domain.ErrInvalidType)
			}
			item.Type = accountType
		}
		if req.Currency != nil {
			currency, err := normalizeCurrency(*req.Currency)
			if err != nil {
				invalid = append(invalid, err)
			}
			item.Currency = currency
		}
		if len(invalid) > 0 {
			return errors.Join(invalid...)
		}
		if req.AccountNumber != nil {
			item.AccountNumber = optionalString(*req.AccountNumber)
		}
		if req.Description != nil {
			item.Description = optionalString(*req.Description)
		}
		if req.IsActive != nil {
			item.IsActive = *req.IsActive
		}
		item.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		updated = *item
		return s.audit(ctx, tx, "account.update", item.ID, map[string]any{
			"name":     item.Name,
			"type":     string(item.Type),
			"isActive": item.IsActive,
		})
	})
	if err != nil {
		return domain.Account{}, err
	}

	s.events.Publish(ctx, events.New(events.TypeAccountUpdated, events.TopicAccounts).WithAccounts(int64(updated.ID)))
	return updated, nil
}

// Delete refuses to remove an account that any transaction still references.
func (s *Service) Delete(ctx context.Context, id string) error {
	accountID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		refs, err := s.repo.CountTransactionRefs(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrAccountInUse
		}

		if err := s.repo.Delete(ctx, tx, accountID); err != nil {
			if db.IsForeignKeyErr(err) {
				return domain.ErrAccountInUse
			}
			return err
		}
		return s.audit(ctx, tx, "account.delete", accountID, map[string]any{"name": item.Name})
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, events.New(events.TypeAccountUpdated, events.TopicAccounts).WithAccounts(int64(accountID)))
	return nil
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, action string, id snowflake.ID, metadata map[string]any) error {
	if s.auditSvc == nil {
		return nil
	}
	return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
		Action:   action,
		Target:   auditdomain.TargetAccount,
		TargetID: id,
		Metadata: metadata,
	})
}

func normalizeCurrency(raw string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if currency == "" {
		return domain.DefaultCurrency, nil
	}
	for _, supported := range domain.SupportedCurrencies {
		if currency == supported {
			return currency, nil
		}
	}
	return "", domain.ErrInvalidCurrency
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
