package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/events"
	"github.com/smallbiznis/bizledger/internal/expense/domain"
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
		log:      p.Log.Named("expense.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
		events:   publisher,
	}
}

func (s *Service) Create(ctx context.Context, req domain.ExpenseRequest) (domain.Expense, error) {
	now := time.Now().UTC()
	expense := domain.Expense{
		ID:        s.genID.Generate(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyRequest(&expense, req, now); err != nil {
		return domain.Expense{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkReferences(ctx, tx, expense); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, &expense); err != nil {
			return err
		}
		return s.audit(ctx, tx, "expense.create", expense)
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.publish(ctx, expense.ProjectID)
	return expense, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.ExpenseRequest) (domain.Expense, error) {
	expenseID, err := parseID(id)
	if err != nil {
		return domain.Expense{}, err
	}

	var (
		updated         domain.Expense
		previousProject *snowflake.ID
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, expenseID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		previousProject = item.ProjectID

		if err := applyRequest(item, req, item.ExpenseDate); err != nil {
			return err
		}
		item.UpdatedAt = time.Now().UTC()
		if err := s.checkReferences(ctx, tx, *item); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		updated = *item
		return s.audit(ctx, tx, "expense.update", *item)
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.publish(ctx, updated.ProjectID)
	if previousProject != nil && (updated.ProjectID == nil || *previousProject != *updated.ProjectID) {
		s.publish(ctx, previousProject)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	expenseID, err := parseID(id)
	if err != nil {
		return err
	}

	var removed domain.Expense
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, expenseID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		removed = *item
		if err := s.repo.Delete(ctx, tx, expenseID); err != nil {
			return err
		}
		return s.audit(ctx, tx, "expense.delete", removed)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, removed.ProjectID)
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListExpenseRequest) ([]domain.Expense, error) {
	filter := domain.ListFilter{From: req.From, To: req.To}
	if raw := strings.TrimSpace(req.ProjectID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidProjectID
		}
		filter.ProjectID = &id
	}
	if raw := strings.TrimSpace(req.Category); raw != "" {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			return nil, domain.ErrInvalidCategory
		}
		filter.Category = category
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	expenses := make([]domain.Expense, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		expenses = append(expenses, *item)
	}
	return expenses, nil
}

func (s *Service) checkReferences(ctx context.Context, tx *gorm.DB, expense domain.Expense) error {
	checks := []struct {
		table string
		id    *snowflake.ID
		err   error
	}{
		{"projects", expense.ProjectID, domain.ErrInvalidProjectID},
		{"employees", expense.EmployeeID, domain.ErrInvalidEmployeeID},
		{"vendors", expense.VendorID, domain.ErrInvalidVendorID},
	}
	for _, check := range checks {
		if check.id == nil {
			continue
		}
		ok, err := s.repo.Exists(ctx, tx, check.table, *check.id)
		if err != nil {
			return err
		}
		if !ok {
			return check.err
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, projectID *snowflake.ID) {
	event := events.New(events.TypeExpensesUpdated, events.TopicExpenses)
	if projectID != nil {
		event = event.WithProject(int64(*projectID))
	}
	s.events.Publish(ctx, event)
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, action string, expense domain.Expense) error {
	if s.auditSvc == nil {
		return nil
	}
	metadata := map[string]any{
		"amount":   expense.Amount.String(),
		"category": string(expense.Category),
	}
	if expense.ProjectID != nil {
		metadata["projectId"] = expense.ProjectID.String()
	}
	return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
		Action:   action,
		Target:   auditdomain.TargetExpense,
		TargetID: expense.ID,
		Metadata: metadata,
	})
}

func applyRequest(expense *domain.Expense, req domain.ExpenseRequest, defaultDate time.Time) error {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.ErrInvalidDescription
	}
	if !req.Amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	category, ok := domain.ParseCategory(req.Category)
	if !ok {
		return domain.ErrInvalidCategory
	}

	date := defaultDate
	if req.ExpenseDate != nil {
		if req.ExpenseDate.IsZero() {
			return domain.ErrInvalidExpenseDate
		}
		date = req.ExpenseDate.UTC()
	}

	projectID, err := optionalID(req.ProjectID, domain.ErrInvalidProjectID)
	if err != nil {
		return err
	}
	employeeID, err := optionalID(req.EmployeeID, domain.ErrInvalidEmployeeID)
	if err != nil {
		return err
	}
	vendorID, err := optionalID(req.VendorID, domain.ErrInvalidVendorID)
	if err != nil {
		return err
	}

	expense.Description = description
	expense.Amount = req.Amount
	expense.Category = category
	expense.ExpenseDate = date
	expense.ProjectID = projectID
	expense.EmployeeID = employeeID
	expense.VendorID = vendorID
	expense.ReceiptURL = optionalString(req.ReceiptURL)
	return nil
}

func optionalID(raw string, invalid error) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil || id <= 0 {
		return nil, invalid
	}
	return &id, nil
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
