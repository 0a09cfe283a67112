package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/bizledger/internal/account/domain"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/events"
	"github.com/smallbiznis/bizledger/internal/observability/metrics"
	"github.com/smallbiznis/bizledger/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	AccountRepo   accountdomain.Repository
	AuditSvc      auditdomain.Service    `optional:"true"`
	Events        events.Publisher       `optional:"true"`
	Metrics       *metrics.Metrics       `optional:"true"`
	LedgerMetrics *metrics.LedgerMetrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	accountRepo   accountdomain.Repository
	auditSvc      auditdomain.Service
	events        events.Publisher
	metrics       *metrics.Metrics
	ledgerMetrics *metrics.LedgerMetrics
}

func New(p Params) domain.Service {
	publisher := p.Events
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("transaction.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		accountRepo:   p.AccountRepo,
		auditSvc:      p.AuditSvc,
		events:        publisher,
		metrics:       p.Metrics,
		ledgerMetrics: p.LedgerMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTransactionRequest) (item domain.Transaction, err error) {
	started := time.Now()
	defer func() { s.observe("create", started, err) }()

	now := time.Now().UTC()
	item = domain.Transaction{
		ID:        s.genID.Generate(),
		Origin:    cashflow.OriginUserEntry,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyRequest(&item, req, now); err != nil {
		return domain.Transaction{}, err
	}

	var deltas []cashflow.Delta
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkReferences(ctx, tx, &item); err != nil {
			return err
		}
		applied, err := s.Record(ctx, tx, &item)
		if err != nil {
			return err
		}
		deltas = applied
		return s.audit(ctx, tx, "transaction.create", item.ID, auditMetadata(item))
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.recordMetrics(ctx, item.Type, "create", deltas)
	s.events.Publish(ctx, transactionEvent(events.TypeTransactionCreated, item))
	return item, nil
}

// Record inserts item and applies its balance deltas on tx.
func (s *Service) Record(ctx context.Context, tx *gorm.DB, item *domain.Transaction) ([]cashflow.Delta, error) {
	if item.ID == 0 {
		item.ID = s.genID.Generate()
	}
	if item.Origin == "" {
		item.Origin = cashflow.OriginUserEntry
	}
	if !item.Origin.Valid() {
		return nil, fmt.Errorf("transaction: invalid origin %q", item.Origin)
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = now
	}
	s.noteUnknown(item.Type, "record")

	if err := s.repo.Insert(ctx, tx, item); err != nil {
		return nil, err
	}
	deltas := cashflow.BalanceDeltas(item.Entry())
	if err := s.applyDeltas(ctx, tx, deltas); err != nil {
		return nil, err
	}
	return deltas, nil
}

// Update reverses the stored row's balance effect and applies the edited one.
func (s *Service) Update(ctx context.Context, id string, req domain.UpdateTransactionRequest) (item domain.Transaction, err error) {
	started := time.Now()
	defer func() { s.observe("update", started, err) }()

	txID, err := parseID(id)
	if err != nil {
		return domain.Transaction{}, err
	}

	var (
		previous domain.Transaction
		deltas   []cashflow.Delta
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, txID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		previous = *existing

		next := *existing
		if err := applyRequest(&next, req, existing.TransactionDate); err != nil {
			return err
		}
		next.UpdatedAt = time.Now().UTC()
		if err := s.checkReferences(ctx, tx, &next); err != nil {
			return err
		}

		deltas = cashflow.Merge(
			cashflow.Reverse(cashflow.BalanceDeltas(previous.Entry())),
			cashflow.BalanceDeltas(next.Entry()),
		)
		if err := s.repo.Update(ctx, tx, &next); err != nil {
			return err
		}
		if err := s.applyDeltas(ctx, tx, deltas); err != nil {
			return err
		}
		item = next
		return s.audit(ctx, tx, "transaction.update", next.ID, auditMetadata(next))
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.recordMetrics(ctx, item.Type, "update", deltas)
	event := transactionEvent(events.TypeTransactionUpdated, item).WithAccounts(previous.AccountIDs()...)
	if previous.ProjectID != nil && item.ProjectID != nil && *previous.ProjectID != *item.ProjectID {
		event.Payload = map[string]any{"previousProjectId": previous.ProjectID.String()}
	}
	s.events.Publish(ctx, event)
	return item, nil
}

// Delete removes the row and reverses its balance effect.
func (s *Service) Delete(ctx context.Context, id string) (result domain.DeleteResult, err error) {
	started := time.Now()
	defer func() { s.observe("delete", started, err) }()

	txID, err := parseID(id)
	if err != nil {
		return domain.DeleteResult{}, err
	}

	var (
		removed domain.Transaction
		deltas  []cashflow.Delta
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, txID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		removed = *existing

		deltas = cashflow.Reverse(cashflow.BalanceDeltas(removed.Entry()))
		if err := s.repo.Delete(ctx, tx, txID); err != nil {
			return err
		}
		if err := s.applyDeltas(ctx, tx, deltas); err != nil {
			return err
		}
		return s.audit(ctx, tx, "transaction.delete", txID, auditMetadata(removed))
	})
	if err != nil {
		return domain.DeleteResult{}, err
	}

	s.recordMetrics(ctx, removed.Type, "delete", deltas)
	event := transactionEvent(events.TypeTransactionDeleted, removed)
	s.events.Publish(ctx, event)
	return domain.DeleteResult{Message: "Transaction deleted successfully", Event: event}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	txID, err := parseID(id)
	if err != nil {
		return domain.Transaction{}, err
	}
	item, err := s.repo.FindByID(ctx, s.db, txID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if item == nil {
		return domain.Transaction{}, domain.ErrNotFound
	}
	s.noteUnknown(item.Type, "read")
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTransactionRequest) ([]domain.Transaction, error) {
	filter := domain.ListFilter{
		Limit:               req.Limit,
		ExcludeDebts:        !req.IncludeDebts,
		ExcludeProjectDebts: !req.IncludeProjectDebts,
		From:                req.From,
		To:                  req.To,
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = domain.DefaultListLimit
	case filter.Limit < 0:
		return nil, domain.ErrInvalidLimit
	case filter.Limit > domain.MaxListLimit:
		filter.Limit = domain.MaxListLimit
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, domain.ErrInvalidDate
	}

	if raw := strings.TrimSpace(req.Type); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			txType, ok := cashflow.ParseTransactionType(part)
			if !ok {
				return nil, domain.ErrInvalidType
			}
			filter.Types = append(filter.Types, txType)
		}
	}
	if raw := strings.TrimSpace(req.AccountID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidAccountID
		}
		filter.AccountID = &id
	}
	if raw := strings.TrimSpace(req.ProjectID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidProjectID
		}
		filter.ProjectID = &id
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		s.noteUnknown(item.Type, "list")
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) applyDeltas(ctx context.Context, tx *gorm.DB, deltas []cashflow.Delta) error {
	for _, delta := range deltas {
		rows, err := s.accountRepo.AdjustBalance(ctx, tx, snowflake.ID(delta.AccountID), delta.Amount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrInvalidAccountID
		}
	}
	return nil
}

// checkReferences rejects rows that point at missing accounts, projects or parties.
func (s *Service) checkReferences(ctx context.Context, tx *gorm.DB, item *domain.Transaction) error {
	checks := []struct {
		table string
		id    *snowflake.ID
		err   error
	}{
		{"accounts", item.AccountID, domain.ErrInvalidAccountID},
		{"accounts", item.FromAccountID, domain.ErrInvalidFromAccountID},
		{"accounts", item.ToAccountID, domain.ErrInvalidToAccountID},
		{"projects", item.ProjectID, domain.ErrInvalidProjectID},
		{"customers", item.CustomerID, domain.ErrInvalidCustomerID},
		{"vendors", item.VendorID, domain.ErrInvalidVendorID},
		{"employees", item.EmployeeID, domain.ErrInvalidEmployeeID},
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

func (s *Service) noteUnknown(txType cashflow.TransactionType, source string) {
	if cashflow.Classify(txType).Known {
		return
	}
	s.log.Warn("UnknownTransactionType", zap.String("type", string(txType)), zap.String("source", source))
	if s.ledgerMetrics != nil {
		s.ledgerMetrics.IncClassifierFallback(source)
	}
}

func (s *Service) observe(operation string, started time.Time, err error) {
	if s.ledgerMetrics != nil {
		s.ledgerMetrics.ObserveWrite("transaction_"+operation, started, err)
	}
}

func (s *Service) recordMetrics(ctx context.Context, txType cashflow.TransactionType, operation string, deltas []cashflow.Delta) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordTransaction(ctx, string(txType), operation)
	s.metrics.RecordBalanceMutation(ctx, operation, len(deltas))
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, action string, id snowflake.ID, metadata map[string]any) error {
	if s.auditSvc == nil {
		return nil
	}
	return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
		Action:   action,
		Target:   auditdomain.TargetTransaction,
		TargetID: id,
		Metadata: metadata,
	})
}

func transactionEvent(typ events.Type, item domain.Transaction) events.Event {
	event := events.New(typ, events.TopicTransactions).
		WithTransaction(int64(item.ID)).
		WithAccounts(item.AccountIDs()...)
	if item.ProjectID != nil {
		event = event.WithProject(int64(*item.ProjectID))
	}
	return event
}

func auditMetadata(item domain.Transaction) map[string]any {
	metadata := map[string]any{
		"type":        string(item.Type),
		"amount":      item.Amount.String(),
		"category":    item.Category,
		"description": item.Description,
		"origin":      string(item.Origin),
	}
	if item.ProjectID != nil {
		metadata["projectId"] = item.ProjectID.String()
	}
	return metadata
}
