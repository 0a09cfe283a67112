package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/bizledger/internal/audit/domain"
	"github.com/smallbiznis/bizledger/internal/cashflow"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/events"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/internal/project/domain"
	transactiondomain "github.com/smallbiznis/bizledger/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	TxSvc       transactiondomain.Service
	TxRepo      transactiondomain.Repository
	ExpenseRepo expensedomain.Repository
	Reporting   *config.ReportingConfigHolder `optional:"true"`
	AuditSvc    auditdomain.Service           `optional:"true"`
	Events      events.Publisher              `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	txSvc       transactiondomain.Service
	txRepo      transactiondomain.Repository
	expenseRepo expensedomain.Repository
	reporting   *config.ReportingConfigHolder
	auditSvc    auditdomain.Service
	events      events.Publisher
}

func New(p Params) domain.Service {
	publisher := p.Events
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("project.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		txSvc:       p.TxSvc,
		txRepo:      p.TxRepo,
		expenseRepo: p.ExpenseRepo,
		reporting:   p.Reporting,
		auditSvc:    p.AuditSvc,
		events:      publisher,
	}
}

// Create stores the project and, when an advance account is given, records
// the advance as an INCOME transaction in the same database transaction.
func (s *Service) Create(ctx context.Context, req domain.CreateProjectRequest) (domain.Detail, error) {
	now := time.Now().UTC()
	project := domain.Project{
		ID:        s.genID.Generate(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := applyProject(&project, projectFields{
		Name:            req.Name,
		Description:     req.Description,
		CustomerID:      req.CustomerID,
		AgreementAmount: req.AgreementAmount,
		AdvancePaid:     req.AdvancePaid,
		Status:          req.Status,
		StartDate:       req.StartDate,
		CompletionDate:  req.CompletionDate,
	})
	if err != nil {
		return domain.Detail{}, err
	}

	var advanceAccountID *snowflake.ID
	if raw := strings.TrimSpace(req.AdvanceAccountID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id <= 0 {
			return domain.Detail{}, domain.ErrInvalidAdvanceAccountID
		}
		advanceAccountID = &id
	}

	var advance *transactiondomain.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureCustomer(ctx, tx, project.CustomerID); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, &project); err != nil {
			return err
		}

		if advanceAccountID != nil && project.AdvancePaid.IsPositive() {
			customerID := project.CustomerID
			projectID := project.ID
			record := transactiondomain.Transaction{
				Description:     domain.AdvanceDescriptionPrefix + " " + project.Name,
				Amount:          project.AdvancePaid,
				Type:            cashflow.TypeIncome,
				Category:        "PROJECT_ADVANCE",
				TransactionDate: project.CreatedAt,
				AccountID:       advanceAccountID,
				ProjectID:       &projectID,
				CustomerID:      &customerID,
				Origin:          cashflow.OriginAdvanceSnapshot,
			}
			if _, err := s.txSvc.Record(ctx, tx, &record); err != nil {
				if errors.Is(err, transactiondomain.ErrInvalidAccountID) {
					return domain.ErrInvalidAdvanceAccountID
				}
				return err
			}
			advance = &record
		}

		return s.audit(ctx, tx, "project.create", project.ID, map[string]any{
			"name":            project.Name,
			"agreementAmount": project.AgreementAmount.String(),
			"advancePaid":     project.AdvancePaid.String(),
		})
	})
	if err != nil {
		return domain.Detail{}, err
	}

	if advance != nil {
		s.events.Publish(ctx, events.New(events.TypeTransactionCreated, events.TopicTransactions).
			WithTransaction(int64(advance.ID)).
			WithProject(int64(project.ID)).
			WithAccounts(advance.AccountIDs()...))
	}
	s.publish(ctx, project.ID)

	return s.Get(ctx, project.ID.String())
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateProjectRequest) (domain.Detail, error) {
	projectID, err := parseID(id)
	if err != nil {
		return domain.Detail{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := s.repo.FindByID(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.ErrNotFound
		}

		err = applyProject(project, projectFields{
			Name:            req.Name,
			Description:     req.Description,
			CustomerID:      req.CustomerID,
			AgreementAmount: req.AgreementAmount,
			AdvancePaid:     req.AdvancePaid,
			Status:          req.Status,
			StartDate:       req.StartDate,
			CompletionDate:  req.CompletionDate,
		})
		if err != nil {
			return err
		}
		if err := s.ensureCustomer(ctx, tx, project.CustomerID); err != nil {
			return err
		}
		project.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, project); err != nil {
			return err
		}
		return s.audit(ctx, tx, "project.update", project.ID, map[string]any{
			"name":            project.Name,
			"status":          string(project.Status),
			"agreementAmount": project.AgreementAmount.String(),
		})
	})
	if err != nil {
		return domain.Detail{}, err
	}

	s.publish(ctx, projectID)
	return s.Get(ctx, projectID.String())
}

// Delete refuses projects that transactions still reference. Materials and
// labor go with the project; expenses are kept and detached.
func (s *Service) Delete(ctx context.Context, id string) error {
	projectID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, err := s.repo.FindByID(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return domain.ErrNotFound
		}

		refs, err := s.repo.CountTransactionRefs(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrProjectInUse
		}

		if err := s.repo.DeleteChildren(ctx, tx, projectID); err != nil {
			return err
		}
		if err := s.expenseRepo.DetachProject(ctx, tx, projectID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, projectID); err != nil {
			return err
		}
		return s.audit(ctx, tx, "project.delete", projectID, map[string]any{"name": project.Name})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, projectID)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Detail, error) {
	projectID, err := parseID(id)
	if err != nil {
		return domain.Detail{}, err
	}

	project, err := s.repo.FindByID(ctx, s.db, projectID)
	if err != nil {
		return domain.Detail{}, err
	}
	if project == nil {
		return domain.Detail{}, domain.ErrNotFound
	}

	txRows, err := s.txRepo.ListByProjects(ctx, s.db, []snowflake.ID{projectID})
	if err != nil {
		return domain.Detail{}, err
	}
	expenseRows, err := s.expenseRepo.List(ctx, s.db, expensedomain.ListFilter{ProjectID: &projectID})
	if err != nil {
		return domain.Detail{}, err
	}
	materials, err := s.repo.ListMaterials(ctx, s.db, projectID)
	if err != nil {
		return domain.Detail{}, err
	}
	labor, err := s.repo.ListLabor(ctx, s.db, projectID)
	if err != nil {
		return domain.Detail{}, err
	}

	return buildDetail(*project, derefTransactions(txRows), derefExpenses(expenseRows), materials, labor, s.advanceRule()), nil
}

func (s *Service) List(ctx context.Context, req domain.ListProjectRequest) ([]domain.Summary, error) {
	filter := domain.ListFilter{}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.Status(strings.ToUpper(raw))
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidCustomerID
		}
		filter.CustomerID = &id
	}

	projects, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return []domain.Summary{}, nil
	}

	ids := make([]snowflake.ID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	txRows, err := s.txRepo.ListByProjects(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byProject := make(map[snowflake.ID][]transactiondomain.Transaction, len(projects))
	for _, row := range txRows {
		if row == nil || row.ProjectID == nil {
			continue
		}
		byProject[*row.ProjectID] = append(byProject[*row.ProjectID], *row)
	}

	rule := s.advanceRule()
	out := make([]domain.Summary, 0, len(projects))
	for _, p := range projects {
		out = append(out, summarize(*p, byProject[p.ID], rule))
	}
	return out, nil
}

func (s *Service) AddMaterial(ctx context.Context, projectID string, req domain.AddMaterialRequest) (domain.MaterialUsage, error) {
	id, err := parseID(projectID)
	if err != nil {
		return domain.MaterialUsage{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.MaterialUsage{}, domain.ErrInvalidName
	}
	if !req.Quantity.IsPositive() {
		return domain.MaterialUsage{}, domain.ErrInvalidQuantity
	}
	if req.UnitCost.IsNegative() {
		return domain.MaterialUsage{}, domain.ErrInvalidUnitCost
	}

	now := time.Now().UTC()
	item := domain.MaterialUsage{
		ID:        s.genID.Generate(),
		ProjectID: id,
		Name:      name,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		TotalCost: req.Quantity.Mul(req.UnitCost).Round(4),
		UsedAt:    dateOr(req.UsedAt, now),
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureProject(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.InsertMaterial(ctx, tx, &item); err != nil {
			return err
		}
		return s.audit(ctx, tx, "project.material.create", id, map[string]any{
			"name":      item.Name,
			"totalCost": item.TotalCost.String(),
		})
	})
	if err != nil {
		return domain.MaterialUsage{}, err
	}

	s.publish(ctx, id)
	return item, nil
}

func (s *Service) AddLabor(ctx context.Context, projectID string, req domain.AddLaborRequest) (domain.LaborRecord, error) {
	id, err := parseID(projectID)
	if err != nil {
		return domain.LaborRecord{}, err
	}
	workerName := strings.TrimSpace(req.WorkerName)
	if workerName == "" {
		return domain.LaborRecord{}, domain.ErrInvalidWorkerName
	}
	if !req.Hours.IsPositive() {
		return domain.LaborRecord{}, domain.ErrInvalidHours
	}
	if req.Rate.IsNegative() {
		return domain.LaborRecord{}, domain.ErrInvalidRate
	}

	var employeeID *snowflake.ID
	if raw := strings.TrimSpace(req.EmployeeID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed <= 0 {
			return domain.LaborRecord{}, domain.ErrInvalidEmployeeID
		}
		employeeID = &parsed
	}

	now := time.Now().UTC()
	item := domain.LaborRecord{
		ID:         s.genID.Generate(),
		ProjectID:  id,
		EmployeeID: employeeID,
		WorkerName: workerName,
		Hours:      req.Hours,
		Rate:       req.Rate,
		TotalCost:  req.Hours.Mul(req.Rate).Round(4),
		WorkDate:   dateOr(req.WorkDate, now),
		CreatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureProject(ctx, tx, id); err != nil {
			return err
		}
		if employeeID != nil {
			ok, err := s.repo.EmployeeExists(ctx, tx, *employeeID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrInvalidEmployeeID
			}
		}
		if err := s.repo.InsertLabor(ctx, tx, &item); err != nil {
			return err
		}
		return s.audit(ctx, tx, "project.labor.create", id, map[string]any{
			"workerName": item.WorkerName,
			"totalCost":  item.TotalCost.String(),
		})
	})
	if err != nil {
		return domain.LaborRecord{}, err
	}

	s.publish(ctx, id)
	return item, nil
}

func (s *Service) ensureProject(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	project, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) ensureCustomer(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	ok, err := s.repo.CustomerExists(ctx, tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCustomerID
	}
	return nil
}

func (s *Service) advanceRule() cashflow.AdvanceRule {
	return s.reporting.Get().AdvanceRule()
}

func (s *Service) publish(ctx context.Context, projectID snowflake.ID) {
	s.events.Publish(ctx, events.New(events.TypeProjectUpdated, events.TopicProjects).WithProject(int64(projectID)))
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, action string, id snowflake.ID, metadata map[string]any) error {
	if s.auditSvc == nil {
		return nil
	}
	return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
		Action:   action,
		Target:   auditdomain.TargetProject,
		TargetID: id,
		Metadata: metadata,
	})
}

type projectFields struct {
	Name            string
	Description     string
	CustomerID      string
	AgreementAmount decimal.Decimal
	AdvancePaid     *decimal.Decimal
	Status          string
	StartDate       *time.Time
	CompletionDate  *time.Time
}

func applyProject(project *domain.Project, f projectFields) error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return domain.ErrInvalidName
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(f.CustomerID))
	if err != nil || customerID <= 0 {
		return domain.ErrInvalidCustomerID
	}

	if !f.AgreementAmount.IsPositive() {
		return domain.ErrInvalidAgreementAmount
	}
	advance := decimal.Zero
	if f.AdvancePaid != nil {
		advance = *f.AdvancePaid
	}
	if advance.IsNegative() || advance.GreaterThan(f.AgreementAmount) {
		return domain.ErrInvalidAdvancePaid
	}

	status := domain.StatusPlanned
	if raw := strings.TrimSpace(f.Status); raw != "" {
		status = domain.Status(strings.ToUpper(raw))
		if !status.Valid() {
			return domain.ErrInvalidStatus
		}
	}

	if f.CompletionDate == nil || f.CompletionDate.IsZero() {
		return domain.ErrInvalidCompletionDate
	}
	var startDate *time.Time
	if f.StartDate != nil && !f.StartDate.IsZero() {
		start := f.StartDate.UTC()
		startDate = &start
		if f.CompletionDate.Before(start) {
			return domain.ErrInvalidCompletionDate
		}
	}

	project.Name = name
	project.Description = optionalString(f.Description)
	project.CustomerID = customerID
	project.AgreementAmount = f.AgreementAmount
	project.AdvancePaid = advance
	project.Status = status
	project.StartDate = startDate
	project.CompletionDate = f.CompletionDate.UTC()
	return nil
}

func derefTransactions(rows []*transactiondomain.Transaction) []transactiondomain.Transaction {
	out := make([]transactiondomain.Transaction, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			out = append(out, *row)
		}
	}
	return out
}

func derefExpenses(rows []*expensedomain.Expense) []expensedomain.Expense {
	out := make([]expensedomain.Expense, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			out = append(out, *row)
		}
	}
	return out
}

func dateOr(value *time.Time, fallback time.Time) time.Time {
	if value == nil || value.IsZero() {
		return fallback
	}
	return value.UTC()
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
