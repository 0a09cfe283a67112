package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO projects (id, name, description, customer_id, agreement_amount, advance_paid, status, start_date, completion_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.Name,
		project.Description,
		project.CustomerID,
		project.AgreementAmount,
		project.AdvancePaid,
		project.Status,
		project.StartDate,
		project.CompletionDate,
		project.CreatedAt,
		project.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Exec(
		`UPDATE projects
		 SET name = ?, description = ?, customer_id = ?, agreement_amount = ?, advance_paid = ?, status = ?,
		     start_date = ?, completion_date = ?, updated_at = ?
		 WHERE id = ?`,
		project.Name,
		project.Description,
		project.CustomerID,
		project.AgreementAmount,
		project.AdvancePaid,
		project.Status,
		project.StartDate,
		project.CompletionDate,
		project.UpdatedAt,
		project.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM projects WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, customer_id, agreement_amount, advance_paid, status, start_date, completion_date, created_at, updated_at
		 FROM projects WHERE id = ?`,
		id,
	).Scan(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == 0 {
		return nil, nil
	}
	return &project, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Project, error) {
	var projects []*domain.Project
	stmt := db.WithContext(ctx).Model(&domain.Project{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if err := stmt.Order("created_at desc, id desc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repo) InsertMaterial(ctx context.Context, db *gorm.DB, item *domain.MaterialUsage) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO project_materials (id, project_id, name, quantity, unit_cost, total_cost, used_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.ProjectID,
		item.Name,
		item.Quantity,
		item.UnitCost,
		item.TotalCost,
		item.UsedAt,
		item.CreatedAt,
	).Error
}

func (r *repo) ListMaterials(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.MaterialUsage, error) {
	var items []domain.MaterialUsage
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("used_at asc, id asc").
		Find(&items).Error
	return items, err
}

func (r *repo) InsertLabor(ctx context.Context, db *gorm.DB, item *domain.LaborRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO project_labor (id, project_id, employee_id, worker_name, hours, rate, total_cost, work_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.ProjectID,
		item.EmployeeID,
		item.WorkerName,
		item.Hours,
		item.Rate,
		item.TotalCost,
		item.WorkDate,
		item.CreatedAt,
	).Error
}

func (r *repo) ListLabor(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.LaborRecord, error) {
	var items []domain.LaborRecord
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("work_date asc, id asc").
		Find(&items).Error
	return items, err
}

func (r *repo) DeleteChildren(ctx context.Context, db *gorm.DB, projectID snowflake.ID) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM project_materials WHERE project_id = ?`, projectID).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`DELETE FROM project_labor WHERE project_id = ?`, projectID).Error
}

func (r *repo) CountTransactionRefs(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM transactions WHERE project_id = ?`, projectID).Scan(&count).Error
	return count, err
}

func (r *repo) CustomerExists(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM customers WHERE id = ?`, customerID).Scan(&count).Error
	return count > 0, err
}

func (r *repo) EmployeeExists(ctx context.Context, db *gorm.DB, employeeID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM employees WHERE id = ?`, employeeID).Scan(&count).Error
	return count > 0, err
}
