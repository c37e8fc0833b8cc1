package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/gamyam/crm-tasks/domain"
	"github.com/gamyam/crm-tasks/repository"
)

const taskColumns = `id, title, description, type, status, priority, due_date,
	assigned_to, contributors, lead_id, deal_id, contact_id, event_id, note_id,
	mail_id, ref_task_id, organization_id, created_by, updated_by, deleted_by,
	created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, description, type, status, priority, due_date,
		assigned_to, contributors, lead_id, deal_id, contact_id, event_id, note_id,
		mail_id, ref_task_id, organization_id, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Type,
		task.Status,
		task.Priority,
		task.DueDate,
		task.AssignedTo,
		task.Contributors,
		task.Links.LeadID,
		task.Links.DealID,
		task.Links.ContactID,
		task.Links.EventID,
		task.Links.NoteID,
		task.Links.MailID,
		task.Links.RefTaskID,
		task.OrganizationID,
		task.CreatedBy,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, query repository.TaskQuery) ([]domain.Task, int, error) {
	query.Normalize()
	return r.find(ctx, listPredicate(query), query.Page)
}

func (r *taskRepository) Filter(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, int, error) {
	filter.Normalize()
	return r.find(ctx, filterPredicate(filter), filter.Page)
}

// find runs the windowed fetch and the total count for the same predicate
// concurrently.
func (r *taskRepository) find(ctx context.Context, p *predicate, page repository.Page) ([]domain.Task, int, error) {
	var (
		tasks []domain.Task
		total int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		query := `SELECT ` + taskColumns + ` FROM tasks` + p.where() + window(page)
		rows, err := r.pool.Query(gctx, query, p.args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, *task)
		}
		return rows.Err()
	})

	g.Go(func() error {
		query := `SELECT COUNT(*) FROM tasks` + p.where()
		return r.pool.QueryRow(gctx, query, p.args...).Scan(&total)
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *taskRepository) Update(ctx context.Context, id string, patch domain.TaskUpdate) (*domain.Task, error) {
	assignments := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	set := func(column string, value interface{}) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Type != nil {
		set("type", *patch.Type)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	if patch.DueDate != nil {
		set("due_date", *patch.DueDate)
	}
	if patch.AssignedTo != nil {
		set("assigned_to", *patch.AssignedTo)
	}
	if patch.Contributors != nil {
		set("contributors", *patch.Contributors)
	}
	if patch.Links != nil {
		set("lead_id", patch.Links.LeadID)
		set("deal_id", patch.Links.DealID)
		set("contact_id", patch.Links.ContactID)
		set("event_id", patch.Links.EventID)
		set("note_id", patch.Links.NoteID)
		set("mail_id", patch.Links.MailID)
		set("ref_task_id", patch.Links.RefTaskID)
	}
	if patch.UpdatedBy != "" {
		set("updated_by", patch.UpdatedBy)
	}

	query := `UPDATE tasks SET ` + strings.Join(assignments, ", ") +
		` WHERE id = $1 RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query, args...)
	return scanTask(row)
}

func (r *taskRepository) SoftDelete(ctx context.Context, id string, deletedBy string) (*domain.Task, error) {
	query := `UPDATE tasks SET deleted_by = $2, updated_at = NOW()
	WHERE id = $1 RETURNING ` + taskColumns
	row := r.pool.QueryRow(ctx, query, id, deletedBy)
	return scanTask(row)
}

func (r *taskRepository) Save(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		type = $4,
		status = $5,
		priority = $6,
		due_date = $7,
		assigned_to = $8,
		contributors = $9,
		lead_id = $10,
		deal_id = $11,
		contact_id = $12,
		event_id = $13,
		note_id = $14,
		mail_id = $15,
		ref_task_id = $16,
		updated_by = $17,
		deleted_by = $18,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Type,
		task.Status,
		task.Priority,
		task.DueDate,
		task.AssignedTo,
		task.Contributors,
		task.Links.LeadID,
		task.Links.DealID,
		task.Links.ContactID,
		task.Links.EventID,
		task.Links.NoteID,
		task.Links.MailID,
		task.Links.RefTaskID,
		task.UpdatedBy,
		task.DeletedBy,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (r *taskRepository) FindOverdue(ctx context.Context, now time.Time, lookback time.Duration) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
	WHERE status = $1 AND due_date < $2 AND due_date >= $3`

	rows, err := r.pool.Query(ctx, query, domain.TaskStatusPending, now, now.Add(-lookback))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) UpdateStatusBulk(ctx context.Context, ids []string, status domain.TaskStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = ANY($2)`
	tag, err := r.pool.Exec(ctx, query, status, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Type,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.AssignedTo,
		&task.Contributors,
		&task.Links.LeadID,
		&task.Links.DealID,
		&task.Links.ContactID,
		&task.Links.EventID,
		&task.Links.NoteID,
		&task.Links.MailID,
		&task.Links.RefTaskID,
		&task.OrganizationID,
		&task.CreatedBy,
		&task.UpdatedBy,
		&task.DeletedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	return &task, nil
}
