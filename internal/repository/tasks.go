package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tugas-go/internal/models"
)

// DescriptionCipher encrypts task descriptions at rest.
type DescriptionCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// TaskRepository persists tasks in Postgres. A nil cipher stores
// descriptions as plain text.
type TaskRepository struct {
	db     *sql.DB
	cipher DescriptionCipher
}

func NewTaskRepository(db *sql.DB, cipher DescriptionCipher) *TaskRepository {
	return &TaskRepository{db: db, cipher: cipher}
}

const taskColumns = "id, user_id, title, description, is_completed, due_date, created_at, updated_at"

func (r *TaskRepository) seal(description string) (string, error) {
	if r.cipher == nil {
		return description, nil
	}
	enc, err := r.cipher.Encrypt(description)
	if err != nil {
		return "", fmt.Errorf("encrypting description: %w", err)
	}
	return enc, nil
}

func (r *TaskRepository) scan(row interface{ Scan(...any) error }) (*models.Task, error) {
	var (
		t       models.Task
		dueDate sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.IsCompleted, &dueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if r.cipher != nil {
		plain, err := r.cipher.Decrypt(t.Description)
		if err != nil {
			return nil, fmt.Errorf("decrypting description of task %s: %w", t.ID, err)
		}
		t.Description = plain
	}
	return &t, nil
}

func nullTime(t *models.Task) sql.NullTime {
	if t.DueDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t.DueDate, Valid: true}
}

// Create inserts t, filling in ID and timestamps.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	description, err := r.seal(t.Description)
	if err != nil {
		return err
	}
	t.ID = uuid.NewString()
	err = r.db.QueryRowContext(ctx, `
        INSERT INTO tasks (id, user_id, title, description, is_completed, due_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`,
		t.ID, t.UserID, t.Title, description, t.IsCompleted, nullTime(t),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	t, err := r.scan(r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// ListByOwner returns the owner's tasks, oldest first. No tasks is not an error.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY created_at, id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// Update writes every mutable column of t.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	description, err := r.seal(t.Description)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
        UPDATE tasks
        SET title = $2, description = $3, is_completed = $4, due_date = $5, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        RETURNING user_id, created_at, updated_at`,
		t.ID, t.Title, description, t.IsCompleted, nullTime(t),
	).Scan(&t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every task of ownerID and returns the removed ids.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "DELETE FROM tasks WHERE user_id = $1 RETURNING id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("deleting tasks of owner: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning deleted task id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("deleting tasks of owner: %w", err)
	}
	return ids, nil
}
