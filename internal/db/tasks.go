package db

import (
	"context"
	"strings"

	"github.com/taskdeck/backend/internal/model"
)

func (db *Postgres) CreateTask(ctx context.Context, ownerID int64, name, description, status string) (*model.Task, error) {
	query := `
		INSERT INTO tasks (task_name, description, status, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, task_name, description, status, user_id
	`
	var task model.Task
	err := db.Pool.QueryRow(ctx, query, name, description, status, ownerID).Scan(
		&task.ID,
		&task.TaskName,
		&task.Description,
		&task.Status,
		&task.UserID,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (db *Postgres) GetTaskByID(ctx context.Context, id int64) (*model.Task, error) {
	query := `
		SELECT id, task_name, description, status, user_id
		FROM tasks
		WHERE id = $1
	`
	var task model.Task
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.TaskName,
		&task.Description,
		&task.Status,
		&task.UserID,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns the owner's tasks. A non-empty statusFilter narrows the
// result to tasks whose status contains the filter, case-insensitively. The
// filter is matched literally: LIKE metacharacters in it are escaped.
func (db *Postgres) ListTasks(ctx context.Context, ownerID int64, statusFilter string) ([]model.Task, error) {
	query := `
		SELECT id, task_name, description, status, user_id
		FROM tasks
		WHERE user_id = $1
		ORDER BY id
	`
	args := []any{ownerID}
	if statusFilter != "" {
		query = `
			SELECT id, task_name, description, status, user_id
			FROM tasks
			WHERE user_id = $1 AND status ILIKE $2 ESCAPE '\'
			ORDER BY id
		`
		args = append(args, "%"+escapeLike(statusFilter)+"%")
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.TaskName, &t.Description, &t.Status, &t.UserID); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if list == nil {
		list = []model.Task{}
	}
	return list, nil
}

func (db *Postgres) UpdateTask(ctx context.Context, id int64, name, description, status string) error {
	query := `
		UPDATE tasks
		SET task_name = $1, description = $2, status = $3
		WHERE id = $4
	`
	_, err := db.Pool.Exec(ctx, query, name, description, status, id)
	return err
}

func (db *Postgres) DeleteTask(ctx context.Context, id int64) error {
	query := `DELETE FROM tasks WHERE id = $1`
	_, err := db.Pool.Exec(ctx, query, id)
	return err
}

// escapeLike neutralizes LIKE pattern metacharacters so user input
// matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
