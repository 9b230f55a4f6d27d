package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/agentq/agentq/types"
	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// SQLiteStorage persists task records in a single sqlite file. WAL mode
// keeps the write-through path from blocking on readers.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			status TEXT NOT NULL,
			payload BLOB,
			priority INTEGER DEFAULT 0,
			retry_count INTEGER DEFAULT 0,
			timeout_sec INTEGER DEFAULT 0,
			error_message TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	`)
	return err
}

func (s *SQLiteStorage) SaveTask(ctx context.Context, task *types.Task) error {
	payload, err := json.Marshal(task.Payload)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tasks
		(id, agent_id, status, payload, priority, retry_count, timeout_sec, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.AgentID, string(task.Status), payload, task.Priority,
		task.RetryCount, int64(task.Timeout/time.Second), task.ErrorMessage, task.CreatedAt,
	)
	return err
}

func (s *SQLiteStorage) UpdateTaskStatus(ctx context.Context, taskID string, status types.TaskStatus, errorMessage string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, error_message = ? WHERE id = ?`,
		string(status), errorMessage, taskID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *SQLiteStorage) ListTasks(ctx context.Context, status types.TaskStatus, limit int) ([]*types.Task, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, status, payload, priority, retry_count, timeout_sec, error_message, created_at
		FROM tasks
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT ?`,
		string(status), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*types.Task
	for rows.Next() {
		var t types.Task
		var status string
		var payload []byte
		var timeoutSec int64
		err := rows.Scan(
			&t.ID, &t.AgentID, &status, &payload, &t.Priority,
			&t.RetryCount, &timeoutSec, &t.ErrorMessage, &t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		t.Status = types.TaskStatus(status)
		t.Timeout = time.Duration(timeoutSec) * time.Second
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &t.Payload); err != nil {
				continue // skip corrupt rows
			}
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
