package storage

import (
	"context"
	"time"

	"github.com/agentq/agentq/types"
	bolt "go.etcd.io/bbolt"
)

var (
	taskBucket = []byte("tasks")
)

// BoltStorage persists JSON-encoded task records in a bbolt file.
type BoltStorage struct {
	db *bolt.DB
}

func NewBoltStorage(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	return &BoltStorage{db: db}, nil
}

func (s *BoltStorage) Init(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(taskBucket)
		return err
	})
}

func (s *BoltStorage) SaveTask(ctx context.Context, task *types.Task) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(taskBucket)
		data, err := task.Serialize()
		if err != nil {
			return err
		}
		return b.Put([]byte(task.ID), data)
	})
}

func (s *BoltStorage) UpdateTaskStatus(ctx context.Context, taskID string, status types.TaskStatus, errorMessage string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(taskBucket)
		data := b.Get([]byte(taskID))
		if data == nil {
			return ErrTaskNotFound
		}

		task, err := types.DeserializeTask(data)
		if err != nil {
			return err
		}
		task.Status = status
		task.ErrorMessage = errorMessage

		newData, err := task.Serialize()
		if err != nil {
			return err
		}
		return b.Put([]byte(taskID), newData)
	})
}

func (s *BoltStorage) ListTasks(ctx context.Context, status types.TaskStatus, limit int) ([]*types.Task, error) {
	var tasks []*types.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(taskBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			task, err := types.DeserializeTask(v)
			if err != nil {
				continue // skip corrupt records
			}
			if task.Status == status {
				tasks = append(tasks, task)
				if limit > 0 && len(tasks) >= limit {
					break
				}
			}
		}
		return nil
	})
	return tasks, err
}

func (s *BoltStorage) Close() error {
	return s.db.Close()
}
