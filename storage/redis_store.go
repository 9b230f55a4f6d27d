package storage

import (
	"context"
	"time"

	"github.com/agentq/agentq/types"
	"github.com/go-redis/redis/v8"
)

const taskRecordTTL = 24 * time.Hour

// RedisStorage keeps task records as JSON values under a common prefix.
// Records expire after taskRecordTTL; the engine never reads them back,
// so expiry doubles as the cleanup policy.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

func NewRedisStorage(addr, password string, db int) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "agentq:task:",
	}
}

func (s *RedisStorage) key(id string) string {
	return s.prefix + id
}

func (s *RedisStorage) Init(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStorage) SaveTask(ctx context.Context, task *types.Task) error {
	data, err := task.Serialize()
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(task.ID), data, taskRecordTTL).Err()
}

func (s *RedisStorage) UpdateTaskStatus(ctx context.Context, taskID string, status types.TaskStatus, errorMessage string) error {
	data, err := s.client.Get(ctx, s.key(taskID)).Bytes()
	if err == redis.Nil {
		return ErrTaskNotFound
	}
	if err != nil {
		return err
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
	return s.client.Set(ctx, s.key(taskID), newData, taskRecordTTL).Err()
}

func (s *RedisStorage) ListTasks(ctx context.Context, status types.TaskStatus, limit int) ([]*types.Task, error) {
	keys, err := s.client.Keys(ctx, s.prefix+"*").Result()
	if err != nil {
		return nil, err
	}

	var tasks []*types.Task
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		task, err := types.DeserializeTask(data)
		if err != nil {
			continue
		}
		if task.Status == status {
			tasks = append(tasks, task)
			if limit > 0 && len(tasks) >= limit {
				break
			}
		}
	}
	return tasks, nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
