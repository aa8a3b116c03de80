// Copyright 2026 ICIJ
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package queue implements the durable task-queue transport for the
// deferred-task bridge (plan mode): every emitted task carries enough to
// rehydrate an interpreter and locate one document, so a remote worker can
// run the exact same per-document lifecycle the in-process engine does.
//
// Tasks are pushed onto a Redis list the way the original implementation's
// Celery broker did, keeping the "<app>:default" queue naming convention.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list translation tasks are pushed onto,
// mirroring the original Celery broker's task_default_queue setting.
const DefaultQueueName = "es_translator:default"

// InterpreterConfig carries everything a remote worker needs to
// reconstruct the same interpreter the producer would have used.
type InterpreterConfig struct {
	Name         string `json:"name"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Intermediary string `json:"intermediary,omitempty"`
	PackDir      string `json:"pack_dir,omitempty"`
	Device       string `json:"device,omitempty"`
}

// DocumentRef locates one document in the cluster.
type DocumentRef struct {
	Index   string `json:"index"`
	ID      string `json:"id"`
	Routing string `json:"routing,omitempty"`
}

// Task is the durable queue payload for one deferred translation.
type Task struct {
	Interpreter InterpreterConfig `json:"interpreter"`
	Document    DocumentRef       `json:"document"`
	Config      map[string]any    `json:"config,omitempty"`
}

// Queue is the Redis-list-backed transport for Tasks.
type Queue struct {
	client *redis.Client
	name   string
}

// New builds a Queue against the Redis server at addr, which is either a
// redis:// URL or a plain host:port address, using the given list name
// (DefaultQueueName when empty).
func New(addr, name string) *Queue {
	if name == "" {
		name = DefaultQueueName
	}
	opts := &redis.Options{Addr: addr}
	if parsed, err := redis.ParseURL(addr); err == nil {
		opts = parsed
	}
	return &Queue{
		client: redis.NewClient(opts),
		name:   name,
	}
}

// Enqueue pushes exactly one task for ref, to be picked up by a remote
// worker. Retry semantics, if any, are the durable queue's responsibility,
// not the bridge's.
func (q *Queue) Enqueue(ctx context.Context, interp InterpreterConfig, ref DocumentRef) error {
	task := Task{Interpreter: interp, Document: ref}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

// Dequeue blocks until a task is available or ctx is done; there is no
// timeout of its own. A redis.Nil reply (no element) yields (nil, nil)
// rather than an error — an empty queue is not a failure.
func (q *Queue) Dequeue(ctx context.Context) (*Task, error) {
	result, err := q.client.BRPop(ctx, 0, q.name).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue task: %w", err)
	}
	if len(result) < 2 {
		return nil, fmt.Errorf("dequeue task: unexpected reply shape %v", result)
	}

	var task Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

// Len reports the current queue depth, the basis for the fleet monitor's
// pending-task count (§4.I).
func (q *Queue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.name).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return int(n), nil
}

// Close releases the underlying Redis connection pool.
func (q *Queue) Close() error {
	return q.client.Close()
}
