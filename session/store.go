// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// Record is what a session carries: the email of the logged-in user, nothing
// more.
type Record struct {
	Email string `json:"email"`
}

// Store keeps session records keyed by token
type Store interface {
	Get(ctx context.Context, token string) (Record, error)
	Put(ctx context.Context, token string, rec Record) error
	Delete(ctx context.Context, token string) error
}

// MemoryStore is an in-process LRU of session records. Entries older than
// ttl are treated as missing.
type MemoryStore struct {
	mu      sync.Mutex
	maxsize int
	ttl     time.Duration
	now     func() time.Time
	idx     map[string]*list.Element
	order   *list.List
}

type memItem struct {
	token   string
	val     []byte
	expires time.Time
}

func NewMemoryStore(maxsize int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		maxsize: maxsize,
		ttl:     ttl,
		now:     time.Now,
		idx:     make(map[string]*list.Element, maxsize),
		order:   list.New(),
	}
}

func (s *MemoryStore) Get(ctx context.Context, token string) (Record, error) {
	var rec Record

	s.mu.Lock()
	el, ok := s.idx[token]
	var raw []byte
	if ok {
		it := el.Value.(*memItem)
		if s.ttl > 0 && !s.now().Before(it.expires) {
			s.order.Remove(el)
			delete(s.idx, token)
			ok = false
		} else {
			s.order.MoveToFront(el)
			raw = it.val
		}
	}
	s.mu.Unlock()

	if !ok {
		return rec, ErrNotFound
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *MemoryStore) Put(ctx context.Context, token string, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	it := &memItem{token: token, val: raw, expires: s.now().Add(s.ttl)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.idx[token]; ok {
		el.Value = it
		s.order.MoveToFront(el)
		return nil
	}
	s.idx[token] = s.order.PushFront(it)
	for s.maxsize > 0 && len(s.idx) > s.maxsize {
		last := s.order.Back()
		s.order.Remove(last)
		delete(s.idx, last.Value.(*memItem).token)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	if el, ok := s.idx[token]; ok {
		s.order.Remove(el)
		delete(s.idx, token)
	}
	s.mu.Unlock()
	return nil
}

// Len returns the number of records held, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.idx)
}

// RedisStore keeps session records in Redis as JSON with a TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(token string) string {
	return "session:" + token
}

func (s *RedisStore) Get(ctx context.Context, token string) (Record, error) {
	var rec Record
	data, err := s.client.Get(ctx, redisKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *RedisStore) Put(ctx context.Context, token string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(token), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, redisKey(token)).Err()
}
