package store

import (
	"errors"
	"sync"
)

// ErrClosed 表示存储已经关闭。
var ErrClosed = errors.New("store: closed")

type MemStore struct {
	mu     sync.RWMutex
	flags  map[string]bool
	closed bool
}

func NewMemStore() *MemStore {
	return &MemStore{flags: make(map[string]bool)}
}

func (s *MemStore) GetFlag(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}
	return s.flags[key], nil
}

func (s *MemStore) SetFlag(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.flags[key] = value
	return nil
}

func (s *MemStore) DeleteFlag(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.flags, key)
	return nil
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
