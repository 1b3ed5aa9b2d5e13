package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const flagPrefix = "flag:"

// BadgerStore 把标记保存在 badger 数据库中。路径为空时使用内存数据库，Close 后丢失。
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) GetFlag(key string) (bool, error) {
	var value bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(flagKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = len(val) == 1 && val[0] == 1
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("get flag %q: %w", key, err)
	}
	return value, nil
}

func (s *BadgerStore) SetFlag(key string, value bool) error {
	b := byte(0)
	if value {
		b = 1
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(flagKey(key), []byte{b})
	})
	if err != nil {
		return fmt.Errorf("set flag %q: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) DeleteFlag(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(flagKey(key))
	})
	if err != nil {
		return fmt.Errorf("delete flag %q: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func flagKey(key string) []byte {
	return []byte(flagPrefix + key)
}
