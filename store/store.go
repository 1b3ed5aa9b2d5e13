// Package store 持久化少量布尔标记，例如导出说明是否已经展示过。
package store

// FlagStore 是布尔标记的简单键值存储，不存在的 key 读作 false。
type FlagStore interface {
	GetFlag(key string) (bool, error)
	SetFlag(key string, value bool) error
	DeleteFlag(key string) error
	Close() error
}
