// Package env holds the bootloader environment: a flat string key/value
// store with a U-Boot compatible binary image.
package env

import (
	"sort"
	"strings"
	"sync"

	"vim3-go/errcode"
)

// Env is the subset of the environment board hooks use.
type Env interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Store is an in-memory Env.
type Store struct {
	mu   sync.RWMutex
	vars map[string]string
}

func NewStore() *Store { return &Store{vars: make(map[string]string)} }

func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[key]
	return v, ok
}

// Set stores value under key; an empty value deletes the key, as setenv does.
func (s *Store) Set(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\x00") {
		return &errcode.E{C: errcode.InvalidArgument, Op: "setenv", Msg: "bad key " + key}
	}
	if strings.IndexByte(value, 0) >= 0 {
		return &errcode.E{C: errcode.InvalidArgument, Op: "setenv", Msg: "NUL in value of " + key}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.vars, key)
		return nil
	}
	s.vars[key] = value
	return nil
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.vars))
	for k := range s.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}
