// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/morphism"
)

// Store - the persistence seam consumed by the registry and the node
//
// Retrieve returns nil without error when the id is unknown
type Store interface {
	Store(m *morphism.Morphism) (string, error)
	Retrieve(id string) (*morphism.Morphism, error)
	ListLocal() ([]*morphism.Morphism, error)
}

// LevelDBStore - morphism records in the Morphisms pool
//
// the database must be initialised before use
type LevelDBStore struct {
	log *logger.L
}

// NewLevelDBStore - create a store over the open database
func NewLevelDBStore() *LevelDBStore {
	return &LevelDBStore{
		log: logger.New("storage"),
	}
}

// Store - persist one record, returns its content id
//
// the name index keeps the id of the first record stored under a name
func (s *LevelDBStore) Store(m *morphism.Morphism) (string, error) {
	if !IsInitialised() {
		return "", fault.NotInitialised
	}

	packed, err := m.Pack()
	if nil != err {
		return "", err
	}
	id := ContentID(packed)

	Pool.Morphisms.Put([]byte(id), packed)

	nameKey := []byte(m.Name)
	if !Pool.Names.Has(nameKey) {
		Pool.Names.Put(nameKey, []byte(id))
	}

	s.log.Debugf("stored: %s as: %s", m.Name, id)
	return id, nil
}

// Retrieve - fetch a record by content id
func (s *LevelDBStore) Retrieve(id string) (*morphism.Morphism, error) {
	if !IsInitialised() {
		return nil, fault.NotInitialised
	}
	if err := ValidateID(id); nil != err {
		return nil, err
	}

	buffer := Pool.Morphisms.Get([]byte(id))
	if nil == buffer {
		return nil, nil
	}
	return morphism.Unpack(buffer)
}

// RetrieveByName - fetch a record through the name index
func (s *LevelDBStore) RetrieveByName(name string) (*morphism.Morphism, error) {
	if !IsInitialised() {
		return nil, fault.NotInitialised
	}

	id := Pool.Names.Get([]byte(name))
	if nil == id {
		return nil, nil
	}
	return s.Retrieve(string(id))
}

// ListLocal - all stored records
//
// corrupt records are skipped, the store keeps serving what decodes
func (s *LevelDBStore) ListLocal() ([]*morphism.Morphism, error) {
	if !IsInitialised() {
		return nil, fault.NotInitialised
	}

	elements := Pool.Morphisms.Elements()
	list := make([]*morphism.Morphism, 0, len(elements))
	for _, element := range elements {
		m, err := morphism.Unpack(element.Value)
		if nil != err {
			s.log.Warnf("corrupt record: %s skipped: %s", element.Key, err)
			continue
		}
		list = append(list, m)
	}
	return list, nil
}

// MemoryStore - storage for tests and throwaway local nodes
type MemoryStore struct {
	sync.RWMutex
	entries map[string]morphism.Packed
	order   []string
}

// NewMemoryStore - create an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]morphism.Packed),
	}
}

// Store - keep one record in memory, returns its content id
func (s *MemoryStore) Store(m *morphism.Morphism) (string, error) {
	packed, err := m.Pack()
	if nil != err {
		return "", err
	}
	id := ContentID(packed)

	s.Lock()
	if _, ok := s.entries[id]; !ok {
		s.entries[id] = packed
		s.order = append(s.order, id)
	}
	s.Unlock()
	return id, nil
}

// Retrieve - fetch a record by content id
func (s *MemoryStore) Retrieve(id string) (*morphism.Morphism, error) {
	s.RLock()
	packed, ok := s.entries[id]
	s.RUnlock()
	if !ok {
		return nil, nil
	}
	return morphism.Unpack(packed)
}

// ListLocal - all stored records in insertion order
func (s *MemoryStore) ListLocal() ([]*morphism.Morphism, error) {
	s.RLock()
	defer s.RUnlock()

	list := make([]*morphism.Morphism, 0, len(s.order))
	for _, id := range s.order {
		m, err := morphism.Unpack(s.entries[id])
		if nil != err {
			return nil, err
		}
		list = append(list, m)
	}
	return list, nil
}
