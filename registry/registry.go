// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - append-only collection of canonical morphisms
//
// the registry is the guarded insertion point, the first writer of a
// digest wins and every later writer receives the existing record
package registry

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/messagebus"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/parser"
	"github.com/lambda-foundation/lambdad/recursion"
	"github.com/lambda-foundation/lambdad/semantic"
)

const loggerCategory = "registry"

// Storage - write-through persistence seam
type Storage interface {
	Store(m *morphism.Morphism) (string, error)
}

// Registry - the in-memory canonical store owned by a node
type Registry struct {
	sync.RWMutex
	log      *logger.L
	store    Storage
	detector *recursion.Detector
	entries  map[morphism.Digest]*morphism.Morphism
	names    map[string]*morphism.Morphism
	order    []morphism.Digest
	announce bool
}

// New - create an empty registry
//
// store may be nil for a memory only node, the detector learns the
// names of recursive definitions as they arrive
func New(store Storage, detector *recursion.Detector) *Registry {
	return &Registry{
		log:      logger.New(loggerCategory),
		store:    store,
		detector: detector,
		entries:  make(map[morphism.Digest]*morphism.Morphism),
		names:    make(map[string]*morphism.Morphism),
	}
}

// EnableAnnouncements - publish newly registered morphisms on the bus
//
// kept off while genesis seeds load so peers are not flooded at start
func (r *Registry) EnableAnnouncements() {
	r.Lock()
	r.announce = true
	r.Unlock()
}

// Add - guarded insertion, first writer wins
//
// returns the stored record and true when the morphism was new, the
// existing record and false when the digest was already present
func (r *Registry) Add(m *morphism.Morphism) (*morphism.Morphism, bool) {

	r.Lock()
	if existing, ok := r.entries[m.Digest]; ok {
		r.Unlock()
		return existing, false
	}
	r.entries[m.Digest] = m
	if _, ok := r.names[m.Name]; ok {
		r.log.Debugf("name already indexed: %s", m.Name)
	} else {
		r.names[m.Name] = m
	}
	r.order = append(r.order, m.Digest)
	announce := r.announce
	r.Unlock()

	r.learnRecursive(m)

	if nil != r.store {
		id, err := r.store.Store(m)
		if nil != err {
			r.log.Warnf("store: %s  error: %s", m.Name, err)
		} else {
			r.log.Debugf("stored: %s as: %s", m.Name, id)
		}
	}

	if announce {
		packed, err := m.Pack()
		if nil != err {
			r.log.Errorf("pack: %s  error: %s", m.Name, err)
		} else {
			messagebus.Bus.Broadcast.Send("morphism", m.Digest[:], packed)
		}
	}

	return m, true
}

// Get - fetch by digest, nil when not registered
func (r *Registry) Get(digest morphism.Digest) *morphism.Morphism {
	r.RLock()
	m := r.entries[digest]
	r.RUnlock()
	return m
}

// Has - check whether a digest is registered
func (r *Registry) Has(digest morphism.Digest) bool {
	r.RLock()
	_, ok := r.entries[digest]
	r.RUnlock()
	return ok
}

// Lookup - fetch by name, nil when not registered
func (r *Registry) Lookup(name string) *morphism.Morphism {
	r.RLock()
	m := r.names[name]
	r.RUnlock()
	return m
}

// Definition - normalised definition text for a registered name
//
// this is the identifier expansion feed
func (r *Registry) Definition(name string) (string, bool) {
	r.RLock()
	m, ok := r.names[name]
	r.RUnlock()
	if !ok {
		return "", false
	}
	return m.Definition, true
}

// List - all morphisms in insertion order
func (r *Registry) List() []*morphism.Morphism {
	r.RLock()
	defer r.RUnlock()

	list := make([]*morphism.Morphism, 0, len(r.order))
	for _, digest := range r.order {
		list = append(list, r.entries[digest])
	}
	return list
}

// Candidates - equivalence comparison feed in insertion order
func (r *Registry) Candidates() []semantic.Candidate {
	r.RLock()
	defer r.RUnlock()

	candidates := make([]semantic.Candidate, 0, len(r.order))
	for _, digest := range r.order {
		m := r.entries[digest]
		candidates = append(candidates, semantic.Candidate{
			Digest:     m.Digest,
			Definition: m.Definition,
		})
	}
	return candidates
}

// Size - number of registered morphisms
func (r *Registry) Size() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.order)
}

// Touch - record one reuse of a registered digest
func (r *Registry) Touch(digest morphism.Digest) error {
	r.Lock()
	defer r.Unlock()

	m, ok := r.entries[digest]
	if !ok {
		return fault.MorphismNotFound
	}
	m.Touch()
	return nil
}

// feed recursive definitions to the detector
func (r *Registry) learnRecursive(m *morphism.Morphism) {
	if nil == r.detector {
		return
	}
	expr, err := parser.Parse(m.Definition)
	if nil != err {
		expr = nil
	}
	if r.detector.IsRecursive(expr, m.Definition) {
		r.log.Infof("recursive definition: %s", m.Name)
		r.detector.Learn(m.Name)
	}
}
