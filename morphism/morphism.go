// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package morphism - the canonical record of a verified pure function
//
// a morphism is identified by the SHA3-512 digest of its normalised
// definition, the digest never changes after the record is created,
// only the usage fields move
package morphism

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lambda-foundation/lambdad/expression"
	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/proofcase"
)

// resonance moves towards one as a record is reused
const resonanceGain = 0.1

// Morphism - one canonical definition and its verification history
type Morphism struct {
	Name         string           `json:"name"`
	Signature    string           `json:"signature"`
	Definition   string           `json:"definition"` // normalised text
	Proof        *proofcase.Proof `json:"proof,omitempty"`
	PurityScore  float64          `json:"purityScore"`
	Digest       Digest           `json:"digest"` // hex
	UsageCount   uint64           `json:"usageCount"`
	Resonance    float64          `json:"resonance"`
	Birth        time.Time        `json:"birth"`
	LastUsed     time.Time        `json:"lastUsed"`
	Contributors []string         `json:"contributors"`
	Dependencies []string         `json:"dependencies,omitempty"`
}

// Metadata - data accompanying a verification request
type Metadata struct {
	Intent       string    `json:"intent"`
	Contributors []string  `json:"contributors,omitempty"`
	SourceNode   string    `json:"sourceNode"`
	Timestamp    time.Time `json:"timestamp"`
}

// Packed - JSON encoded morphism bytes as stored and synchronised
type Packed []byte

// New - build a morphism record
//
// the definition is normalised before the digest is taken
func New(name string, signature string, definition string, purityScore float64, sourceNode string) (*Morphism, error) {

	if "" == name || strings.ContainsAny(name, " \t\r\n") {
		return nil, fault.InvalidMorphismName
	}
	if purityScore < 0.0 || purityScore > 1.0 {
		return nil, fault.InvalidConfidence
	}

	normalised := expression.Normalise(definition)
	if "" == normalised {
		return nil, fault.EmptyExpression
	}

	now := time.Now().UTC()
	m := &Morphism{
		Name:         name,
		Signature:    signature,
		Definition:   normalised,
		PurityScore:  purityScore,
		Digest:       NewDigest(normalised),
		UsageCount:   0,
		Resonance:    0.5,
		Birth:        now,
		LastUsed:     now,
		Contributors: []string{sourceNode},
	}
	return m, nil
}

// Touch - record one reuse of the definition
//
// callers must hold whatever lock guards the record
func (m *Morphism) Touch() {
	m.UsageCount += 1
	m.LastUsed = time.Now().UTC()
	m.Resonance += (1.0 - m.Resonance) * resonanceGain
}

// Pack - encode for storage and synchronisation
func (m *Morphism) Pack() (Packed, error) {
	buffer, err := json.Marshal(m)
	if nil != err {
		return nil, err
	}
	return Packed(buffer), nil
}

// Unpack - decode a stored or received record
//
// the digest is recomputed from the definition, a mismatch means the
// record was tampered with or corrupted in transit
func Unpack(buffer Packed) (*Morphism, error) {

	m := &Morphism{}
	if err := json.Unmarshal(buffer, m); nil != err {
		return nil, fault.CannotDecodeMorphism
	}
	if "" == m.Definition || "" == m.Name {
		return nil, fault.CannotDecodeMorphism
	}
	if NewDigest(m.Definition) != m.Digest {
		return nil, fault.CannotDecodeMorphism
	}
	return m, nil
}
