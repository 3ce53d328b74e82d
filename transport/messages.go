// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/json"
	"time"

	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/vote"
)

// message tags, the first frame of every transmission
const (
	TagVerifyRequest        = "verify"
	TagVerifyVote           = "vote"
	TagIdentity             = "identity"
	TagPing                 = "ping"
	TagPong                 = "pong"
	TagMorphismAnnounce     = "morphism"
	TagMorphismSyncRequest  = "sync"
	TagMorphismSyncResponse = "sync-reply"
	TagAck                  = "ack"
	TagError                = "error"
)

// Packet - one tagged wire unit, sent as [tag, json] frames
type Packet struct {
	Tag  string
	Data []byte
}

// NewPacket - tag and encode a payload
func NewPacket(tag string, payload interface{}) (Packet, error) {
	data, err := json.Marshal(payload)
	if nil != err {
		return Packet{}, err
	}
	return Packet{Tag: tag, Data: data}, nil
}

// Decode - unpack the payload of a packet
func (p Packet) Decode(payload interface{}) error {
	return json.Unmarshal(p.Data, payload)
}

// Header - fields common to every message
type Header struct {
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

func newHeader(sender string) Header {
	return Header{
		Sender:    sender,
		Timestamp: time.Now().UTC(),
	}
}

// VerifyRequest - ask peers to verify an expression
type VerifyRequest struct {
	Header
	RequestID  string            `json:"requestId"`
	Expression string            `json:"expression"`
	Metadata   morphism.Metadata `json:"metadata"`
}

// VerifyVote - one verdict on an open request
type VerifyVote struct {
	Header
	RequestID string     `json:"requestId"`
	Vote      *vote.Vote `json:"vote"`
}

// Identity - introduce a node
type Identity struct {
	Header
	NodeID  string `json:"nodeId"`
	Version string `json:"version"`
}

// Ping - liveness probe
type Ping struct {
	Header
	Nonce uint64 `json:"nonce"`
}

// Pong - liveness answer, echoes the probe nonce
type Pong struct {
	Header
	Nonce uint64 `json:"nonce"`
}

// MorphismAnnounce - a new canonical record exists
type MorphismAnnounce struct {
	Header
	Digest    morphism.Digest `json:"digest"`
	Name      string          `json:"name"`
	StorageID string          `json:"storageId"`
}

// MorphismSyncRequest - fetch a record, by storage id after an
// announcement or by digest after a vote referenced it
type MorphismSyncRequest struct {
	Header
	StorageID string           `json:"storageId,omitempty"`
	Digest    *morphism.Digest `json:"digest,omitempty"`
}

// MorphismSyncResponse - the record for a sync request, nil when the
// responder does not hold it
type MorphismSyncResponse struct {
	Header
	Morphism *morphism.Morphism `json:"morphism,omitempty"`
}

// NewVerifyRequest - packet asking peers for verdicts
func NewVerifyRequest(sender string, requestID string, expressionText string, metadata morphism.Metadata) (Packet, error) {
	return NewPacket(TagVerifyRequest, &VerifyRequest{
		Header:     newHeader(sender),
		RequestID:  requestID,
		Expression: expressionText,
		Metadata:   metadata,
	})
}

// NewVerifyVote - packet carrying one verdict back to the requester
func NewVerifyVote(sender string, requestID string, v *vote.Vote) (Packet, error) {
	return NewPacket(TagVerifyVote, &VerifyVote{
		Header:    newHeader(sender),
		RequestID: requestID,
		Vote:      v,
	})
}

// NewIdentity - packet introducing this node
func NewIdentity(sender string, nodeID string, version string) (Packet, error) {
	return NewPacket(TagIdentity, &Identity{
		Header:  newHeader(sender),
		NodeID:  nodeID,
		Version: version,
	})
}

// NewPing - liveness probe packet
func NewPing(sender string, nonce uint64) (Packet, error) {
	return NewPacket(TagPing, &Ping{Header: newHeader(sender), Nonce: nonce})
}

// NewPong - liveness answer packet
func NewPong(sender string, nonce uint64) (Packet, error) {
	return NewPacket(TagPong, &Pong{Header: newHeader(sender), Nonce: nonce})
}

// NewMorphismAnnounce - packet announcing a new canonical record
func NewMorphismAnnounce(sender string, digest morphism.Digest, name string, storageID string) (Packet, error) {
	return NewPacket(TagMorphismAnnounce, &MorphismAnnounce{
		Header:    newHeader(sender),
		Digest:    digest,
		Name:      name,
		StorageID: storageID,
	})
}

// NewMorphismSyncRequest - packet requesting an announced record
func NewMorphismSyncRequest(sender string, storageID string) (Packet, error) {
	return NewPacket(TagMorphismSyncRequest, &MorphismSyncRequest{
		Header:    newHeader(sender),
		StorageID: storageID,
	})
}

// NewMorphismSyncByDigest - packet requesting a record a vote referenced
func NewMorphismSyncByDigest(sender string, digest morphism.Digest) (Packet, error) {
	return NewPacket(TagMorphismSyncRequest, &MorphismSyncRequest{
		Header: newHeader(sender),
		Digest: &digest,
	})
}

// NewMorphismSyncResponse - packet answering a sync request
func NewMorphismSyncResponse(sender string, m *morphism.Morphism) (Packet, error) {
	return NewPacket(TagMorphismSyncResponse, &MorphismSyncResponse{
		Header:   newHeader(sender),
		Morphism: m,
	})
}
