// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package consensus - settle one verification request by tallying the
// local verdict together with peer votes
package consensus

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/vote"
)

const (
	loggerCategory = "consensus"

	// DefaultCollectTimeout - how long to wait for peer votes
	DefaultCollectTimeout = 5 * time.Second
)

// Requester - transport seam, announces a request to connected peers
// and reports how many were asked
type Requester interface {
	RequestVotes(requestID string, expression string) (int, error)
}

// Machine - walks one verification request to a settled result
type Machine struct {
	log        *logger.L
	requester  Requester
	incoming   <-chan *vote.Vote
	requestID  string
	expression string
	localVote  *vote.Vote
	tally      *vote.Tally
	peerCount  int
	timeout    time.Duration
	result     *Result
	err        error
	state
}

// NewMachine - create a machine for one request
//
// incoming carries peer votes for this request id, it may be nil when
// no peers are expected
func NewMachine(requestID string, expression string, localVote *vote.Vote, requester Requester, incoming <-chan *vote.Vote) *Machine {
	machine := &Machine{
		log:        logger.New(loggerCategory),
		requester:  requester,
		incoming:   incoming,
		requestID:  requestID,
		expression: expression,
		localVote:  localVote,
		tally:      vote.NewTally(),
		timeout:    DefaultCollectTimeout,
	}
	machine.nextState(cStateIdle)
	return machine
}

// SetTimeout - change the vote collection window
func (m *Machine) SetTimeout(d time.Duration) {
	if d > 0 {
		m.timeout = d
	}
}

// State - current state as display text
func (m *Machine) State() string {
	return m.state.String()
}

// Resolve - drive the machine until the tally settles
//
// a machine resolves once, a timed out collection still resolves,
// cancellation abandons the request
func (m *Machine) Resolve(ctx context.Context) (*Result, error) {
	if cStateIdle != m.state {
		return nil, fault.CollectionAlreadyResolved
	}
	for !m.transitions(ctx) {
	}
	if nil != m.err {
		return nil, m.err
	}
	return m.result, nil
}

func (m *Machine) transitions(ctx context.Context) bool {
	log := m.log
	log.Debugf("request: %s  state: %s", m.requestID, m.state)
	stop := false
	switch m.state {
	case cStateIdle:
		err := m.tally.Add(m.localVote)
		if nil != err {
			m.err = err
			stop = true
			break
		}
		m.nextState(cStateRequestBroadcast)

	case cStateRequestBroadcast:
		peers := 0
		if nil != m.requester {
			n, err := m.requester.RequestVotes(m.requestID, m.expression)
			if nil != err {
				log.Warnf("request: %s  vote request failed: %s", m.requestID, err)
			} else {
				peers = n
			}
		}
		m.peerCount = peers
		if 0 == peers || nil == m.incoming {
			log.Infof("request: %s  resolving solo", m.requestID)
			m.nextState(cStateResolved)
		} else {
			log.Infof("request: %s  waiting for %d peers", m.requestID, peers)
			m.nextState(cStateCollectingVotes)
		}

	case cStateCollectingVotes:
		m.collect(ctx)
		if nil != m.err {
			stop = true
			break
		}
		m.nextState(cStateResolved)

	case cStateResolved:
		m.result = m.settle()
		stop = true
	}
	return stop
}

func (m *Machine) nextState(newState state) {
	m.state = newState
}

// wait for peer votes until everyone answered or the window closes
func (m *Machine) collect(ctx context.Context) {
	log := m.log
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	wanted := m.peerCount + 1 // peers plus the local vote
loop:
	for m.tally.Size() < wanted {
		select {
		case <-ctx.Done():
			log.Warnf("request: %s  abandoned: %s", m.requestID, ctx.Err())
			m.err = ctx.Err()
			return
		case <-timer.C:
			log.Infof("request: %s  timed out with %d of %d votes", m.requestID, m.tally.Size(), wanted)
			break loop
		case v, ok := <-m.incoming:
			if !ok {
				break loop
			}
			if v.RequestID != m.requestID {
				log.Debugf("request: %s  stray vote for: %s", m.requestID, v.RequestID)
				continue loop
			}
			err := m.tally.Add(v)
			if nil != err {
				log.Warnf("request: %s  dropped vote from %s: %s", m.requestID, v.NodeID, err)
			}
		}
	}
}

// freeze the tally into a result
func (m *Machine) settle() *Result {
	majority, _ := m.tally.Majority()
	agreement, err := m.tally.Agreement()
	if nil != err {
		agreement = 0.0
	}
	return &Result{
		Agreement:    agreement,
		Majority:     majority,
		Votes:        m.tally.Votes(),
		Outliers:     m.tally.Outliers(),
		Participants: m.tally.Size(),
		Timestamp:    time.Now().UTC(),
	}
}
