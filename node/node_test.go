// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/node"
	"github.com/lambda-foundation/lambdad/proofcase"
	"github.com/lambda-foundation/lambdad/storage"
	"github.com/lambda-foundation/lambdad/transport"
	"github.com/lambda-foundation/lambdad/vote"
)

func TestMain(m *testing.M) {
	curPath := os.Getenv("PWD")
	var logConfig = logger.Configuration{
		Directory: curPath,
		File:      "node.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "error",
		},
	}
	if err := logger.Initialise(logConfig); nil != err {
		panic(fmt.Sprintf("logger initialisation failed: %s", err))
	}
	rc := m.Run()
	logger.Finalise()
	os.RemoveAll(curPath + "/node.log")
	os.Exit(rc)
}

// a node on a hub with a memory store, hypotheses disabled unless the
// test asks for them
func newTestNode(t *testing.T, hub *transport.Hub, name string, configure func(*node.Configuration)) *node.Node {
	t.Helper()

	configuration := node.Configuration{
		Name:                name,
		Network:             "testing",
		CollectTimeout:      2 * time.Second,
		HypothesisThreshold: 1.0,
		Version:             "test",
	}
	if nil != configure {
		configure(&configuration)
	}

	n, err := node.New(configuration, hub.Join(name), storage.NewMemoryStore())
	require.NoError(t, err, "node %s", name)
	t.Cleanup(n.Finalise)
	return n
}

func metadata(intent string) morphism.Metadata {
	return morphism.Metadata{
		Intent:     intent,
		SourceNode: "test-client",
		Timestamp:  time.Now().UTC(),
	}
}

func TestNewValidation(t *testing.T) {
	hub := transport.NewHub()

	_, err := node.New(node.Configuration{Network: "testing"}, hub.Join("x"), nil)
	assert.Equal(t, fault.InvalidNodeName, err, "missing name")

	_, err = node.New(node.Configuration{Name: "n1", Network: "mainnet"}, hub.Join("n1"), nil)
	assert.Equal(t, fault.InvalidNetwork, err, "unknown network")

	_, err = node.New(node.Configuration{Name: "n1", Network: "testing"}, nil, nil)
	assert.Equal(t, fault.TransportIsNotSet, err, "nil transport")
}

func TestSoloCreateThenFind(t *testing.T) {
	n := newTestNode(t, transport.NewHub(), "solo-create", nil)
	ctx := context.Background()

	before := n.Status().Morphisms

	outcome := n.Verify(ctx, "λf.λx.f (x f)", metadata("mockingbird variant"))
	require.Equal(t, node.StatusCreated, outcome.Status, "novel expression creates")
	require.NotNil(t, outcome.Digest, "created digest")
	require.NotNil(t, outcome.Morphism, "created record")
	assert.Equal(t, "mockingbird-variant", outcome.Morphism.Name, "name from intent")
	assert.Equal(t, 1.0, outcome.Agreement, "solo agreement is unanimous")
	assert.Equal(t, []string{"solo-create"}, outcome.Participants, "solo participant")
	assert.Equal(t, before+1, n.Status().Morphisms, "registry grew")

	// the same computation under different binder names is not new
	again := n.Verify(ctx, "λg.λy.g (y g)", metadata("renamed"))
	require.Equal(t, node.StatusFound, again.Status, "alpha variant finds")
	require.NotNil(t, again.Digest, "found digest")
	assert.Equal(t, *outcome.Digest, *again.Digest, "same canonical record")
	require.NotNil(t, again.Morphism, "found record")
	assert.Equal(t, uint64(1), again.Morphism.UsageCount, "reuse counted")
	require.NotNil(t, again.Proof, "equivalence evidence")
	assert.Equal(t, proofcase.MethodReduction, again.Proof.Method, "proved by reduction")

	assert.Equal(t, before+1, n.Status().Morphisms, "no duplicate record")
	assert.Equal(t, uint64(2), n.Status().Verifications, "verifications counted")
}

func TestSoloIdenticalTextFinds(t *testing.T) {
	n := newTestNode(t, transport.NewHub(), "solo-digest", nil)

	outcome := n.Verify(context.Background(), "λx.x", metadata(""))
	require.Equal(t, node.StatusFound, outcome.Status, "seed text resolves")
	require.NotNil(t, outcome.Proof, "digest evidence")
	assert.Equal(t, proofcase.MethodDigest, outcome.Proof.Method, "digest identity")
	assert.Equal(t, n.Registry().Lookup("identity").Digest, *outcome.Digest, "identity record")
}

func TestSoloParseRejected(t *testing.T) {
	n := newTestNode(t, transport.NewHub(), "solo-parse", nil)

	outcome := n.Verify(context.Background(), "λx.", metadata(""))
	require.Equal(t, node.StatusRejected, outcome.Status, "unparseable rejects")
	require.NotEmpty(t, outcome.Reasons, "reason present")
	assert.Contains(t, outcome.Reasons[0], "parse", "parse failure named")
	assert.Nil(t, outcome.Digest, "no record")
}

func TestSoloImpureRejected(t *testing.T) {
	n := newTestNode(t, transport.NewHub(), "solo-impure", nil)

	outcome := n.Verify(context.Background(), "λx.print x", metadata("logger"))
	require.Equal(t, node.StatusRejected, outcome.Status, "impure rejects")
	require.NotEmpty(t, outcome.Violations, "violations listed")
	assert.Equal(t, "side-effect", outcome.Violations[0].Rule, "effect call named")
	assert.NotEmpty(t, outcome.Violations[0].Suggestion, "pure alternative suggested")
	require.NotEmpty(t, outcome.Reasons, "reasoning present")
	assert.Contains(t, outcome.Reasons[0], "impure", "impurity named")
}

func TestSoloRecursiveVariant(t *testing.T) {
	n := newTestNode(t, transport.NewHub(), "solo-recursive", nil)

	// alpha variant of the Y seed, must never be beta reduced
	outcome := n.Verify(context.Background(), "λg.(λy.g (y y)) (λy.g (y y))", metadata(""))
	require.Equal(t, node.StatusFound, outcome.Status, "recursive variant resolves")
	assert.Equal(t, n.Registry().Lookup("Y").Digest, *outcome.Digest, "Y record")
	require.NotNil(t, outcome.Proof, "structural evidence")
	assert.Equal(t, proofcase.MethodStructural, outcome.Proof.Method, "proved without reduction")
}

func TestSoloHypothetical(t *testing.T) {
	n := newTestNode(t, transport.NewHub(), "solo-hypothesis", func(configuration *node.Configuration) {
		configuration.HypothesisThreshold = 0.7
	})

	target, err := morphism.New("add-three", "Nat → Nat", "λx.PLUS x (PLUS ONE TWO)", 1.0, "test")
	require.NoError(t, err, "target morphism")
	_, created := n.Registry().Add(target)
	require.True(t, created, "target registered")

	outcome := n.Verify(context.Background(), "λx.PLUS x (PLUS ONE ONE)", metadata("close variant"))
	require.Equal(t, node.StatusHypothetical, outcome.Status, "near miss is hypothetical")
	require.NotNil(t, outcome.Hypothesis, "hypothesis attached")
	assert.Equal(t, target.Digest, outcome.Hypothesis.Candidate, "closest candidate proposed")
	assert.Less(t, outcome.Hypothesis.Confidence, 1.0, "confidence below certainty")
	assert.Greater(t, outcome.Hypothesis.Confidence, 0.7, "confidence above threshold")
	assert.NotEmpty(t, outcome.Hypothesis.Steps, "exploration steps suggested")
	assert.Nil(t, outcome.Digest, "nothing registered")
	assert.Equal(t, 0, countByName(n, "close-variant"), "no record minted")
}

func countByName(n *node.Node, name string) int {
	count := 0
	for _, m := range n.Registry().List() {
		if name == m.Name {
			count += 1
		}
	}
	return count
}

func TestTwoNodeAgreement(t *testing.T) {
	hub := transport.NewHub()
	a := newTestNode(t, hub, "node-a", nil)
	newTestNode(t, hub, "node-b", nil)

	outcome := a.Verify(context.Background(), "λy.y", metadata(""))
	require.Equal(t, node.StatusFound, outcome.Status, "both sides prove identity")
	assert.Equal(t, a.Registry().Lookup("identity").Digest, *outcome.Digest, "identity record")
	assert.Equal(t, 1.0, outcome.Agreement, "full agreement")
	require.Len(t, outcome.Participants, 2, "both nodes voted")
	assert.Contains(t, outcome.Participants, "node-a", "local vote")
	assert.Contains(t, outcome.Participants, "node-b", "peer vote")
	assert.Empty(t, outcome.Outliers, "no dissent")
}

func TestTwoNodeSynchronisation(t *testing.T) {
	hub := transport.NewHub()
	a := newTestNode(t, hub, "sync-a", nil)
	b := newTestNode(t, hub, "sync-b", nil)

	outcome := a.Verify(context.Background(), "λp.λq.λr.p r (q r)", metadata("starling"))
	require.Equal(t, node.StatusCreated, outcome.Status, "novel expression creates")
	digest := *outcome.Digest

	// the announcement and the record pull are asynchronous
	deadline := time.Now().Add(3 * time.Second)
	for !b.Registry().Has(digest) {
		if time.Now().After(deadline) {
			t.Fatal("record never reached the peer")
		}
		time.Sleep(20 * time.Millisecond)
	}

	synced := b.Registry().Get(digest)
	require.NotNil(t, synced, "synchronised record")
	assert.Equal(t, "starling", synced.Name, "name carried over")
	assert.Equal(t, outcome.Morphism.Definition, synced.Definition, "definition carried over")
}

// scriptedTransport - answers every verification request with a fixed
// set of peer votes
type scriptedTransport struct {
	sync.Mutex
	handler transport.Handler
	peers   int
	votes   func(request *transport.VerifyRequest) []*vote.Vote
	direct  []transport.Packet
}

func (s *scriptedTransport) OnMessage(handler transport.Handler) {
	s.Lock()
	s.handler = handler
	s.Unlock()
}

func (s *scriptedTransport) PeerCount() int {
	return s.peers
}

func (s *scriptedTransport) SendToPeer(id string, packet transport.Packet) (*transport.Packet, error) {
	s.Lock()
	s.direct = append(s.direct, packet)
	s.Unlock()
	return &transport.Packet{Tag: transport.TagAck}, nil
}

func (s *scriptedTransport) Broadcast(packet transport.Packet) error {
	if transport.TagVerifyRequest != packet.Tag || nil == s.votes {
		return nil
	}
	var request transport.VerifyRequest
	if err := packet.Decode(&request); nil != err {
		return err
	}
	s.Lock()
	handler := s.handler
	s.Unlock()
	go func() {
		for _, v := range s.votes(&request) {
			reply, err := transport.NewVerifyVote(v.NodeID, request.RequestID, v)
			if nil == err {
				handler(reply)
			}
		}
	}()
	return nil
}

func scriptedNode(t *testing.T, name string, threshold float64, script *scriptedTransport) *node.Node {
	t.Helper()
	n, err := node.New(node.Configuration{
		Name:                name,
		Network:             "testing",
		Threshold:           threshold,
		CollectTimeout:      2 * time.Second,
		HypothesisThreshold: 1.0,
		Version:             "test",
	}, script, nil)
	require.NoError(t, err, "node %s", name)
	t.Cleanup(n.Finalise)
	return n
}

func equivalentAndImpureVotes(equivalentTo morphism.Digest) func(*transport.VerifyRequest) []*vote.Vote {
	return func(request *transport.VerifyRequest) []*vote.Vote {
		agree, _ := vote.New("peer-1", request.RequestID, vote.Equivalent, 1.0)
		agree.EquivalentTo = &equivalentTo

		dissent, _ := vote.New("peer-2", request.RequestID, vote.Impure, 1.0)
		dissent.Reasoning = "impure: loop"
		return []*vote.Vote{agree, dissent}
	}
}

func TestMajorityOverDissent(t *testing.T) {
	script := &scriptedTransport{peers: 2}
	n := scriptedNode(t, "tally-found", 0, script)
	script.votes = equivalentAndImpureVotes(n.Registry().Lookup("identity").Digest)

	outcome := n.Verify(context.Background(), "λx.x", metadata(""))
	require.Equal(t, node.StatusFound, outcome.Status, "two thirds carry the vote")
	assert.InDelta(t, 2.0/3.0, outcome.Agreement, 1e-9, "confidence weighted agreement")
	require.Len(t, outcome.Participants, 3, "all votes tallied")
	require.Len(t, outcome.Outliers, 1, "dissenting vote surfaced")
	assert.Equal(t, "peer-2", outcome.Outliers[0].NodeID, "dissenter named")
}

func TestThresholdBlocksMajority(t *testing.T) {
	script := &scriptedTransport{peers: 2}
	n := scriptedNode(t, "tally-rejected", 0.7, script)
	script.votes = equivalentAndImpureVotes(n.Registry().Lookup("identity").Digest)

	outcome := n.Verify(context.Background(), "λx.x", metadata(""))
	require.Equal(t, node.StatusRejected, outcome.Status, "two thirds misses 0.7")
	assert.InDelta(t, 2.0/3.0, outcome.Agreement, 1e-9, "agreement reported")
	require.NotEmpty(t, outcome.Reasons, "reason present")
	assert.Contains(t, outcome.Reasons[0], "below threshold", "threshold named")
	assert.Nil(t, outcome.Digest, "nothing resolved")
}

func TestShutdownAbandonsVerification(t *testing.T) {
	script := &scriptedTransport{peers: 1} // a peer that never answers
	n, err := node.New(node.Configuration{
		Name:                "abandoned",
		Network:             "testing",
		CollectTimeout:      30 * time.Second,
		HypothesisThreshold: 1.0,
		Version:             "test",
	}, script, nil)
	require.NoError(t, err, "node")

	outcomes := make(chan *node.Outcome, 1)
	go func() {
		outcomes <- n.Verify(context.Background(), "λx.x x y", metadata(""))
	}()

	time.Sleep(150 * time.Millisecond)
	n.Finalise()

	select {
	case outcome := <-outcomes:
		require.Equal(t, node.StatusRejected, outcome.Status, "abandoned request rejects")
		require.NotEmpty(t, outcome.Reasons, "reason present")
		assert.Contains(t, outcome.Reasons[0], "abandoned", "abandonment named")
	case <-time.After(5 * time.Second):
		t.Fatal("verification never returned")
	}
}

func TestStatus(t *testing.T) {
	hub := transport.NewHub()
	a := newTestNode(t, hub, "status-a", nil)
	newTestNode(t, hub, "status-b", nil)

	info := a.Status()
	assert.Equal(t, "status-a", info.Name, "name")
	assert.Equal(t, "testing", info.Network, "network")
	assert.Equal(t, "test", info.Version, "version")
	assert.Equal(t, 1, info.Peers, "one peer on the hub")
	assert.Equal(t, uint64(0), info.Verifications, "untouched counter")
	assert.Equal(t, a.Registry().Size(), info.Morphisms, "seeded registry")
	assert.NotEmpty(t, info.Uptime, "uptime formatted")
}
