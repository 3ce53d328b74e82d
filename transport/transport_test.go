// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport_test

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lambda-foundation/lambdad/fault"
	"github.com/lambda-foundation/lambdad/morphism"
	"github.com/lambda-foundation/lambdad/transport"
	"github.com/lambda-foundation/lambdad/vote"
)

func TestMain(m *testing.M) {
	curPath := os.Getenv("PWD")
	var logConfig = logger.Configuration{
		Directory: curPath,
		File:      "transport.log",
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
	os.RemoveAll(curPath + "/transport.log")
	os.Exit(rc)
}

func TestVerifyRequestPacket(t *testing.T) {

	metadata := morphism.Metadata{
		Intent:     "test intent",
		SourceNode: "origin",
		Timestamp:  time.Now().UTC(),
	}
	packet, err := transport.NewVerifyRequest("node-a", "node-a:7", "λx.x", metadata)
	require.NoError(t, err, "pack")
	assert.Equal(t, transport.TagVerifyRequest, packet.Tag, "tag")

	var request transport.VerifyRequest
	require.NoError(t, packet.Decode(&request), "decode")
	assert.Equal(t, "node-a", request.Sender, "sender")
	assert.Equal(t, "node-a:7", request.RequestID, "request id")
	assert.Equal(t, "λx.x", request.Expression, "expression")
	assert.Equal(t, "test intent", request.Metadata.Intent, "metadata")
	assert.False(t, request.Timestamp.IsZero(), "timestamp stamped")
}

func TestVotePacket(t *testing.T) {

	v, err := vote.New("node-b", "node-a:7", vote.Equivalent, 0.95)
	require.NoError(t, err, "vote")
	digest := morphism.NewDigest("λx.x")
	v.EquivalentTo = &digest

	packet, err := transport.NewVerifyVote("node-b", "node-a:7", v)
	require.NoError(t, err, "pack")

	var carried transport.VerifyVote
	require.NoError(t, packet.Decode(&carried), "decode")
	require.NotNil(t, carried.Vote, "vote present")
	assert.Equal(t, vote.Equivalent, carried.Vote.Kind, "kind survives text marshalling")
	assert.Equal(t, 0.95, carried.Vote.Confidence, "confidence")
	require.NotNil(t, carried.Vote.EquivalentTo, "reference")
	assert.Equal(t, digest, *carried.Vote.EquivalentTo, "digest reference")
}

func TestHubDirected(t *testing.T) {

	hub := transport.NewHub()
	a := hub.Join("a")
	b := hub.Join("b")

	b.OnMessage(func(packet transport.Packet) *transport.Packet {
		if transport.TagPing == packet.Tag {
			var ping transport.Ping
			if err := packet.Decode(&ping); nil != err {
				return nil
			}
			reply, err := transport.NewPong("b", ping.Nonce)
			if nil != err {
				return nil
			}
			return &reply
		}
		return nil
	})

	packet, err := transport.NewPing("a", 42)
	require.NoError(t, err, "ping")

	reply, err := a.SendToPeer("b", packet)
	require.NoError(t, err, "directed send")
	require.NotNil(t, reply, "reply")
	assert.Equal(t, transport.TagPong, reply.Tag, "pong tag")

	var pong transport.Pong
	require.NoError(t, reply.Decode(&pong), "decode pong")
	assert.Equal(t, uint64(42), pong.Nonce, "nonce echoed")

	// a handler that stays quiet still acknowledges
	identity, err := transport.NewIdentity("b", "b", "test")
	require.NoError(t, err, "identity")
	reply, err = b.SendToPeer("a", identity)
	require.NoError(t, err, "send to silent member")
	assert.Equal(t, transport.TagAck, reply.Tag, "implicit ack")

	_, err = a.SendToPeer("missing", packet)
	assert.Equal(t, fault.UnknownPeer, err, "unknown peer")
}

func TestHubBroadcast(t *testing.T) {

	hub := transport.NewHub()
	a := hub.Join("a")
	b := hub.Join("b")
	c := hub.Join("c")

	received := make(chan string, 4)
	collector := func(id string) transport.Handler {
		return func(packet transport.Packet) *transport.Packet {
			received <- id + ":" + packet.Tag
			return nil
		}
	}
	a.OnMessage(collector("a"))
	b.OnMessage(collector("b"))
	c.OnMessage(collector("c"))

	packet, err := transport.NewIdentity("a", "a", "test")
	require.NoError(t, err, "identity")
	require.NoError(t, a.Broadcast(packet), "broadcast")

	got := make(map[string]int)
	for i := 0; i < 2; i += 1 {
		select {
		case s := <-received:
			got[s] += 1
		case <-time.After(2 * time.Second):
			t.Fatal("broadcast never arrived")
		}
	}
	assert.Equal(t, 1, got["b:identity"], "b received once")
	assert.Equal(t, 1, got["c:identity"], "c received once")

	select {
	case s := <-received:
		t.Fatalf("unexpected delivery: %q", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubMembership(t *testing.T) {

	hub := transport.NewHub()
	a := hub.Join("a")
	assert.Equal(t, 0, a.PeerCount(), "alone")

	b := hub.Join("b")
	assert.Equal(t, 1, a.PeerCount(), "one peer")
	assert.Equal(t, "b", b.ID(), "member id")

	b.Leave()
	assert.Equal(t, 0, a.PeerCount(), "peer left")

	packet, err := transport.NewPing("a", 1)
	require.NoError(t, err, "ping")
	_, err = a.SendToPeer("b", packet)
	assert.Equal(t, fault.UnknownPeer, err, "left members are unknown")
}

func TestParseKey(t *testing.T) {

	keyBytes := make([]byte, 32)
	for i := range keyBytes {
		keyBytes[i] = byte(i)
	}
	keyHex := hex.EncodeToString(keyBytes)

	parsed, private, err := transport.ParseKey("PUBLIC:" + keyHex + "\n")
	require.NoError(t, err, "public key")
	assert.False(t, private, "tagged public")
	assert.Equal(t, keyBytes, parsed, "key bytes")

	parsed, private, err = transport.ParseKey("PRIVATE:" + keyHex)
	require.NoError(t, err, "private key")
	assert.True(t, private, "tagged private")
	assert.Equal(t, keyBytes, parsed, "key bytes")

	_, _, err = transport.ParseKey("PUBLIC:" + keyHex[:30])
	assert.Equal(t, fault.InvalidNodeKey, err, "short key")

	_, _, err = transport.ParseKey(keyHex)
	assert.Equal(t, fault.InvalidNodeKey, err, "untagged key")

	_, _, err = transport.ParseKey("PUBLIC:not-hex")
	assert.Error(t, err, "broken hex")

	_, err = transport.ReadPublicKey("PRIVATE:" + keyHex)
	assert.Equal(t, fault.InvalidNodeKey, err, "private where public expected")

	_, err = transport.ReadPrivateKey("PUBLIC:" + keyHex)
	assert.Equal(t, fault.InvalidNodeKey, err, "public where private expected")
}

func TestMakeKeyPairRefusesOverwrite(t *testing.T) {

	dir := t.TempDir()
	publicFile := filepath.Join(dir, "peer.public")
	privateFile := filepath.Join(dir, "peer.private")

	require.NoError(t, os.WriteFile(publicFile, []byte("PUBLIC:00\n"), 0666), "seed file")

	err := transport.MakeKeyPair(publicFile, privateFile)
	assert.Equal(t, fault.KeyFileExists, err, "existing public key blocks")

	require.NoError(t, os.Remove(publicFile), "cleanup")
	require.NoError(t, os.WriteFile(privateFile, []byte("PRIVATE:00\n"), 0600), "seed file")

	err = transport.MakeKeyPair(publicFile, privateFile)
	assert.Equal(t, fault.KeyFileExists, err, "existing private key blocks")
}

func TestReadKeyFiles(t *testing.T) {

	dir := t.TempDir()
	publicFile := filepath.Join(dir, "node.public")
	privateFile := filepath.Join(dir, "node.private")

	keyBytes := make([]byte, 32)
	for i := range keyBytes {
		keyBytes[i] = byte(0xff - i)
	}
	keyHex := hex.EncodeToString(keyBytes)

	require.NoError(t, os.WriteFile(publicFile, []byte("PUBLIC:"+keyHex+"\n"), 0666), "write public")
	require.NoError(t, os.WriteFile(privateFile, []byte("PRIVATE:"+keyHex+"\n"), 0600), "write private")

	public, err := transport.ReadPublicKeyFile(publicFile)
	require.NoError(t, err, "read public")
	assert.Equal(t, keyBytes, public, "public bytes")

	private, err := transport.ReadPrivateKeyFile(privateFile)
	require.NoError(t, err, "read private")
	assert.Equal(t, keyBytes, private, "private bytes")

	_, err = transport.ReadPublicKeyFile(filepath.Join(dir, "missing"))
	assert.Error(t, err, "missing file")

}
