// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - a queuing system for all message packets
// whether internally generated or received from peers
package messagebus

import (
	"reflect"
	"strconv"
	"sync"
)

// Message - message to put into a queue
type Message struct {
	Command    string   // the commands: request, vote, announce, …
	Parameters [][]byte // list of encoded parameters
}

// Queue - structure of a simple queue
type Queue struct {
	c    chan Message
	size int
}

// BroadcastQueue - fan out messages to all attached listeners
//
// messages already sent are remembered and suppressed until dropped
// from the cache, except for commands marked as uncacheable
type BroadcastQueue struct {
	sync.Mutex
	listeners   []chan Message
	defaultSize int
	cache       map[string]struct{}
}

// Bus - all available message queues
var Bus struct {
	Broadcast *BroadcastQueue `size:"1000"` // to all subscribed peers
	TestQueue *Queue          `size:"50"`   // for testing use
}

// commands that are never cached, every send is delivered
var uncacheable = map[string]struct{}{
	"vote":     {},
	"identity": {},
	"ping":     {},
	"pong":     {},
}

// create all queues with their tagged sizes
func init() {
	busValue := reflect.ValueOf(&Bus).Elem()
	busType := busValue.Type()
	for i := 0; i < busType.NumField(); i += 1 {
		queueSize, err := strconv.Atoi(busType.Field(i).Tag.Get("size"))
		if nil != err {
			panic("messagebus: invalid size tag on: " + busType.Field(i).Name)
		}

		switch busValue.Field(i).Type() {
		case reflect.TypeOf((*Queue)(nil)):
			q := &Queue{
				c:    make(chan Message, queueSize),
				size: queueSize,
			}
			busValue.Field(i).Set(reflect.ValueOf(q))

		case reflect.TypeOf((*BroadcastQueue)(nil)):
			q := &BroadcastQueue{
				listeners:   make([]chan Message, 0, 10),
				defaultSize: queueSize,
				cache:       make(map[string]struct{}),
			}
			busValue.Field(i).Set(reflect.ValueOf(q))

		default:
			panic("messagebus: unsupported queue type for: " + busType.Field(i).Name)
		}
	}
}

// Send - queue a message, blocks if the queue is full
func (queue *Queue) Send(command string, parameters ...[]byte) {
	queue.c <- Message{
		Command:    command,
		Parameters: parameters,
	}
}

// Chan - channel to read from the queue
func (queue *Queue) Chan() <-chan Message {
	return queue.c
}

// Send - fan a message out to all listeners, dropping it for any
// listener whose channel is full
//
// whole message delivery is not guaranteed, peers resynchronise
// separately
func (queue *BroadcastQueue) Send(command string, parameters ...[]byte) {
	m := Message{
		Command:    command,
		Parameters: parameters,
	}

	queue.Lock()
	defer queue.Unlock()

	if _, nocache := uncacheable[command]; !nocache {
		k := cacheKey(m)
		if _, sent := queue.cache[k]; sent {
			return
		}
		queue.cache[k] = struct{}{}
	}

	for _, listener := range queue.listeners {
		select {
		case listener <- m:
		default:
		}
	}
}

// Chan - attach a new listener channel to the broadcaster
//
// a size of zero selects the default queue size
func (queue *BroadcastQueue) Chan(size int) <-chan Message {
	if size <= 0 {
		size = queue.defaultSize
	}
	c := make(chan Message, size)

	queue.Lock()
	queue.listeners = append(queue.listeners, c)
	queue.Unlock()

	return c
}

// DropCache - forget a cached broadcast so that an identical message
// can be sent again
func DropCache(m Message) {
	queue := Bus.Broadcast
	queue.Lock()
	delete(queue.cache, cacheKey(m))
	queue.Unlock()
}

// cache key is the command followed by all parameter bytes
func cacheKey(m Message) string {
	n := len(m.Command)
	for _, p := range m.Parameters {
		n += 1 + len(p)
	}
	buffer := make([]byte, 0, n)
	buffer = append(buffer, m.Command...)
	for _, p := range m.Parameters {
		buffer = append(buffer, 0x00)
		buffer = append(buffer, p...)
	}
	return string(buffer)
}
