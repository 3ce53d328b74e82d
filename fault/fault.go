// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	ExistsError   GenericError
	InvalidError  GenericError
	LengthError   GenericError
	NotFoundError GenericError
	ProcessError  GenericError
	RecordError   GenericError
)

// common errors - keep in alphabetic order
var (
	AlreadyInitialised              = ProcessError("already initialised")
	BroadcastQueueFull              = ProcessError("broadcast queue is full")
	CannotDecodeMorphism            = RecordError("cannot decode morphism")
	CertificateFileExists           = ExistsError("certificate file already exists")
	CollectionAlreadyResolved       = ProcessError("collection already resolved")
	DanglingBodySeparator           = InvalidError("body separator without binder")
	DigestLengthIsInvalid           = LengthError("digest length is invalid")
	EmptyExpression                 = InvalidError("empty expression")
	ExpansionDepthExceeded          = ProcessError("expansion depth exceeded")
	ExpressionIsImpure              = InvalidError("expression is impure")
	InvalidConfidence               = InvalidError("confidence is out of range")
	InvalidCount                    = InvalidError("invalid count")
	InvalidIPAddress                = InvalidError("invalid IP address")
	InvalidListenAddress            = InvalidError("invalid listen address")
	InvalidMorphismName             = InvalidError("invalid morphism name")
	InvalidNetwork                  = InvalidError("invalid network")
	InvalidNodeKey                  = InvalidError("invalid node key")
	InvalidNodeName                 = InvalidError("invalid node name")
	InvalidPeerAddress              = InvalidError("invalid peer address")
	InvalidPeerPublicKey            = InvalidError("invalid peer public key")
	InvalidPortNumber               = InvalidError("invalid port number")
	InvalidStructure                = InvalidError("structure mismatch")
	InvalidVoteKind                 = InvalidError("invalid vote kind")
	KeyFileExists                   = ExistsError("key file already exists")
	MissingAbstractionBody          = InvalidError("missing body after binder")
	MissingBinderParameter          = InvalidError("missing parameter after binder")
	MissingParameters               = InvalidError("missing parameters")
	MorphismAlreadyRegistered       = ExistsError("morphism already registered")
	MorphismNotFound                = NotFoundError("morphism not found")
	NotACanonicalRecord             = RecordError("not a canonical record")
	NotADigest                      = RecordError("not a digest")
	NotAvailableDuringResynchronise = ProcessError("not available during resynchronise")
	NotConnected                    = ProcessError("not connected")
	NotInitialised                  = ProcessError("not initialised")
	RateLimiting                    = ProcessError("rate limiting")
	ReductionAbandoned              = ProcessError("reduction abandoned")
	ReductionLimitExceeded          = ProcessError("reduction limit exceeded")
	RequestNotFound                 = NotFoundError("request not found")
	StorageIsNotSet                 = ProcessError("storage is not set")
	TransportIsNotSet               = ProcessError("transport is not set")
	UnbalancedParentheses           = InvalidError("unbalanced parentheses")
	UnexpectedEndOfExpression       = InvalidError("unexpected end of expression")
	UnexpectedToken                 = InvalidError("unexpected token")
	UnknownPeer                     = NotFoundError("unknown peer")
	VotesWithZeroConfidence         = ProcessError("votes carry zero total confidence")
	WrongNetworkForGenesis          = InvalidError("wrong network for genesis")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// IsErrExists - determine if an error is from the exists class
func IsErrExists(e error) bool { _, ok := e.(ExistsError); return ok }

// IsErrInvalid - determine if an error is from the invalid class
func IsErrInvalid(e error) bool { _, ok := e.(InvalidError); return ok }

// IsErrLength - determine if an error is from the length class
func IsErrLength(e error) bool { _, ok := e.(LengthError); return ok }

// IsErrNotFound - determine if an error is from the not found class
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }

// IsErrProcess - determine if an error is from the process class
func IsErrProcess(e error) bool { _, ok := e.(ProcessError); return ok }

// IsErrRecord - determine if an error is from the record class
func IsErrRecord(e error) bool { _, ok := e.(RecordError); return ok }
