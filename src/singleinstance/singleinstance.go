package singleinstance

// This file defines the API for single-instance ownership and request delegation.

import (
	"context"
)

// Server owns the TCP endpoint and answers capture/translate requests.
type Server interface {
	// Start begins listening on the first port of the configured range and accepting client requests.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess sends success. For stdout mode, send text; for clipboard mode, send empty text.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

type RequestKind int

const (
	// KindCapture asks the resident to run a screen-region capture session.
	KindCapture RequestKind = iota
	// KindTranslate asks the resident to translate the attached text.
	KindTranslate
)

// Request represents a single delegated client request.
type Request struct {
	Kind           RequestKind
	OutputToStdout bool

	// Translate request fields.
	SourceLang string
	TargetLang string
	Text       string
}

// Client attempts to delegate an invocation to a resident server.
type Client interface {
	// TryCapture scans the TCP range, performs handshake, and delegates a
	// capture session. If no resident is found, returns delegated=false, err=nil.
	TryCapture(ctx context.Context, outputToStdout bool) (delegated bool, text string, err error)
	// TryTranslate delegates a text translation the same way.
	TryTranslate(ctx context.Context, text, from, to string) (delegated bool, result string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
