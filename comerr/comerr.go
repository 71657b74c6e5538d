package comerr

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oleworks/com-runtime/hresult"
)

// Error is an explicit application failure: managed code deliberately
// signals a result code and a human-readable description. The interface
// and class identities are filled in at the boundary when known.
type Error struct {
	Code        hresult.HRESULT
	Description string
	Source      string
	IID         uuid.UUID
	CLSID       *uuid.UUID
}

// New builds an application failure with the given code and message.
func New(hr hresult.HRESULT, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: hr, Description: msg}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.HResult().String())
	if e.Source != "" {
		b.WriteString(" from ")
		b.WriteString(e.Source)
	}
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	return b.String()
}

// HResult returns the failure's result code, substituting the generic
// failure code when none was attached.
func (e *Error) HResult() hresult.HRESULT {
	if e.Code != 0 {
		return e.Code
	}
	return hresult.E_FAIL
}

// Is matches any *Error with the same result code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// ErrNotImplemented signals that a member is not implemented. Absence of
// an implementation is a normal state for partially supported interfaces,
// so this translates to E_NOTIMPL without being surfaced as an error.
var ErrNotImplemented = errors.New("comerr: member not implemented")

// HResulter is implemented by errors that carry a native result code.
type HResulter interface {
	HResult() hresult.HRESULT
}

// Normalize resolves any managed failure to a result code. Nothing is
// allowed to unwind past the boundary, so this never fails.
func Normalize(err error) hresult.HRESULT {
	if err == nil {
		return hresult.S_OK
	}
	if errors.Is(err, ErrNotImplemented) {
		return hresult.E_NOTIMPL
	}
	var hres HResulter
	if errors.As(err, &hres) {
		hr := hres.HResult()
		if hr.Failed() {
			return hr
		}
		if hr == 0 {
			return hresult.E_FAIL
		}
		return hresult.FromWin32(uint32(hr))
	}
	return hresult.E_FAIL
}

// The most recent rich-error record. The original model stores this in
// OS thread-local state; goroutines have no such identity, so a single
// process-wide slot with the same set-then-consume protocol is kept.
var (
	recordMu sync.Mutex
	record   *Error
)

// Report stores e as the current rich-error record and returns its
// result code, which the reporting slot returns to the native caller.
func Report(e *Error) hresult.HRESULT {
	recordMu.Lock()
	record = e
	recordMu.Unlock()
	return e.HResult()
}

// LastRecord consumes and returns the current rich-error record, or nil
// when the last call did not attach one.
func LastRecord() *Error {
	recordMu.Lock()
	defer recordMu.Unlock()
	r := record
	record = nil
	return r
}
