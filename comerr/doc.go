// Package comerr defines the failure values that managed code may return
// across the native boundary, and the translation from those values into
// the HRESULT protocol.
//
// Three failure classes exist:
//
//	*Error            an explicit application failure with code and message
//	ErrNotImplemented the member is deliberately not implemented
//	HResulter         any error carrying a native result code
//
// Everything else is an unexpected failure and is reported as E_FAIL by
// Normalize. The package also keeps the per-call rich-error record that
// backs ISupportErrorInfo-style reporting: Report stores the record and
// LastRecord consumes it.
package comerr
