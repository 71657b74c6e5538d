// Package hresult defines the signed 32-bit result-code space used by the
// component ABI.
//
// Zero is success, positive values are alternate success states (S_FALSE),
// and any value with the top bit set is a failure. The constants carry the
// conventional unsigned spellings in comments; they are stored as their
// signed views so that Failed() is a plain sign test.
package hresult
