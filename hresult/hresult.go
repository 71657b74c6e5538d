package hresult

import "fmt"

// HRESULT is the native result code returned by every table slot.
type HRESULT int32

// Success codes.
const (
	S_OK    HRESULT = 0
	S_FALSE HRESULT = 1
)

// Failure codes, written as their conventional unsigned spellings folded
// into the signed domain.
const (
	E_NOTIMPL             HRESULT = 0x80004001 - 1<<32
	E_NOINTERFACE         HRESULT = 0x80004002 - 1<<32
	E_POINTER             HRESULT = 0x80004003 - 1<<32
	E_FAIL                HRESULT = 0x80004005 - 1<<32
	E_UNEXPECTED          HRESULT = 0x8000FFFF - 1<<32
	E_OUTOFMEMORY         HRESULT = 0x8007000E - 1<<32
	E_INVALIDARG          HRESULT = 0x80070057 - 1<<32
	DISP_E_MEMBERNOTFOUND HRESULT = 0x80020003 - 1<<32
	DISP_E_BADINDEX       HRESULT = 0x8002000B - 1<<32
)

// facilityWin32 is the failure facility used when folding Win32 error
// codes into the HRESULT space.
const facilityWin32 HRESULT = 0x80070000 - 1<<32

// Succeeded reports whether hr is a success code (S_OK or any alternate
// success state).
func (hr HRESULT) Succeeded() bool { return hr >= 0 }

// Failed reports whether hr is a failure code.
func (hr HRESULT) Failed() bool { return hr < 0 }

var names = map[HRESULT]string{
	S_OK:                  "S_OK",
	S_FALSE:               "S_FALSE",
	E_NOTIMPL:             "E_NOTIMPL",
	E_NOINTERFACE:         "E_NOINTERFACE",
	E_POINTER:             "E_POINTER",
	E_FAIL:                "E_FAIL",
	E_UNEXPECTED:          "E_UNEXPECTED",
	E_OUTOFMEMORY:         "E_OUTOFMEMORY",
	E_INVALIDARG:          "E_INVALIDARG",
	DISP_E_MEMBERNOTFOUND: "DISP_E_MEMBERNOTFOUND",
	DISP_E_BADINDEX:       "DISP_E_BADINDEX",
}

func (hr HRESULT) String() string {
	if n, ok := names[hr]; ok {
		return n
	}
	return fmt.Sprintf("HRESULT(0x%08X)", uint32(hr))
}

// FromWin32 converts a Win32 error code into an HRESULT. Codes that are
// already HRESULTs (top bit set) pass through unchanged; zero maps to a
// generic failure since a failed call must not report success.
func FromWin32(code uint32) HRESULT {
	if code == 0 {
		return E_FAIL
	}
	if code&0x80000000 != 0 {
		return HRESULT(int32(code))
	}
	return facilityWin32 | HRESULT(code&0xFFFF)
}
