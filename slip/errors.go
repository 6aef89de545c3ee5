package slip

import "errors"

// ErrCode identifies a local validation failure. Every code here is raised
// before any request leaves the process.
type ErrCode string

const (
	ErrNoDevices         ErrCode = "NO_DEVICES"
	ErrNothingChecked    ErrCode = "NOTHING_CHECKED"
	ErrAlreadyAdded      ErrCode = "ALREADY_ADDED"
	ErrNotStaged         ErrCode = "NOT_STAGED"
	ErrTypeMismatch      ErrCode = "TYPE_MISMATCH"
	ErrSameDevice        ErrCode = "SAME_DEVICE"
	ErrNoSwapCandidates  ErrCode = "NO_SWAP_CANDIDATES"
	ErrNotCandidate      ErrCode = "NOT_CANDIDATE"
	ErrIllegalTransition ErrCode = "ILLEGAL_TRANSITION"
	ErrNotOutgoing       ErrCode = "DETAIL_NOT_OUTGOING"
	ErrUnknownDetail     ErrCode = "UNKNOWN_DETAIL"
	ErrDuplicateItem     ErrCode = "DUPLICATE_ITEM"
	ErrNotCancellable    ErrCode = "NOT_CANCELLABLE"
	ErrParentNotOpen     ErrCode = "PARENT_NOT_OPEN"
)

var messages = map[ErrCode]string{
	ErrNoDevices:         "select at least one device",
	ErrNothingChecked:    "check at least one device to return",
	ErrAlreadyAdded:      "device already added",
	ErrNotStaged:         "device is not on this slip",
	ErrTypeMismatch:      "replacement must be the same device type",
	ErrSameDevice:        "replacement is the device being replaced",
	ErrNoSwapCandidates:  "no devices of this type are available",
	ErrNotCandidate:      "device is not among the candidates",
	ErrIllegalTransition: "illegal status transition",
	ErrNotOutgoing:       "device has already been resolved",
	ErrUnknownDetail:     "device is not on the parent slip",
	ErrDuplicateItem:     "device named twice in one action",
	ErrNotCancellable:    "slip can no longer be cancelled",
	ErrParentNotOpen:     "slip is not open for returns",
}

// Error is a coded validation error.
type Error struct {
	code   ErrCode
	detail string
}

func (e *Error) Error() string {
	msg := messages[e.code]
	if msg == "" {
		msg = string(e.code)
	}
	if e.detail != "" {
		return msg + ": " + e.detail
	}
	return msg
}

func (e *Error) Code() ErrCode { return e.code }

func newErr(c ErrCode, detail string) error { return &Error{code: c, detail: detail} }

// NewError builds a coded error for checks made outside this package.
func NewError(c ErrCode, detail string) error { return newErr(c, detail) }

// Code extracts the validation code from err, or "" when err is not a
// validation error.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// IsValidation reports whether err is a local validation error.
func IsValidation(err error) bool { return Code(err) != "" }
