package slip

import (
	"fmt"
	"time"
)

// Detail is one device row on a parent slip.
type Detail struct {
	DeviceID   string
	Status     DetailStatus
	ResolvedAt *time.Time
	Note       string
}

// Slip is the status-bearing part of a loan or maintenance slip.
type Slip struct {
	Status  Status
	Details []Detail
}

// ReturnItem names one device to resolve and the status to resolve it to.
type ReturnItem struct {
	DeviceID string
	Status   DetailStatus
	Note     string
}

// Derive computes the aggregate status from detail statuses. An empty set
// is Active; a slip never closes by itself.
func Derive(details []DetailStatus) Status {
	if len(details) == 0 {
		return Active
	}
	outgoing := 0
	for _, d := range details {
		if d == Outgoing {
			outgoing++
		}
	}
	switch outgoing {
	case len(details):
		return Active
	case 0:
		return Closed
	default:
		return Partial
	}
}

// New returns an Active slip with one Outgoing detail per device.
func New(deviceIDs []string) *Slip {
	s := &Slip{Status: Active, Details: make([]Detail, 0, len(deviceIDs))}
	for _, id := range deviceIDs {
		s.Details = append(s.Details, Detail{DeviceID: id, Status: Outgoing})
	}
	return s
}

// Statuses lists the detail statuses in row order.
func (s *Slip) Statuses() []DetailStatus {
	out := make([]DetailStatus, len(s.Details))
	for i, d := range s.Details {
		out[i] = d.Status
	}
	return out
}

// Outstanding lists device ids still Outgoing.
func (s *Slip) Outstanding() []string {
	var out []string
	for _, d := range s.Details {
		if d.Status == Outgoing {
			out = append(out, d.DeviceID)
		}
	}
	return out
}

// ValidateReturn checks items against s without changing anything.
func (s *Slip) ValidateReturn(items []ReturnItem) error {
	if !s.Status.Open() {
		return newErr(ErrParentNotOpen, fmt.Sprintf("status %d", s.Status))
	}
	if len(items) == 0 {
		return newErr(ErrNothingChecked, "")
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.DeviceID] {
			return newErr(ErrDuplicateItem, it.DeviceID)
		}
		seen[it.DeviceID] = true

		i := s.indexOf(it.DeviceID)
		if i < 0 {
			return newErr(ErrUnknownDetail, it.DeviceID)
		}
		cur := s.Details[i].Status
		if cur != Outgoing {
			return newErr(ErrNotOutgoing, it.DeviceID)
		}
		if err := CheckTransition(it.DeviceID, cur, it.Status); err != nil {
			return err
		}
	}
	return nil
}

// CheckTransition rejects a detail move that CanBecome does not allow.
func CheckTransition(deviceID string, from, to DetailStatus) error {
	if !from.CanBecome(to) {
		return newErr(ErrIllegalTransition, fmt.Sprintf("%s: %d -> %d", deviceID, from, to))
	}
	return nil
}

// ApplyReturn resolves every named detail and recomputes the aggregate.
// Either all items apply or none do.
func (s *Slip) ApplyReturn(items []ReturnItem, at time.Time) error {
	if err := s.ValidateReturn(items); err != nil {
		return err
	}
	for _, it := range items {
		d := &s.Details[s.indexOf(it.DeviceID)]
		d.Status = it.Status
		d.Note = it.Note
		ts := at
		d.ResolvedAt = &ts
	}
	s.Status = Derive(s.Statuses())
	return nil
}

// CanCancel reports whether a slip in status st may be cancelled.
func CanCancel(st Status) bool { return st == Active }

// Cancel moves an Active slip to Cancelled. What becomes of the details
// still Outgoing is decided by the system of record.
func (s *Slip) Cancel() error {
	if !CanCancel(s.Status) {
		return newErr(ErrNotCancellable, fmt.Sprintf("status %d", s.Status))
	}
	s.Status = Cancelled
	return nil
}

// CancelReturn voids a return document. Only a Returned document can be
// voided; the details it resolved stay resolved.
func CancelReturn(st ReturnStatus) (ReturnStatus, error) {
	if st != Returned {
		return st, newErr(ErrNotCancellable, fmt.Sprintf("return status %d", st))
	}
	return ReturnCanceled, nil
}

func (s *Slip) indexOf(deviceID string) int {
	for i, d := range s.Details {
		if d.DeviceID == deviceID {
			return i
		}
	}
	return -1
}
