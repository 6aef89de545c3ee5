package slip

// Candidate is a device that may be put on a slip.
type Candidate struct {
	DeviceID     string `json:"deviceId"`
	DeviceTypeID string `json:"deviceTypeId"`
	Name         string `json:"name"`
	Serial       string `json:"serial"`
}

// StagedItem is a device on a slip that is still being built.
type StagedItem struct {
	Candidate
	Note string `json:"note,omitempty"`
}

// Staging is the ordered list of devices on an unsubmitted loan or
// maintenance slip.
type Staging struct {
	items []StagedItem
}

func (s *Staging) index(deviceID string) int {
	for i, it := range s.items {
		if it.DeviceID == deviceID {
			return i
		}
	}
	return -1
}

// Has reports whether a device is staged.
func (s *Staging) Has(deviceID string) bool { return s.index(deviceID) >= 0 }

// Len is the number of staged devices.
func (s *Staging) Len() int { return len(s.items) }

// Add stages c at the end of the list.
func (s *Staging) Add(c Candidate) error {
	if s.Has(c.DeviceID) {
		return newErr(ErrAlreadyAdded, c.DeviceID)
	}
	s.items = append(s.items, StagedItem{Candidate: c})
	return nil
}

// Remove unstages a device. Removing a device that is not staged is a no-op.
func (s *Staging) Remove(deviceID string) {
	if i := s.index(deviceID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

// SetNote sets the free-text note of a staged device.
func (s *Staging) SetNote(deviceID, note string) error {
	i := s.index(deviceID)
	if i < 0 {
		return newErr(ErrNotStaged, deviceID)
	}
	s.items[i].Note = note
	return nil
}

// Swap replaces the staged device oldID with c in place. c must be of the
// same device type, must not be oldID and must not already be staged. The
// note of the replaced row is not carried over.
func (s *Staging) Swap(oldID string, c Candidate) error {
	i := s.index(oldID)
	if i < 0 {
		return newErr(ErrNotStaged, oldID)
	}
	if c.DeviceID == oldID {
		return newErr(ErrSameDevice, oldID)
	}
	if s.Has(c.DeviceID) {
		return newErr(ErrAlreadyAdded, c.DeviceID)
	}
	if c.DeviceTypeID != s.items[i].DeviceTypeID {
		return newErr(ErrTypeMismatch, c.DeviceID)
	}
	s.items[i] = StagedItem{Candidate: c}
	return nil
}

// Item returns the staged row of deviceID.
func (s *Staging) Item(deviceID string) (StagedItem, error) {
	i := s.index(deviceID)
	if i < 0 {
		return StagedItem{}, newErr(ErrNotStaged, deviceID)
	}
	return s.items[i], nil
}

// Items returns a copy of the staged rows in order.
func (s *Staging) Items() []StagedItem {
	out := make([]StagedItem, len(s.items))
	copy(out, s.items)
	return out
}

// DeviceIDs returns the staged device ids in order.
func (s *Staging) DeviceIDs() []string {
	out := make([]string, len(s.items))
	for i, it := range s.items {
		out[i] = it.DeviceID
	}
	return out
}

// Validate rejects an empty slip.
func (s *Staging) Validate() error {
	if len(s.items) == 0 {
		return newErr(ErrNoDevices, "")
	}
	return nil
}

// ExcludeStaged drops candidates already on the slip.
func ExcludeStaged(pool []Candidate, s *Staging) []Candidate {
	out := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if !s.Has(c.DeviceID) {
			out = append(out, c)
		}
	}
	return out
}

// SwapCandidates lists devices that can replace the staged device
// replacing. An empty result is reported as ErrNoSwapCandidates so callers
// show an explicit empty state.
func SwapCandidates(pool []Candidate, s *Staging, replacing string) ([]Candidate, error) {
	i := s.index(replacing)
	if i < 0 {
		return nil, newErr(ErrNotStaged, replacing)
	}
	typeID := s.items[i].DeviceTypeID
	var out []Candidate
	for _, c := range pool {
		if c.DeviceTypeID != typeID || c.DeviceID == replacing || s.Has(c.DeviceID) {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, newErr(ErrNoSwapCandidates, typeID)
	}
	return out, nil
}

// ParentSummary is what a return screen needs to know about a parent slip.
type ParentSummary struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Status Status `json:"status"`
}

// EligibleParents keeps slips that still accept returns.
func EligibleParents(in []ParentSummary) []ParentSummary {
	var out []ParentSummary
	for _, p := range in {
		if p.Status.Open() {
			out = append(out, p)
		}
	}
	return out
}

// OpenDetail is a parent-slip row as offered on a return screen.
type OpenDetail struct {
	DeviceID     string       `json:"deviceId"`
	DeviceTypeID string       `json:"deviceTypeId"`
	Name         string       `json:"name"`
	Serial       string       `json:"serial"`
	Status       DetailStatus `json:"status"`
}

// ResolvableDetails keeps rows still Outgoing.
func ResolvableDetails(in []OpenDetail) []OpenDetail {
	var out []OpenDetail
	for _, d := range in {
		if d.Status == Outgoing {
			out = append(out, d)
		}
	}
	return out
}

// Checklist tracks which fetched candidates are checked on a return screen.
// Bulk toggles only ever cover the candidates it was built from.
type Checklist struct {
	order   []string
	checked map[string]bool
}

// NewChecklist builds an all-unchecked list over device ids.
func NewChecklist(deviceIDs []string) *Checklist {
	cl := &Checklist{checked: make(map[string]bool, len(deviceIDs))}
	for _, id := range deviceIDs {
		if _, dup := cl.checked[id]; dup {
			continue
		}
		cl.order = append(cl.order, id)
		cl.checked[id] = false
	}
	return cl
}

// Set checks or unchecks one candidate.
func (cl *Checklist) Set(deviceID string, on bool) error {
	if _, ok := cl.checked[deviceID]; !ok {
		return newErr(ErrNotCandidate, deviceID)
	}
	cl.checked[deviceID] = on
	return nil
}

// Toggle flips one candidate.
func (cl *Checklist) Toggle(deviceID string) error {
	cur, ok := cl.checked[deviceID]
	if !ok {
		return newErr(ErrNotCandidate, deviceID)
	}
	cl.checked[deviceID] = !cur
	return nil
}

func (cl *Checklist) SelectAll() {
	for id := range cl.checked {
		cl.checked[id] = true
	}
}

func (cl *Checklist) DeselectAll() {
	for id := range cl.checked {
		cl.checked[id] = false
	}
}

// Selected returns checked ids in candidate order.
func (cl *Checklist) Selected() []string {
	var out []string
	for _, id := range cl.order {
		if cl.checked[id] {
			out = append(out, id)
		}
	}
	return out
}

// Validate rejects a submission with nothing checked.
func (cl *Checklist) Validate() error {
	if len(cl.Selected()) == 0 {
		return newErr(ErrNothingChecked, "")
	}
	return nil
}
