package inventory

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/slip"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("http %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

type returnCall struct {
	family   slip.Family
	parentID string
	items    []api.ReturnItem
}

// fakeBackend keeps one rack in memory and records every call in order.
type fakeBackend struct {
	mu sync.Mutex

	rack      api.Rack
	locs      []api.LocationRow
	deviceLoc map[string]string
	nextID    int

	failOn       map[string]error
	beforeUpdate func(f *fakeBackend, deviceID string)

	available  []slip.Candidate
	parents    []slip.ParentSummary
	resolvable []slip.OpenDetail

	loans   []api.CreateLoanSlipReq
	maints  []api.CreateMaintenanceSlipReq
	returns []returnCall
	cancels []string

	calls []string
}

func newFake(rows, cols int) *fakeBackend {
	return &fakeBackend{
		rack:      api.Rack{ID: "r1", Code: "R1", Rows: rows, Cols: cols},
		deviceLoc: map[string]string{},
		failOn:    map[string]error{},
	}
}

func (f *fakeBackend) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failOn[call]
}

// seed binds deviceID to (x, y) directly, as another client would.
func (f *fakeBackend) seed(deviceID string, x, y int) {
	loc := f.findOrAdd(x, y)
	f.deviceLoc[deviceID] = loc.ID
}

func (f *fakeBackend) findOrAdd(x, y int) api.LocationRow {
	for _, l := range f.locs {
		if l.X == x && l.Y == y {
			return l
		}
	}
	f.nextID++
	l := api.LocationRow{ID: fmt.Sprintf("loc-%d", f.nextID), RackID: f.rack.ID, X: x, Y: y, Active: true}
	f.locs = append(f.locs, l)
	return l
}

func (f *fakeBackend) occupant(locID string) (string, bool) {
	for d, l := range f.deviceLoc {
		if l == locID {
			return d, true
		}
	}
	return "", false
}

func (f *fakeBackend) GetRack(_ context.Context, rackID string) (*api.Rack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("rack " + rackID); err != nil {
		return nil, err
	}
	if rackID != f.rack.ID {
		return nil, statusErr(http.StatusNotFound)
	}
	r := f.rack
	return &r, nil
}

func (f *fakeBackend) ListDeviceLocations(_ context.Context, rackID string, q LocationQuery) (*api.LocationPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list " + rackID); err != nil {
		return nil, err
	}
	rows := make([]api.LocationRow, 0, len(f.locs))
	for _, l := range f.locs {
		if d, ok := f.occupant(l.ID); ok {
			id := d
			l.DeviceID = &id
		}
		rows = append(rows, l)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	start := (q.Page - 1) * q.Size
	if start > len(rows) {
		start = len(rows)
	}
	end := start + q.Size
	if end > len(rows) {
		end = len(rows)
	}
	return &api.LocationPage{Total: int64(len(rows)), Items: rows[start:end]}, nil
}

func (f *fakeBackend) CreateRackLocation(_ context.Context, rackID string, x, y int) (*api.LocationRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(fmt.Sprintf("create %d,%d", x, y)); err != nil {
		return nil, err
	}
	l := f.findOrAdd(x, y)
	return &l, nil
}

func (f *fakeBackend) UpdateDeviceLocation(_ context.Context, deviceID string, locationID *string) (*api.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := "nil"
	if locationID != nil {
		target = *locationID
	}
	if err := f.record("update " + deviceID + " " + target); err != nil {
		return nil, err
	}
	if f.beforeUpdate != nil {
		f.beforeUpdate(f, deviceID)
	}
	if locationID == nil {
		delete(f.deviceLoc, deviceID)
		return &api.Device{ID: deviceID}, nil
	}
	if d, ok := f.occupant(*locationID); ok && d != deviceID {
		return nil, statusErr(http.StatusConflict)
	}
	f.deviceLoc[deviceID] = *locationID
	return &api.Device{ID: deviceID, LocationID: locationID}, nil
}

func (f *fakeBackend) ListAvailableDevices(_ context.Context, deviceTypeID string, quantity int) ([]slip.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("available " + deviceTypeID); err != nil {
		return nil, err
	}
	var out []slip.Candidate
	for _, c := range f.available {
		if deviceTypeID == "" || c.DeviceTypeID == deviceTypeID {
			out = append(out, c)
		}
	}
	if quantity > 0 && len(out) > quantity {
		out = out[:quantity]
	}
	return out, nil
}

func (f *fakeBackend) CreateLoanSlip(_ context.Context, req api.CreateLoanSlipReq) (*api.Slip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("loan"); err != nil {
		return nil, err
	}
	f.loans = append(f.loans, req)
	return &api.Slip{ID: "s1", Kind: "loan", Status: slip.Active}, nil
}

func (f *fakeBackend) CreateMaintenanceSlip(_ context.Context, req api.CreateMaintenanceSlipReq) (*api.Slip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("maintenance"); err != nil {
		return nil, err
	}
	f.maints = append(f.maints, req)
	return &api.Slip{ID: "m1", Kind: "maintenance", Status: slip.Active}, nil
}

func (f *fakeBackend) ApplyReturn(_ context.Context, family slip.Family, parentID string, items []api.ReturnItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("return " + family.String() + " " + parentID); err != nil {
		return err
	}
	f.returns = append(f.returns, returnCall{family: family, parentID: parentID, items: items})
	return nil
}

func (f *fakeBackend) CancelSlip(_ context.Context, kind slip.Kind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := "cancel " + kind.String() + " " + id
	if err := f.record(call); err != nil {
		return err
	}
	f.cancels = append(f.cancels, call)
	return nil
}

func (f *fakeBackend) ListAvailableParentSlips(_ context.Context, family slip.Family) ([]slip.ParentSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("parents " + family.String()); err != nil {
		return nil, err
	}
	return f.parents, nil
}

func (f *fakeBackend) ListResolvableDetails(_ context.Context, family slip.Family, parentID string) ([]slip.OpenDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("resolvable " + family.String() + " " + parentID); err != nil {
		return nil, err
	}
	return f.resolvable, nil
}
