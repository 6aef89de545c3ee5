package inventory

import (
	"context"
	"fmt"
	"sync"

	"Gin_postgres_redis_inventory/grid"
)

// Editor drives one rack grid. Every mutation is followed by a refetch and
// the cursor only moves forward from a snapshot taken after the placement.
type Editor struct {
	b      Backend
	placer *Placer
	rackID string

	mu     sync.Mutex
	state  grid.State
	loaded bool
}

func NewEditor(b Backend, rackID string) *Editor {
	return &Editor{b: b, placer: NewPlacer(b), rackID: rackID}
}

// Load reads the rack dimensions and its occupancy.
func (e *Editor) Load(ctx context.Context) error {
	rack, err := e.b.GetRack(ctx, e.rackID)
	if err != nil {
		return fmt.Errorf("load rack %s: %w", e.rackID, err)
	}
	e.mu.Lock()
	e.state = grid.NewState(rack.Rows, rack.Cols)
	e.loaded = true
	e.mu.Unlock()
	return e.Refresh(ctx)
}

// State returns the current snapshot.
func (e *Editor) State() grid.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Refresh refetches occupancy from the server.
func (e *Editor) Refresh(ctx context.Context) error {
	if !e.isLoaded() {
		return ErrNotLoaded
	}
	rows, err := loadLocations(ctx, e.b, e.rackID)
	if err != nil {
		return fmt.Errorf("refetch rack %s: %w", e.rackID, err)
	}
	occ := make(map[grid.Cell]string, len(rows))
	for _, r := range rows {
		if r.DeviceID != nil {
			occ[grid.Cell{Row: r.X, Col: r.Y}] = *r.DeviceID
		}
	}
	e.apply(grid.RefetchCompleted{Occupants: occ})
	return nil
}

// Select moves the cursor to c.
func (e *Editor) Select(c grid.Cell) error {
	if !e.isLoaded() {
		return ErrNotLoaded
	}
	if !e.State().Grid.Contains(c) {
		return fmt.Errorf("%w: %s", ErrOutsideGrid, c)
	}
	e.apply(grid.CursorMoved{Cell: c})
	return nil
}

// SelectLabel moves the cursor to a warehouse label such as "B03".
func (e *Editor) SelectLabel(label string) error {
	c, err := grid.LabelCell(label)
	if err != nil {
		return err
	}
	return e.Select(c)
}

// PlaceAtCursor puts deviceID at the cursor cell. After a successful
// placement the grid is refetched and the cursor advances from the fresh
// snapshot. On failure the cursor stays where it was; a conflict triggers a
// refetch before the error is returned.
func (e *Editor) PlaceAtCursor(ctx context.Context, deviceID string) (*Placement, error) {
	if !e.isLoaded() {
		return nil, ErrNotLoaded
	}
	cell := e.State().Cursor
	p, err := e.placer.PlaceDevice(ctx, deviceID, e.rackID, cell)
	if err != nil {
		if KindOf(err) == Conflict {
			_ = e.Refresh(ctx)
		}
		return nil, err
	}
	e.apply(grid.DeviceAdded{Cell: cell, DeviceID: deviceID})
	if err := e.Refresh(ctx); err != nil {
		// placed, but the cursor waits for the next successful refresh
		return p, err
	}
	return p, nil
}

// Swap replaces the occupant of c with deviceID without moving the cursor.
func (e *Editor) Swap(ctx context.Context, c grid.Cell, deviceID string) (*Placement, error) {
	if !e.isLoaded() {
		return nil, ErrNotLoaded
	}
	st := e.State()
	if !st.Grid.Contains(c) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideGrid, c)
	}
	if _, ok := st.DeviceAt(c); !ok {
		return nil, fmt.Errorf("%w: %s", ErrCellEmpty, c)
	}
	p, err := e.placer.PlaceDevice(ctx, deviceID, e.rackID, c)
	if err != nil {
		if KindOf(err) == Conflict {
			_ = e.Refresh(ctx)
		}
		return nil, err
	}
	e.apply(grid.DeviceSwapped{Cell: c, DeviceID: deviceID})
	return p, e.Refresh(ctx)
}

// Remove unbinds the device shown at c.
func (e *Editor) Remove(ctx context.Context, c grid.Cell) error {
	if !e.isLoaded() {
		return ErrNotLoaded
	}
	id, ok := e.State().DeviceAt(c)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCellEmpty, c)
	}
	if err := e.placer.RemoveDevice(ctx, id); err != nil {
		return err
	}
	e.apply(grid.DeviceRemoved{DeviceID: id})
	return e.Refresh(ctx)
}

func (e *Editor) apply(ev grid.Event) {
	e.mu.Lock()
	e.state = grid.Reduce(e.state, ev)
	e.mu.Unlock()
}

func (e *Editor) isLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}
