package grid

// State is what a rack editor shows: the occupancy snapshot last fetched
// from the server, which device sits where, and the cursor.
//
// State is only ever changed through Reduce. Mutations do not patch the
// occupancy map; they mark the state stale and the next RefetchCompleted
// rebuilds it from server truth.
type State struct {
	Grid      *Grid
	Occupants map[Cell]string
	Cursor    Cell
	Stale     bool

	// cell of a successful placement waiting for the refetch that drives
	// the cursor advance
	pending *Cell
}

// Event is an input to Reduce.
type Event interface{ isEvent() }

// CursorMoved is a user selecting a cell.
type CursorMoved struct{ Cell Cell }

// DeviceAdded is a confirmed placement at Cell.
type DeviceAdded struct {
	Cell     Cell
	DeviceID string
}

// DeviceRemoved is a confirmed removal of a device from the rack.
type DeviceRemoved struct{ DeviceID string }

// DeviceSwapped is a confirmed replacement of the occupant at Cell.
type DeviceSwapped struct {
	Cell     Cell
	DeviceID string
}

// RefetchCompleted carries a fresh occupancy snapshot, device id by cell.
type RefetchCompleted struct{ Occupants map[Cell]string }

func (CursorMoved) isEvent()      {}
func (DeviceAdded) isEvent()      {}
func (DeviceRemoved) isEvent()    {}
func (DeviceSwapped) isEvent()    {}
func (RefetchCompleted) isEvent() {}

// NewState returns the state of an empty rows × cols rack with the cursor
// on the first cell.
func NewState(rows, cols int) State {
	return State{
		Grid:      New(rows, cols),
		Occupants: map[Cell]string{},
		Cursor:    Cell{Row: 1, Col: 1},
	}
}

// Reduce applies ev to s and returns the new state. s is not modified.
func Reduce(s State, ev Event) State {
	next := s
	switch e := ev.(type) {
	case CursorMoved:
		if s.Grid.Contains(e.Cell) {
			// an explicit choice wins over a placement still waiting to advance
			next.Cursor = e.Cell
			next.pending = nil
		}
	case DeviceAdded:
		c := e.Cell
		next.pending = &c
		next.Stale = true
	case DeviceSwapped:
		next.pending = nil
		next.Stale = true
	case DeviceRemoved:
		next.pending = nil
		next.Stale = true
	case RefetchCompleted:
		g := New(s.Grid.Rows, s.Grid.Cols)
		occ := make(map[Cell]string, len(e.Occupants))
		for c, id := range e.Occupants {
			if !g.Contains(c) {
				continue
			}
			g.Occupy(c)
			occ[c] = id
		}
		next.Grid = g
		next.Occupants = occ
		next.Stale = false
		if s.pending != nil {
			next.Cursor = g.Advance(*s.pending)
			next.pending = nil
		}
	}
	return next
}

// DeviceAt returns the device occupying c, if any.
func (s State) DeviceAt(c Cell) (string, bool) {
	id, ok := s.Occupants[c]
	return id, ok
}

// CellOf returns the cell a device occupies in this rack, if any.
func (s State) CellOf(deviceID string) (Cell, bool) {
	for c, id := range s.Occupants {
		if id == deviceID {
			return c, true
		}
	}
	return Cell{}, false
}
