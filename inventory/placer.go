package inventory

import (
	"context"
	"fmt"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/grid"
)

// Outcome tells a caller which confirmation to show.
type Outcome int

const (
	Added Outcome = iota + 1
	Replaced
)

func (o Outcome) String() string {
	if o == Replaced {
		return "replaced"
	}
	return "added"
}

// Placement is the result of a successful PlaceDevice.
type Placement struct {
	Outcome         Outcome
	Location        api.LocationRow
	EvictedDeviceID string
}

// Placer binds devices to rack cells.
type Placer struct {
	b Backend
}

func NewPlacer(b Backend) *Placer { return &Placer{b: b} }

// PlaceDevice binds deviceID to cell of rackID. A previous occupant is
// unbound first and that request completes before the new binding is
// written. The location row is looked up by exact rack and position and
// created when missing. On error nothing is reported as placed.
func (p *Placer) PlaceDevice(ctx context.Context, deviceID, rackID string, cell grid.Cell) (*Placement, error) {
	rows, err := loadLocations(ctx, p.b, rackID)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}

	var loc *api.LocationRow
	for i := range rows {
		if rows[i].X == cell.Row && rows[i].Y == cell.Col {
			loc = &rows[i]
			break
		}
	}

	res := &Placement{Outcome: Added}
	if loc != nil && loc.DeviceID != nil && *loc.DeviceID != deviceID {
		evicted := *loc.DeviceID
		if _, err := p.b.UpdateDeviceLocation(ctx, evicted, nil); err != nil {
			return nil, fmt.Errorf("evict %s: %w", evicted, err)
		}
		res.Outcome = Replaced
		res.EvictedDeviceID = evicted
	}

	if loc == nil {
		loc, err = p.b.CreateRackLocation(ctx, rackID, cell.Row, cell.Col)
		if err != nil {
			return nil, fmt.Errorf("create location %s: %w", cell, err)
		}
	}

	if _, err := p.b.UpdateDeviceLocation(ctx, deviceID, &loc.ID); err != nil {
		return nil, fmt.Errorf("bind %s: %w", deviceID, err)
	}
	res.Location = *loc
	id := deviceID
	res.Location.DeviceID = &id
	return res, nil
}

// RemoveDevice clears the device's location. The location row is kept.
func (p *Placer) RemoveDevice(ctx context.Context, deviceID string) error {
	if _, err := p.b.UpdateDeviceLocation(ctx, deviceID, nil); err != nil {
		return fmt.Errorf("unbind %s: %w", deviceID, err)
	}
	return nil
}
