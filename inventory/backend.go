// Package inventory is the client side of rack placement and slip actions.
// It talks to the system of record only through Backend and keeps no state
// it has not just refetched.
package inventory

import (
	"context"

	"Gin_postgres_redis_inventory/api"
	"Gin_postgres_redis_inventory/slip"
)

// LocationQuery pages through the location rows of one rack.
type LocationQuery struct {
	Page  int
	Size  int
	Label string
}

// Backend is the REST collaborator. client.Client implements it.
type Backend interface {
	ListAvailableDevices(ctx context.Context, deviceTypeID string, quantity int) ([]slip.Candidate, error)
	GetRack(ctx context.Context, rackID string) (*api.Rack, error)
	ListDeviceLocations(ctx context.Context, rackID string, q LocationQuery) (*api.LocationPage, error)
	CreateRackLocation(ctx context.Context, rackID string, x, y int) (*api.LocationRow, error)
	UpdateDeviceLocation(ctx context.Context, deviceID string, locationID *string) (*api.Device, error)

	CreateLoanSlip(ctx context.Context, req api.CreateLoanSlipReq) (*api.Slip, error)
	CreateMaintenanceSlip(ctx context.Context, req api.CreateMaintenanceSlipReq) (*api.Slip, error)
	ApplyReturn(ctx context.Context, family slip.Family, parentID string, items []api.ReturnItem) error
	CancelSlip(ctx context.Context, kind slip.Kind, id string) error
	ListAvailableParentSlips(ctx context.Context, family slip.Family) ([]slip.ParentSummary, error)
	ListResolvableDetails(ctx context.Context, family slip.Family, parentID string) ([]slip.OpenDetail, error)
}

const locationPageSize = 200

// loadLocations fetches every location row of a rack, page by page.
func loadLocations(ctx context.Context, b Backend, rackID string) ([]api.LocationRow, error) {
	var out []api.LocationRow
	for page := 1; ; page++ {
		res, err := b.ListDeviceLocations(ctx, rackID, LocationQuery{Page: page, Size: locationPageSize})
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
		if len(res.Items) < locationPageSize || int64(len(out)) >= res.Total {
			return out, nil
		}
	}
}
