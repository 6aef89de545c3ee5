// Package api holds the JSON shapes shared by the REST handlers and the
// HTTP client.
package api

import (
	"time"

	"Gin_postgres_redis_inventory/slip"
)

// LocationRow is one rack cell that has a location row. X is the row and Y
// the column, both 1-indexed.
type LocationRow struct {
	ID         string  `json:"id"`
	RackID     string  `json:"rackId"`
	X          int     `json:"xPosition"`
	Y          int     `json:"yPosition"`
	Active     bool    `json:"active"`
	Label      string  `json:"label,omitempty"`
	DeviceID   *string `json:"deviceId,omitempty"`
	DeviceName *string `json:"deviceName,omitempty"`
}

type LocationPage struct {
	Total int64         `json:"total"`
	Items []LocationRow `json:"items"`
}

type Rack struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

type Device struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Serial       string  `json:"serial"`
	Model        string  `json:"model"`
	DeviceTypeID string  `json:"deviceTypeId"`
	LocationID   *string `json:"locationId"`
	Active       bool    `json:"active"`
	InUse        bool    `json:"inUse"`
}

type CreateRackLocationReq struct {
	X int `json:"xPosition" binding:"required,min=1"`
	Y int `json:"yPosition" binding:"required,min=1"`
}

// UpdateDeviceLocationReq clears the location when LocationID is nil.
type UpdateDeviceLocationReq struct {
	LocationID *string `json:"locationId"`
}

type CreateLoanSlipReq struct {
	BorrowerID string   `json:"borrowerId" binding:"required"`
	LoanerID   string   `json:"loanerId" binding:"required"`
	DeviceIDs  []string `json:"deviceIds" binding:"required,min=1,dive,required"`
}

type MaintenanceDevice struct {
	DeviceID string `json:"deviceId" binding:"required"`
	Note     string `json:"note,omitempty"`
}

type CreateMaintenanceSlipReq struct {
	PartnerID   *string             `json:"partnerId,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	RequestDate *time.Time          `json:"requestDate,omitempty"`
	Devices     []MaintenanceDevice `json:"devices" binding:"required,min=1,dive"`
}

type ReturnItem struct {
	DeviceID string            `json:"deviceId" binding:"required"`
	Status   slip.DetailStatus `json:"status" binding:"required,oneof=2 3"`
	Note     string            `json:"note,omitempty"`
}

type ApplyReturnReq struct {
	Items []ReturnItem `json:"items" binding:"required,min=1,dive"`
}

// SlipDetail is a detail row as returned by the slip endpoints.
type SlipDetail struct {
	ID           string            `json:"id"`
	DeviceID     string            `json:"deviceId"`
	DeviceTypeID string            `json:"deviceTypeId"`
	DeviceName   string            `json:"deviceName"`
	Serial       string            `json:"serial"`
	Status       slip.DetailStatus `json:"status"`
	StatusLabel  string            `json:"statusLabel"`
	ResolvedAt   *time.Time        `json:"resolvedAt,omitempty"`
	Note         string            `json:"note,omitempty"`
	ResolvedBy   *string           `json:"resolvedBy,omitempty"`
}

// Slip is a loan or maintenance slip with its details.
type Slip struct {
	ID             string       `json:"id"`
	Code           string       `json:"code"`
	Kind           string       `json:"kind"`
	Status         slip.Status  `json:"status"`
	StatusLabel    string       `json:"statusLabel"`
	CounterpartyID *string      `json:"counterpartyId,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	Details        []SlipDetail `json:"details"`

	// maintenance slips only
	Reason      string     `json:"reason,omitempty"`
	RequestDate *time.Time `json:"requestDate,omitempty"`
}

// ReturnDoc is a return or maintenance-return document.
type ReturnDoc struct {
	ID           string            `json:"id"`
	ParentID     string            `json:"parentId"`
	Status       slip.ReturnStatus `json:"status"`
	StatusLabel  string            `json:"statusLabel"`
	CreatedAt    time.Time         `json:"createdAt"`
	DeviceCount  int               `json:"deviceCount"`
	ParentStatus slip.Status       `json:"parentStatus"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Error string       `json:"error"`
	Code  slip.ErrCode `json:"code,omitempty"`
}
