// models/device.go
package models

import "time"

const (
	DeviceTable       = "inv_devices"
	DeviceTypeTable   = "inv_device_types"
	RackTable         = "inv_racks"
	RackLocationTable = "inv_rack_locations"
)

type DeviceType struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Device struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Serial       string    `gorm:"size:120;uniqueIndex;not null" json:"serial"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Model        string    `gorm:"size:200" json:"model"`
	DeviceTypeID string    `gorm:"type:uuid;index;not null" json:"deviceTypeId"`
	LocationID   *string   `gorm:"type:uuid" json:"locationId"`         // 唯一部分索引见 Migrate
	Active       bool      `gorm:"not null;default:true" json:"active"` // 停用的设备不可借出
	InUse        bool      `gorm:"not null;default:false" json:"inUse"` // ✅ 冗余列：是否挂在未关闭的借用/维修单上
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Rack struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"size:40;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:200" json:"name"`
	Rows      int       `gorm:"not null" json:"rows"`
	Cols      int       `gorm:"not null" json:"cols"`
	CreatedAt time.Time `json:"createdAt"`
}

// RackLocation is created the first time a device is put in a cell and
// reused afterwards. X is the row and Y the column, 1-indexed.
type RackLocation struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	RackID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_rack_cell,priority:1" json:"rackId"`
	X         int       `gorm:"column:x_position;not null;uniqueIndex:idx_rack_cell,priority:2" json:"xPosition"`
	Y         int       `gorm:"column:y_position;not null;uniqueIndex:idx_rack_cell,priority:3" json:"yPosition"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func (DeviceType) TableName() string   { return DeviceTypeTable }
func (Device) TableName() string       { return DeviceTable }
func (Rack) TableName() string         { return RackTable }
func (RackLocation) TableName() string { return RackLocationTable }
