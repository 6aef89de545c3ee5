// models/slip.go
package models

import (
	"time"

	"gorm.io/datatypes"

	"Gin_postgres_redis_inventory/slip"
)

const (
	LoanSlipTable                    = "inv_loan_slips"
	LoanSlipDetailTable              = "inv_loan_slip_details"
	ReturnSlipTable                  = "inv_return_slips"
	ReturnSlipDetailTable            = "inv_return_slip_details"
	MaintenanceSlipTable             = "inv_maintenance_slips"
	MaintenanceSlipDetailTable       = "inv_maintenance_slip_details"
	MaintenanceReturnSlipTable       = "inv_maintenance_return_slips"
	MaintenanceReturnSlipDetailTable = "inv_maintenance_return_slip_details"
)

// SlipHeader is shared by loan and maintenance slips.
type SlipHeader struct {
	ID          string      `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string      `gorm:"size:40;uniqueIndex;not null" json:"code"`
	Status      slip.Status `gorm:"type:smallint;index;not null;default:1" json:"status"`
	CreatedByID string      `gorm:"type:uuid;not null" json:"createdById"`
	CancelledAt *time.Time  `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// SlipDetail is one device on a loan or maintenance slip.
//
// Open is true while the row holds its device. It is cleared when the row
// is resolved and when the slip is cancelled; a cancelled slip's rows keep
// their Outgoing status.
type SlipDetail struct {
	ID           string            `gorm:"type:uuid;primaryKey" json:"id"`
	SlipID       string            `gorm:"type:uuid;index;not null" json:"slipId"`
	DeviceID     string            `gorm:"type:uuid;index;not null" json:"deviceId"`
	Status       slip.DetailStatus `gorm:"type:smallint;not null;default:1" json:"status"`
	Open         bool              `gorm:"not null;default:true" json:"open"`
	ResolvedAt   *time.Time        `json:"resolvedAt,omitempty"`
	ResolvedByID *string           `gorm:"type:uuid;index" json:"resolvedById,omitempty"` // 回填：哪张归还/维修归还单处理了这一行
	Note         string            `gorm:"size:500" json:"note,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// ReturnHeader is shared by return and maintenance-return documents.
type ReturnHeader struct {
	ID          string            `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID    string            `gorm:"type:uuid;index;not null" json:"parentId"`
	Status      slip.ReturnStatus `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedByID string            `gorm:"type:uuid;not null" json:"createdById"`
	CancelledAt *time.Time        `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ReturnDetail names one device resolved by a return document.
type ReturnDetail struct {
	ID       string            `gorm:"type:uuid;primaryKey" json:"id"`
	ReturnID string            `gorm:"type:uuid;index;not null" json:"returnId"`
	DeviceID string            `gorm:"type:uuid;not null" json:"deviceId"`
	Status   slip.DetailStatus `gorm:"type:smallint;not null" json:"status"`
	Note     string            `gorm:"size:500" json:"note,omitempty"`
}

type LoanSlip struct {
	SlipHeader
	BorrowerID string `gorm:"type:uuid;index;not null" json:"borrowerId"`
	LoanerID   string `gorm:"type:uuid;not null" json:"loanerId"`
}

type LoanSlipDetail struct{ SlipDetail }

type ReturnSlip struct{ ReturnHeader }

type ReturnSlipDetail struct{ ReturnDetail }

type MaintenanceSlip struct {
	SlipHeader
	PartnerID   *string         `gorm:"type:uuid;index" json:"partnerId,omitempty"`
	Reason      string          `gorm:"size:500" json:"reason,omitempty"`
	RequestDate *datatypes.Date `json:"requestDate,omitempty"`
}

type MaintenanceSlipDetail struct{ SlipDetail }

type MaintenanceReturnSlip struct{ ReturnHeader }

type MaintenanceReturnSlipDetail struct{ ReturnDetail }

func (LoanSlip) TableName() string                    { return LoanSlipTable }
func (LoanSlipDetail) TableName() string              { return LoanSlipDetailTable }
func (ReturnSlip) TableName() string                  { return ReturnSlipTable }
func (ReturnSlipDetail) TableName() string            { return ReturnSlipDetailTable }
func (MaintenanceSlip) TableName() string             { return MaintenanceSlipTable }
func (MaintenanceSlipDetail) TableName() string       { return MaintenanceSlipDetailTable }
func (MaintenanceReturnSlip) TableName() string       { return MaintenanceReturnSlipTable }
func (MaintenanceReturnSlipDetail) TableName() string { return MaintenanceReturnSlipDetailTable }

// Tables names the four tables of one slip family.
type Tables struct {
	Header, Detail, Return, ReturnDetail string
}

func TablesOf(f slip.Family) Tables {
	if f == slip.Maintenance {
		return Tables{MaintenanceSlipTable, MaintenanceSlipDetailTable, MaintenanceReturnSlipTable, MaintenanceReturnSlipDetailTable}
	}
	return Tables{LoanSlipTable, LoanSlipDetailTable, ReturnSlipTable, ReturnSlipDetailTable}
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Partner{},
		&DeviceType{}, &Device{}, &Rack{}, &RackLocation{},
		&LoanSlip{}, &LoanSlipDetail{}, &ReturnSlip{}, &ReturnSlipDetail{},
		&MaintenanceSlip{}, &MaintenanceSlipDetail{}, &MaintenanceReturnSlip{}, &MaintenanceReturnSlipDetail{},
	}
}
