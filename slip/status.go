// Package slip holds the status rules of loan and maintenance slips and of
// the return documents that resolve them.
package slip

import (
	"fmt"
	"strings"
)

// Family groups a parent slip with the return document that resolves it.
type Family int

const (
	Loan Family = iota + 1
	Maintenance
)

func (f Family) String() string {
	switch f {
	case Loan:
		return "loan"
	case Maintenance:
		return "maintenance"
	default:
		return "unknown"
	}
}

// Kind is a concrete document type.
type Kind int

const (
	LoanSlip Kind = iota + 1
	MaintenanceSlip
	ReturnSlip
	MaintenanceReturnSlip
)

var kindNames = map[Kind]string{
	LoanSlip:              "loan",
	MaintenanceSlip:       "maintenance",
	ReturnSlip:            "return",
	MaintenanceReturnSlip: "maintenance-return",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind accepts the names used in URLs.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown slip kind %q", s)
}

// Family returns the family a document belongs to.
func (k Kind) Family() Family {
	switch k {
	case LoanSlip, ReturnSlip:
		return Loan
	case MaintenanceSlip, MaintenanceReturnSlip:
		return Maintenance
	default:
		return 0
	}
}

// IsReturn reports whether k resolves another slip.
func (k Kind) IsReturn() bool { return k == ReturnSlip || k == MaintenanceReturnSlip }

// Parent returns the parent slip kind of a family.
func (f Family) Parent() Kind {
	if f == Maintenance {
		return MaintenanceSlip
	}
	return LoanSlip
}

// Status is the aggregate status of a parent slip.
type Status int

const (
	Active    Status = 1
	Closed    Status = 2
	Cancelled Status = 3
	Partial   Status = 4
)

// Open reports whether the slip still accepts returns.
func (s Status) Open() bool { return s == Active || s == Partial }

// DetailStatus is the status of one device row on a parent slip.
// Outgoing is Borrowed on loan slips and Sent on maintenance slips.
type DetailStatus int

const (
	Outgoing       DetailStatus = 1
	ResolvedOK     DetailStatus = 2
	ResolvedBroken DetailStatus = 3
)

// Resolved reports whether the detail has left Outgoing.
func (d DetailStatus) Resolved() bool { return d == ResolvedOK || d == ResolvedBroken }

// Valid reports whether d is a known value.
func (d DetailStatus) Valid() bool { return d == Outgoing || d.Resolved() }

// CanBecome reports whether a detail may move from d to to. Only Outgoing
// moves, and only into a resolved state; resolved states are terminal.
func (d DetailStatus) CanBecome(to DetailStatus) bool {
	return d == Outgoing && to.Resolved()
}

// ReturnStatus is the status of a return or maintenance-return document.
type ReturnStatus int

const (
	Returned       ReturnStatus = 1
	ReturnCanceled ReturnStatus = 2
)
