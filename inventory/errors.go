package inventory

import (
	"errors"
	"fmt"
	"net/http"

	"Gin_postgres_redis_inventory/grid"
	"Gin_postgres_redis_inventory/slip"
)

var (
	ErrOutsideGrid   = errors.New("cell is outside the rack")
	ErrCellEmpty     = errors.New("no device at this cell")
	ErrNotParentKind = errors.New("only loan and maintenance slips can be cancelled this way")
	ErrNotReturnKind = errors.New("not a return document kind")
	ErrNotLoaded     = errors.New("rack not loaded")
)

// ErrorKind is how a failed action should be presented.
type ErrorKind int

const (
	Validation ErrorKind = iota + 1
	Conflict
	NotFound
	Transient
)

func (k ErrorKind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not found"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// KindOf classifies err. Local guard failures are Validation; errors that
// carry an HTTP status are classified by it; anything else is Transient.
// KindOf(nil) is 0.
func KindOf(err error) ErrorKind {
	if err == nil {
		return 0
	}
	if slip.IsValidation(err) || errors.Is(err, grid.ErrInvalidLabel) ||
		errors.Is(err, ErrOutsideGrid) || errors.Is(err, ErrCellEmpty) ||
		errors.Is(err, ErrNotParentKind) || errors.Is(err, ErrNotReturnKind) ||
		errors.Is(err, ErrNotLoaded) {
		return Validation
	}
	var se interface{ StatusCode() int }
	if errors.As(err, &se) {
		switch se.StatusCode() {
		case http.StatusConflict:
			return Conflict
		case http.StatusNotFound:
			return NotFound
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return Validation
		}
	}
	return Transient
}
