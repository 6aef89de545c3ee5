package grid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidLabel is returned for anything that is not exactly one capital
// letter followed by two digits naming a column from 01.
var ErrInvalidLabel = errors.New("invalid cell label")

var labelPattern = regexp.MustCompile(`^[A-Z]\d{2}$`)

// EncodeLabel renders 0-indexed warehouse coordinates as a label: row 0 is
// "A", column 0 is "01". Row 1, column 2 is "B03".
func EncodeLabel(row, col int) (string, error) {
	if row < 0 || row > 25 {
		return "", fmt.Errorf("%w: row %d out of range A-Z", ErrInvalidLabel, row)
	}
	if col < 0 || col > 98 {
		return "", fmt.Errorf("%w: column %d out of range 01-99", ErrInvalidLabel, col)
	}
	return fmt.Sprintf("%c%02d", rune('A'+row), col+1), nil
}

// DecodeLabel parses a label back into 0-indexed warehouse coordinates.
func DecodeLabel(label string) (row, col int, err error) {
	if !labelPattern.MatchString(label) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	n, _ := strconv.Atoi(label[1:])
	if n == 0 {
		return 0, 0, fmt.Errorf("%w: %q has no column 00", ErrInvalidLabel, label)
	}
	return int(label[0] - 'A'), n - 1, nil
}

// CellLabel is EncodeLabel for a canonical cell.
func CellLabel(c Cell) (string, error) {
	return EncodeLabel(ZeroBased.FromCell(c))
}

// LabelCell is DecodeLabel returning a canonical cell.
func LabelCell(label string) (Cell, error) {
	r, c, err := DecodeLabel(label)
	if err != nil {
		return Cell{}, err
	}
	return ZeroBased.ToCell(r, c), nil
}
