package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLabel(t *testing.T) {
	got, err := EncodeLabel(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "A01", got)

	got, err = EncodeLabel(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "B03", got)

	got, err = EncodeLabel(25, 98)
	require.NoError(t, err)
	assert.Equal(t, "Z99", got)

	_, err = EncodeLabel(26, 0)
	assert.ErrorIs(t, err, ErrInvalidLabel)
	_, err = EncodeLabel(0, 99)
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestDecodeLabel(t *testing.T) {
	r, c, err := DecodeLabel("B03")
	require.NoError(t, err)
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)

	for _, bad := range []string{"", "b03", "B3", "B003", "AB1", " B03", "B03 ", "B00", "1A2"} {
		_, _, err := DecodeLabel(bad)
		assert.ErrorIs(t, err, ErrInvalidLabel, bad)
	}
}

func TestCellLabel_RoundTrip(t *testing.T) {
	label, err := CellLabel(Cell{Row: 3, Col: 10})
	require.NoError(t, err)
	assert.Equal(t, "C10", label)

	cell, err := LabelCell(label)
	require.NoError(t, err)
	assert.Equal(t, Cell{Row: 3, Col: 10}, cell)
}
