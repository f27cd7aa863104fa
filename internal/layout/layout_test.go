package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regpatch/internal/format"
)

func TestDefaultTable_Offsets(t *testing.T) {
	tbl := Default()
	size := tbl.MinArchiveSize()

	tests := []struct {
		record string
		field  string
		want   int
		typ    format.FieldType
	}{
		{RecordWeapon, "dex_scaling", 0x2A0000 + 32*0x100 + 0x34, format.TypeU8},
		{RecordWeapon, "min_dex", 0x2A0000 + 32*0x100 + 0x2E, format.TypeU8},
		{RecordAbility, "type", 0x450000 + 100*0x80, format.TypeU8},
		{RecordAbility, "fp_cost", 0x450000 + 100*0x80 + 0x04, format.TypeU32},
		{RecordAbility, "hp_cost", 0x450000 + 100*0x80 + 0x08, format.TypeU32},
		{RecordAbility, "stamina_cost", 0x450000 + 100*0x80 + 0x0C, format.TypeU32},
		{RecordAbility, "animation_id", 0x450000 + 100*0x80 + 0x10, format.TypeU32},
		{RecordGlowEffect, "red", 0x600000 + 200*0x40, format.TypeF32},
		{RecordGlowEffect, "intensity", 0x600000 + 200*0x40 + 0x0C, format.TypeF32},
		{RecordUICounter, "enabled", 0x700000 + 300*0x20, format.TypeU8},
		{RecordUICounter, "pos_y", 0x700000 + 300*0x20 + 0x14, format.TypeF32},
	}

	for _, tt := range tests {
		t.Run(tt.record+"."+tt.field, func(t *testing.T) {
			off, f, err := tbl.Resolve(tt.record, tt.field, size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, off)
			assert.Equal(t, tt.typ, f.Type)
		})
	}
}

func TestDefaultTable_MinArchiveSize(t *testing.T) {
	// The UI counter's pos_y is the last byte the patcher touches.
	assert.Equal(t, 0x700000+300*0x20+0x14+4, Default().MinArchiveSize())
}

func TestResolve_OutOfRange(t *testing.T) {
	tbl := Default()

	_, _, err := tbl.Resolve(RecordUICounter, "pos_y", tbl.MinArchiveSize()-1)
	require.Error(t, err)
	assert.ErrorIs(t, err, format.ErrOutOfRange)

	var rangeErr *format.OutOfRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, RecordUICounter, rangeErr.Record)
	assert.Equal(t, "pos_y", rangeErr.Field)
	assert.Equal(t, 4, rangeErr.Width)

	_, _, err = tbl.Resolve(RecordWeapon, "dex_scaling", 0x1000)
	assert.ErrorIs(t, err, format.ErrOutOfRange)
}

func TestResolve_UnknownNames(t *testing.T) {
	tbl := Default()

	_, _, err := tbl.Resolve("shield", "guard", 1<<24)
	assert.ErrorIs(t, err, format.ErrUnknownRecord)

	_, _, err = tbl.Resolve(RecordWeapon, "str_scaling", 1<<24)
	assert.ErrorIs(t, err, format.ErrUnknownField)
}

func TestNewTable_Validation(t *testing.T) {
	u8 := []Field{{Name: "flag", Offset: 0, Type: format.TypeU8}}

	tests := []struct {
		name    string
		records []Record
		want    string
	}{
		{"empty name", []Record{{Stride: 4, Fields: u8}}, "empty name"},
		{"zero stride", []Record{{Name: "r", Fields: u8}}, "stride must be positive"},
		{"no fields", []Record{{Name: "r", Stride: 4}}, "no fields"},
		{"negative index", []Record{{Name: "r", Stride: 4, Index: -1, Fields: u8}}, "negative"},
		{
			"field past stride",
			[]Record{{Name: "r", Stride: 4, Fields: []Field{{Name: "x", Offset: 2, Type: format.TypeF32}}}},
			"does not fit in stride",
		},
		{
			"invalid type",
			[]Record{{Name: "r", Stride: 4, Fields: []Field{{Name: "x"}}}},
			"invalid field type",
		},
		{
			"duplicate field",
			[]Record{{Name: "r", Stride: 4, Fields: append(u8, u8...)}},
			"duplicate field",
		},
		{
			"duplicate record",
			[]Record{{Name: "r", Stride: 4, Fields: u8}, {Name: "r", Stride: 4, Fields: u8}},
			"duplicate record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.records...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewTable_CopiesFields(t *testing.T) {
	fields := []Field{{Name: "flag", Offset: 0, Type: format.TypeU8}}
	tbl, err := NewTable(Record{Name: "r", Stride: 4, Fields: fields})
	require.NoError(t, err)

	fields[0].Offset = 3
	r, err := tbl.Record("r")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Fields[0].Offset)
}

func TestProfile_RoundTrip(t *testing.T) {
	data, err := Default().MarshalProfile()
	require.NoError(t, err)

	tbl, err := ParseProfile(data)
	require.NoError(t, err)
	assert.Equal(t, Default().Records(), tbl.Records())
}

func TestLoadProfile_HexOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	profile := `game_version: "1.12"
records:
  - name: weapon
    base_offset: 0x2B0000
    stride: 0x100
    index: 32
    fields:
      - {name: dex_scaling, offset: 0x34, type: u8}
`
	require.NoError(t, os.WriteFile(path, []byte(profile), 0o644))

	tbl, err := LoadProfile(path)
	require.NoError(t, err)

	off, _, err := tbl.Resolve(RecordWeapon, "dex_scaling", 0x300000)
	require.NoError(t, err)
	assert.Equal(t, 0x2B2034, off)
}

func TestLoadProfile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadProfile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, format.ErrIO)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("records:\n  - name: r\n    stride: 4\n    fields:\n      - {name: x, offset: 0, type: i64}\n"), 0o644))
	_, err = LoadProfile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field type")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("game_version: x\n"), 0o644))
	_, err = LoadProfile(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records")
}
