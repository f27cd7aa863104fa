package layout

import "github.com/joshuapare/regpatch/internal/format"

// Record names in the default table.
const (
	RecordWeapon     = "weapon"
	RecordAbility    = "ability"
	RecordGlowEffect = "glow_effect"
	RecordUICounter  = "ui_counter"
)

// Regions and instances targeted in the shipped regulation file.
const (
	weaponBase   = 0x2A0000
	weaponStride = 0x100
	weaponIndex  = 32

	abilityBase   = 0x450000
	abilityStride = 0x80
	abilityIndex  = 100

	glowBase   = 0x600000
	glowStride = 0x40
	glowIndex  = 200

	uiBase   = 0x700000
	uiStride = 0x20
	uiIndex  = 300
)

// DefaultRecords returns the built-in record declarations.
func DefaultRecords() []Record {
	return []Record{
		{
			Name:       RecordWeapon,
			BaseOffset: weaponBase,
			Stride:     weaponStride,
			Index:      weaponIndex,
			Fields: []Field{
				{Name: "dex_scaling", Offset: 0x34, Type: format.TypeU8},
				{Name: "min_dex", Offset: 0x2E, Type: format.TypeU8},
			},
		},
		{
			Name:       RecordAbility,
			BaseOffset: abilityBase,
			Stride:     abilityStride,
			Index:      abilityIndex,
			Fields: []Field{
				{Name: "type", Offset: 0x00, Type: format.TypeU8},
				{Name: "fp_cost", Offset: 0x04, Type: format.TypeU32},
				{Name: "hp_cost", Offset: 0x08, Type: format.TypeU32},
				{Name: "stamina_cost", Offset: 0x0C, Type: format.TypeU32},
				{Name: "animation_id", Offset: 0x10, Type: format.TypeU32},
			},
		},
		{
			Name:       RecordGlowEffect,
			BaseOffset: glowBase,
			Stride:     glowStride,
			Index:      glowIndex,
			Fields: []Field{
				{Name: "red", Offset: 0x00, Type: format.TypeF32},
				{Name: "green", Offset: 0x04, Type: format.TypeF32},
				{Name: "blue", Offset: 0x08, Type: format.TypeF32},
				{Name: "intensity", Offset: 0x0C, Type: format.TypeF32},
			},
		},
		{
			Name:       RecordUICounter,
			BaseOffset: uiBase,
			Stride:     uiStride,
			Index:      uiIndex,
			Fields: []Field{
				{Name: "enabled", Offset: 0x00, Type: format.TypeU8},
				{Name: "color_r", Offset: 0x04, Type: format.TypeF32},
				{Name: "color_g", Offset: 0x08, Type: format.TypeF32},
				{Name: "color_b", Offset: 0x0C, Type: format.TypeF32},
				{Name: "pos_x", Offset: 0x10, Type: format.TypeF32},
				{Name: "pos_y", Offset: 0x14, Type: format.TypeF32},
			},
		},
	}
}

// Default returns the built-in table.
func Default() *Table {
	t, err := NewTable(DefaultRecords()...)
	if err != nil {
		panic("layout: invalid default table: " + err.Error())
	}
	return t
}
