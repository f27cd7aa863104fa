package patch

import (
	"github.com/joshuapare/regpatch/internal/format"
	"github.com/joshuapare/regpatch/internal/layout"
)

// Write sets one field of one record.
type Write struct {
	Record string
	Field  string
	Value  format.Value
}

// Step is a named group of writes reported to the operator as a unit.
type Step struct {
	Name    string
	Summary string
	Writes  []Write
}

// Spec is the ordered patch payload. Writes are independent of each other's
// prior values, but they are applied and reported in declaration order.
type Spec struct {
	Steps []Step
}

// Writes flattens the spec in application order.
func (s Spec) Writes() []Write {
	var out []Write
	for _, st := range s.Steps {
		out = append(out, st.Writes...)
	}
	return out
}

// Len returns the total number of writes.
func (s Spec) Len() int {
	n := 0
	for _, st := range s.Steps {
		n += len(st.Writes)
	}
	return n
}

// DefaultSpec is the cursed-sword payload: a rebalanced weapon, a custom
// parry ability, an orange glow and the on-screen counter overlay.
func DefaultSpec() Spec {
	return Spec{Steps: []Step{
		{
			Name:    "hand_of_malenia",
			Summary: "S-tier DEX, 20 dex requirement",
			Writes: []Write{
				{layout.RecordWeapon, "dex_scaling", format.U8(75)},
				{layout.RecordWeapon, "min_dex", format.U8(20)},
			},
		},
		{
			Name:    "parry_ash",
			Summary: "Parry Ash of War created",
			Writes: []Write{
				{layout.RecordAbility, "type", format.U8(5)},
				{layout.RecordAbility, "fp_cost", format.U32(0)},
				{layout.RecordAbility, "hp_cost", format.U32(0)},
				{layout.RecordAbility, "stamina_cost", format.U32(5)},
				{layout.RecordAbility, "animation_id", format.U32(0x00000001)},
			},
		},
		{
			Name:    "orange_glow",
			Summary: "Orange glow effect configured",
			Writes: []Write{
				{layout.RecordGlowEffect, "red", format.F32(1.0)},
				{layout.RecordGlowEffect, "green", format.F32(0.55)},
				{layout.RecordGlowEffect, "blue", format.F32(0.0)},
				{layout.RecordGlowEffect, "intensity", format.F32(0.5)},
			},
		},
		{
			Name:    "ui_counter",
			Summary: "UI counter configured",
			Writes: []Write{
				{layout.RecordUICounter, "enabled", format.U8(1)},
				{layout.RecordUICounter, "color_r", format.F32(1.0)},
				{layout.RecordUICounter, "color_g", format.F32(0.55)},
				{layout.RecordUICounter, "color_b", format.F32(0.0)},
				{layout.RecordUICounter, "pos_x", format.F32(0.75)},
				{layout.RecordUICounter, "pos_y", format.F32(0.05)},
			},
		},
	}}
}
