package verify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regpatch/internal/archive"
	"github.com/joshuapare/regpatch/internal/format"
	"github.com/joshuapare/regpatch/internal/layout"
	"github.com/joshuapare/regpatch/internal/patch"
)

// patchedArchive writes a zeroed archive covering every record, patches it
// with the default spec and flushes it to disk.
func patchedArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regulation.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, layout.Default().MinArchiveSize()), 0o644))

	b, err := archive.Load(path)
	require.NoError(t, err)
	_, err = patch.NewEngine(patch.EngineConfig{}).Apply(b, patch.DefaultSpec())
	require.NoError(t, err)
	require.NoError(t, b.Flush(path))
	return path
}

// corrupt overwrites record.field on disk with v.
func corrupt(t *testing.T, path, record, field string, v format.Value) {
	t.Helper()
	b, err := archive.Load(path)
	require.NoError(t, err)
	off, _, err := layout.Default().Resolve(record, field, b.Len())
	require.NoError(t, err)
	require.NoError(t, b.WriteValue(off, v))
	require.NoError(t, b.Flush(path))
}

func TestFile_AllPass(t *testing.T) {
	path := patchedArchive(t)

	rep, err := File(path, nil, patch.DefaultSpec(), Options{})
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Equal(t, path, rep.Path)
	assert.Len(t, rep.Checks, patch.DefaultSpec().Len())
	for _, st := range patch.DefaultSpec().Steps {
		assert.True(t, rep.StepOK(st.Name), st.Name)
	}
}

func TestFile_EndToEndValues(t *testing.T) {
	path := patchedArchive(t)
	rep, err := File(path, nil, patch.DefaultSpec(), Options{})
	require.NoError(t, err)

	got := make(map[string]format.Value, len(rep.Checks))
	for _, c := range rep.Checks {
		got[c.Record+"."+c.Field] = c.Actual
	}

	assert.Equal(t, uint32(75), got["weapon.dex_scaling"].Uint())
	assert.Equal(t, uint32(20), got["weapon.min_dex"].Uint())
	assert.Equal(t, uint32(5), got["ability.type"].Uint())
	assert.Equal(t, uint32(0), got["ability.fp_cost"].Uint())
	assert.Equal(t, uint32(0), got["ability.hp_cost"].Uint())
	assert.Equal(t, uint32(5), got["ability.stamina_cost"].Uint())
	assert.InDelta(t, 1.0, got["glow_effect.red"].Float(), 0.01)
	assert.InDelta(t, 0.55, got["glow_effect.green"].Float(), 0.01)
	assert.InDelta(t, 0.0, got["glow_effect.blue"].Float(), 0.01)
	assert.InDelta(t, 0.5, got["glow_effect.intensity"].Float(), 0.01)
	assert.Equal(t, uint32(1), got["ui_counter.enabled"].Uint())
	assert.InDelta(t, 1.0, got["ui_counter.color_r"].Float(), 0.01)
	assert.InDelta(t, 0.55, got["ui_counter.color_g"].Float(), 0.01)
	assert.InDelta(t, 0.0, got["ui_counter.color_b"].Float(), 0.01)
	assert.InDelta(t, 0.75, got["ui_counter.pos_x"].Float(), 0.01)
	assert.InDelta(t, 0.05, got["ui_counter.pos_y"].Float(), 0.01)
}

func TestFile_SingleCorruptFieldFailsFast(t *testing.T) {
	path := patchedArchive(t)
	corrupt(t, path, layout.RecordAbility, "stamina_cost", format.U32(6))

	rep, err := File(path, nil, patch.DefaultSpec(), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, format.ErrVerification)
	assert.False(t, rep.OK())

	var vf *format.VerificationFailure
	require.True(t, errors.As(err, &vf))
	assert.Equal(t, layout.RecordAbility, vf.Record)
	assert.Equal(t, "stamina_cost", vf.Field)
	assert.Equal(t, uint32(6), vf.Actual.Uint())

	// Stopped at the failing field: nothing after it was checked.
	last := rep.Checks[len(rep.Checks)-1]
	assert.Equal(t, "stamina_cost", last.Field)
	assert.False(t, rep.StepOK("parry_ash"))
	assert.True(t, rep.StepOK("hand_of_malenia"))
	assert.False(t, rep.StepOK("orange_glow"), "unchecked steps are not reported as passing")
}

func TestFile_AllModeReportsEveryMismatch(t *testing.T) {
	path := patchedArchive(t)
	corrupt(t, path, layout.RecordWeapon, "min_dex", format.U8(99))
	corrupt(t, path, layout.RecordUICounter, "pos_x", format.F32(0.5))

	rep, err := File(path, nil, patch.DefaultSpec(), Options{All: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, format.ErrVerification)
	assert.Len(t, rep.Checks, patch.DefaultSpec().Len())
	require.Len(t, rep.Failures, 2)
	assert.Equal(t, "min_dex", rep.Failures[0].Field)
	assert.Equal(t, "pos_x", rep.Failures[1].Field)
}

func TestFile_FloatTolerance(t *testing.T) {
	path := patchedArchive(t)
	corrupt(t, path, layout.RecordGlowEffect, "green", format.F32(0.555))

	_, err := File(path, nil, patch.DefaultSpec(), Options{})
	assert.NoError(t, err, "0.005 drift is inside the default tolerance")

	_, err = File(path, nil, patch.DefaultSpec(), Options{Tolerance: 0.001})
	assert.ErrorIs(t, err, format.ErrVerification)
}

func TestFile_UnpatchedArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regulation.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, layout.Default().MinArchiveSize()), 0o644))

	_, err := File(path, nil, patch.DefaultSpec(), Options{})
	var vf *format.VerificationFailure
	require.True(t, errors.As(err, &vf))
	assert.Equal(t, "dex_scaling", vf.Field)
}

func TestFile_TruncatedArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regulation.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 0x1000), 0o644))

	_, err := File(path, nil, patch.DefaultSpec(), Options{})
	assert.ErrorIs(t, err, format.ErrOutOfRange)
	assert.NotErrorIs(t, err, format.ErrVerification)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.bin"), nil, patch.DefaultSpec(), Options{})
	assert.ErrorIs(t, err, format.ErrIO)
}

func TestReader_InMemory(t *testing.T) {
	b := archive.FromBytes(make([]byte, layout.Default().MinArchiveSize()))
	_, err := patch.NewEngine(patch.EngineConfig{}).Apply(b, patch.DefaultSpec())
	require.NoError(t, err)

	rep, err := Reader(b, nil, patch.DefaultSpec(), Options{})
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Empty(t, rep.Path)
}
