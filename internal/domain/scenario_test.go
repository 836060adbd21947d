package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScenario(t *testing.T) {
	s := NewScenario(5.0)

	assert.True(t, s.IsIdentity())
	assert.Empty(t, s.ActivePreset())
	for _, key := range FeatureKeys() {
		assert.Equal(t, 1.0, s.Multiplier(key))
	}
}

func TestSetMultiplier(t *testing.T) {
	t.Run("sets and clamps to configured bound", func(t *testing.T) {
		s := NewScenario(3.0)

		s.SetMultiplier("HRCN_EALT", 2.0)
		assert.Equal(t, 2.0, s.Multiplier("HRCN_EALT"))

		s.SetMultiplier("HRCN_EALT", 7.5)
		assert.Equal(t, 3.0, s.Multiplier("HRCN_EALT"))

		s.SetMultiplier("HRCN_EALT", -1.0)
		assert.Equal(t, 0.0, s.Multiplier("HRCN_EALT"))
	})

	t.Run("unknown key is ignored", func(t *testing.T) {
		s := NewScenario(5.0)
		s.SetMultiplier("BOGUS_EALT", 4.0)

		assert.Equal(t, 1.0, s.Multiplier("BOGUS_EALT"))
		assert.True(t, s.IsIdentity())
	})

	t.Run("editing clears the active preset", func(t *testing.T) {
		s := NewScenario(5.0)
		require.NoError(t, s.ApplyPreset("deep-freeze"))
		require.Equal(t, "deep-freeze", s.ActivePreset())

		s.SetMultiplier("CWAV_EALT", 1.1)
		assert.Empty(t, s.ActivePreset())
	})

	t.Run("zero bound falls back to default", func(t *testing.T) {
		s := NewScenario(0)
		s.SetMultiplier("HAIL_EALT", 4.9)
		assert.Equal(t, 4.9, s.Multiplier("HAIL_EALT"))
	})
}

func TestApplyPreset(t *testing.T) {
	t.Run("applies overrides and identity elsewhere", func(t *testing.T) {
		s := NewScenario(5.0)
		require.NoError(t, s.ApplyPreset("wildfire-surge"))

		assert.Equal(t, 3.0, s.Multiplier("WFIR_EALT"))
		assert.Equal(t, 2.0, s.Multiplier("DRGT_EALT"))
		assert.Equal(t, 1.0, s.Multiplier("HRCN_EALT"))
		assert.Equal(t, "wildfire-surge", s.ActivePreset())
	})

	t.Run("preset is an override, not a delta", func(t *testing.T) {
		// Applying P after Q must equal applying P to a fresh scenario:
		// keys Q touched but P does not must read 1.0, not Q's value.
		viaQ := NewScenario(5.0)
		require.NoError(t, viaQ.ApplyPreset("hurricane-season"))
		require.NoError(t, viaQ.ApplyPreset("wildfire-surge"))

		fresh := NewScenario(5.0)
		require.NoError(t, fresh.ApplyPreset("wildfire-surge"))

		assert.Equal(t, fresh.Multipliers(), viaQ.Multipliers())
		assert.Equal(t, 1.0, viaQ.Multiplier("HRCN_EALT"))
	})

	t.Run("unknown preset leaves scenario unchanged", func(t *testing.T) {
		s := NewScenario(5.0)
		s.SetMultiplier("TRND_EALT", 2.5)
		before := s.Multipliers()

		err := s.ApplyPreset("megadrought")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownPreset)
		assert.Equal(t, before, s.Multipliers())
	})

	t.Run("preset values are clamped to the configured bound", func(t *testing.T) {
		s := NewScenario(2.0)
		require.NoError(t, s.ApplyPreset("seismic-shift"))
		assert.Equal(t, 2.0, s.Multiplier("ERQK_EALT"))
	})
}

func TestReset(t *testing.T) {
	s := NewScenario(5.0)
	require.NoError(t, s.ApplyPreset("hurricane-season"))
	s.SetMultiplier("HAIL_EALT", 0.0)

	s.Reset()

	assert.True(t, s.IsIdentity())
	assert.Empty(t, s.ActivePreset())
}

func TestMultipliersIsACopy(t *testing.T) {
	s := NewScenario(5.0)
	m := s.Multipliers()
	m["HRCN_EALT"] = 9.0

	assert.Equal(t, 1.0, s.Multiplier("HRCN_EALT"))
}
