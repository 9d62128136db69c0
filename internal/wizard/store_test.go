package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bundle-wizard/pkg/api"
)

func line(id string, gb, mins, tv float64) api.HouseholdLine {
	return api.HouseholdLine{LineID: id, ExpectedGB: gb, ExpectedMin: mins, TVHDHours: tv}
}

func TestStoreDefaults(t *testing.T) {
	s := NewStore()
	state := s.Snapshot()

	assert.Nil(t, state.UserID)
	assert.Equal(t, "", state.AddressID)
	assert.Empty(t, state.Household)
	assert.Equal(t, []string{"fiber", "vdsl", "fwa"}, state.PreferTech)
}

func TestStoreResetRestoresDefaults(t *testing.T) {
	s := NewStore()
	s.SetUser(42)
	s.SetAddress("A1001")
	s.SetPreferredTech([]string{"vdsl"})
	s.AddLine(line("l1", 10, 300, 0))

	s.Reset()

	state := s.Snapshot()
	assert.Nil(t, state.UserID)
	assert.Equal(t, "", state.AddressID)
	assert.Empty(t, state.Household)
	assert.Equal(t, []string{"fiber", "vdsl", "fwa"}, state.PreferTech)
}

func TestStoreLineOperations(t *testing.T) {
	t.Run("add and remove keep order", func(t *testing.T) {
		s := NewStore()
		s.AddLine(line("l1", 10, 300, 0))
		s.AddLine(line("l2", 20, 500, 5))
		s.AddLine(line("l3", 5, 100, 0))

		s.RemoveLine("l2")

		state := s.Snapshot()
		require.Len(t, state.Household, 2)
		assert.Equal(t, "l1", state.Household[0].LineID)
		assert.Equal(t, "l3", state.Household[1].LineID)
	})

	t.Run("remove of unknown id is a no-op", func(t *testing.T) {
		s := NewStore()
		s.AddLine(line("l1", 10, 300, 0))

		s.RemoveLine("missing")

		assert.Len(t, s.Snapshot().Household, 1)
	})

	t.Run("update merges only the given fields", func(t *testing.T) {
		s := NewStore()
		s.AddLine(line("l1", 10, 300, 0))

		gb := 25.0
		s.UpdateLine("l1", LineUpdate{ExpectedGB: &gb})

		got := s.Snapshot().Household[0]
		assert.Equal(t, 25.0, got.ExpectedGB)
		assert.Equal(t, 300.0, got.ExpectedMin)
		assert.Equal(t, 0.0, got.TVHDHours)
	})

	t.Run("update of unknown id leaves state unchanged", func(t *testing.T) {
		s := NewStore()
		s.AddLine(line("l1", 10, 300, 0))
		before := s.Snapshot()

		gb := 99.0
		s.UpdateLine("missing", LineUpdate{ExpectedGB: &gb})

		assert.Equal(t, before, s.Snapshot())
	})

	t.Run("no duplicate ids under mixed sequences", func(t *testing.T) {
		s := NewStore()
		s.AddLine(line("a", 1, 1, 1))
		s.AddLine(line("b", 2, 2, 2))
		s.RemoveLine("a")
		s.AddLine(line("c", 3, 3, 3))
		mins := 10.0
		s.UpdateLine("b", LineUpdate{ExpectedMin: &mins})
		s.RemoveLine("nope")

		seen := map[string]bool{}
		for _, l := range s.Snapshot().Household {
			assert.False(t, seen[l.LineID], "duplicate line id %s", l.LineID)
			seen[l.LineID] = true
		}
	})
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := NewStore()
	s.AddLine(line("l1", 10, 300, 0))

	snap := s.Snapshot()
	snap.Household[0].ExpectedGB = 999
	snap.PreferTech[0] = "mutated"

	state := s.Snapshot()
	assert.Equal(t, 10.0, state.Household[0].ExpectedGB)
	assert.Equal(t, "fiber", state.PreferTech[0])
}

func TestNewLineIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewLineID()
		require.False(t, seen[id], "collision on %s", id)
		seen[id] = true
	}
}
