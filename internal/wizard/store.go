// Package wizard holds the in-progress order's input data for the lifetime
// of one session. The store is the only owner of that state: views read
// snapshots and mutate through the fixed entry points below, nothing else.
package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bundle-wizard/pkg/api"
)

// State is the wizard's passive session state.
type State struct {
	UserID     *int
	AddressID  string
	Household  []api.HouseholdLine
	PreferTech []string
}

// LineUpdate carries a partial edit of one household line. Nil fields are
// left untouched.
type LineUpdate struct {
	ExpectedGB  *float64
	ExpectedMin *float64
	TVHDHours   *float64
}

// Store guards a single State. All operations are total functions over the
// state shape; input validation is the views' concern, not the store's.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore creates a store holding the default state.
func NewStore() *Store {
	return &Store{state: defaultState()}
}

func defaultState() State {
	return State{
		UserID:     nil,
		AddressID:  "",
		Household:  []api.HouseholdLine{},
		PreferTech: api.DefaultTechOrder(),
	}
}

// Snapshot returns a deep copy readers can keep without racing mutations.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// SetUser replaces the chosen user.
func (s *Store) SetUser(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UserID = &id
}

// SetAddress replaces the address id.
func (s *Store) SetAddress(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AddressID = id
}

// SetPreferredTech replaces the technology preference order.
func (s *Store) SetPreferredTech(techs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PreferTech = append([]string(nil), techs...)
}

// AddLine appends a household line. The caller guarantees line id
// uniqueness, normally by using NewLineID.
func (s *Store) AddLine(line api.HouseholdLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Household = append(s.state.Household, line)
}

// RemoveLine removes the line with the given id. No-op when absent.
func (s *Store) RemoveLine(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.state.Household[:0]
	for _, l := range s.state.Household {
		if l.LineID != lineID {
			kept = append(kept, l)
		}
	}
	s.state.Household = kept
}

// UpdateLine merges the non-nil fields of update into the matching line.
// No-op when absent.
func (s *Store) UpdateLine(lineID string, update LineUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Household {
		if s.state.Household[i].LineID != lineID {
			continue
		}
		if update.ExpectedGB != nil {
			s.state.Household[i].ExpectedGB = *update.ExpectedGB
		}
		if update.ExpectedMin != nil {
			s.state.Household[i].ExpectedMin = *update.ExpectedMin
		}
		if update.TVHDHours != nil {
			s.state.Household[i].TVHDHours = *update.TVHDHours
		}
		return
	}
}

// Reset restores the default state: no user, empty address, empty household,
// default tech preference order.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = defaultState()
}

func copyState(st State) State {
	out := State{
		AddressID:  st.AddressID,
		Household:  append([]api.HouseholdLine(nil), st.Household...),
		PreferTech: append([]string(nil), st.PreferTech...),
	}
	if st.UserID != nil {
		id := *st.UserID
		out.UserID = &id
	}
	return out
}

// NewLineID generates a collision-resistant line id from a timestamp and a
// random suffix.
func NewLineID() string {
	return fmt.Sprintf("line-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
