package profile

import (
	"fmt"
	"sync"

	"github.com/RaghavSood/factorkit/derivation"
)

// Store is the single-writer owner of a Profile. Writers work on a copy that
// only replaces the current profile once it validates, so readers never see
// a partially applied change.
type Store struct {
	mu      sync.RWMutex
	profile Profile
}

func NewStore(p Profile) (*Store, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating profile: %w", err)
	}
	return &Store{profile: p.Clone()}, nil
}

// Snapshot returns a deep copy of the current profile.
func (s *Store) Snapshot() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// View runs fn against the current profile under the read lock. fn must not
// modify or retain p.
func (s *Store) View(fn func(p Profile) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.profile)
}

// Update applies fn to a copy of the profile and commits it if fn succeeds
// and the result validates. On error the profile is left untouched.
func (s *Store) Update(fn func(p *Profile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.profile.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("validating profile: %w", err)
	}
	s.profile = next
	return nil
}

func (s *Store) CurrentNetworkID() derivation.NetworkID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.CurrentNetworkID
}

// Entities returns copies of the entities of kind on networkID.
func (s *Store) Entities(networkID derivation.NetworkID, kind derivation.EntityKind) []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entity
	for _, e := range s.profile.Entities(networkID, kind) {
		out = append(out, e.Clone())
	}
	return out
}

// UpdateEntities adds entities to networkID, replacing any with the same
// address. The network is created on first use.
func (s *Store) UpdateEntities(networkID derivation.NetworkID, entities ...Entity) error {
	return s.Update(func(p *Profile) error {
		n := p.network(networkID)
		for _, e := range entities {
			if e.NetworkID != networkID {
				return fmt.Errorf("%w: %s is on %s, not %s", ErrNetworkMismatch, e.Address, e.NetworkID, networkID)
			}
			if !e.Kind.Valid() {
				return fmt.Errorf("%w: %s", derivation.ErrUnknownEntityKind, e.Address)
			}
			n.upsert(e)
		}
		return nil
	})
}
