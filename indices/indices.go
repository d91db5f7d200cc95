// Package indices computes which derivation indices a factor source has
// already spent and which one to use next.
package indices

import (
	"errors"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/profile"
)

var ErrDuplicateIndex = errors.New("derivation index used by more than one entity")

// Request selects the entities whose indices are collected.
type Request struct {
	FactorSourceID factor.ID
	EntityKind     derivation.EntityKind
	NetworkID      derivation.NetworkID
	Scheme         derivation.Scheme
}

// Used is the set of indices a factor source has spent on one network for
// one entity kind and scheme. Indices is ascending.
type Used struct {
	FactorSourceID factor.ID
	NetworkID      derivation.NetworkID
	Indices        []derivation.Index
}

// UsedByFactorSource collects the transaction signing indices of every
// entity of the requested kind on the network, hidden and tombstoned
// entities included. An unknown network yields an empty set.
func UsedByFactorSource(p profile.Profile, req Request) (Used, error) {
	used := Used{FactorSourceID: req.FactorSourceID, NetworkID: req.NetworkID}
	seen := mapset.NewThreadUnsafeSet[derivation.Index]()

	for _, e := range p.Entities(req.NetworkID, req.EntityKind) {
		control, err := e.UnsecuredControl()
		if err != nil {
			return Used{}, err
		}
		instance := control.TransactionSigning
		if instance.FactorSourceID != req.FactorSourceID {
			continue
		}
		path := instance.Key.Path
		if path == nil || path.Scheme() != req.Scheme {
			continue
		}
		index, ok := derivation.IndexOf(path)
		if !ok {
			continue
		}
		if !seen.Add(index) {
			return Used{}, fmt.Errorf("%w: index %d (entity %s)", ErrDuplicateIndex, index, e.Address)
		}
	}

	used.Indices = seen.ToSlice()
	slices.Sort(used.Indices)
	return used, nil
}

// Mode picks how the next index is chosen.
type Mode int

const (
	// NextAfterHighest returns one past the highest used index, or 0.
	NextAfterHighest Mode = iota
	// LowestFree returns the smallest index not in use.
	LowestFree
)

func (m Mode) String() string {
	switch m {
	case NextAfterHighest:
		return "next-after-highest"
	case LowestFree:
		return "lowest-free"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "next-after-highest":
		return NextAfterHighest, nil
	case "lowest-free":
		return LowestFree, nil
	default:
		return 0, fmt.Errorf("unknown index mode %q", s)
	}
}

// Next returns the index a new entity should derive at.
func Next(used Used, mode Mode) (derivation.Index, error) {
	if len(used.Indices) == 0 {
		return 0, nil
	}

	switch mode {
	case NextAfterHighest:
		return slices.Max(used.Indices).Next()
	case LowestFree:
		set := mapset.NewThreadUnsafeSet(used.Indices...)
		for i := derivation.Index(0); ; i++ {
			if !set.Contains(i) {
				return i, nil
			}
			if i == derivation.MaxIndex {
				return 0, fmt.Errorf("%w: no free index", derivation.ErrIndexOutOfRange)
			}
		}
	default:
		return 0, fmt.Errorf("unknown index mode %d", mode)
	}
}
