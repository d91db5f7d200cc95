package profile

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/multierr"

	"github.com/RaghavSood/factorkit/factor"
)

// FactorSources is the ordered factor source registry of a profile.
type FactorSources []factor.Source

func (fs FactorSources) index(id factor.ID) int {
	return slices.IndexFunc(fs, func(s factor.Source) bool { return s.ID() == id })
}

func (fs FactorSources) Get(id factor.ID) (factor.Source, bool) {
	i := fs.index(id)
	if i < 0 {
		return nil, false
	}
	return fs[i], true
}

// GetOfKind looks id up and projects it onto the variant K.
func GetOfKind[K factor.Source](fs FactorSources, id factor.ID) (K, error) {
	src, ok := fs.Get(id)
	if !ok {
		var zero K
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return factor.As[K](src)
}

func (fs *FactorSources) Add(src factor.Source) error {
	if fs.index(src.ID()) >= 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyPresent, src.ID())
	}
	*fs = append(*fs, src)
	return nil
}

// Update replaces the source with the same id, keeping its position.
func (fs *FactorSources) Update(src factor.Source) error {
	i := fs.index(src.ID())
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, src.ID())
	}
	(*fs)[i] = src
	return nil
}

// FlagForDeletion soft deletes id. The entry stays in the registry so
// historic entities keep resolving their factor sources.
func (fs *FactorSources) FlagForDeletion(id factor.ID) error {
	src, ok := fs.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if factor.IsMain(src) {
		return fmt.Errorf("%w: %s", ErrMainFactorSource, id)
	}
	return fs.Update(src.WithCommon(src.Common().WithFlag(factor.FlagDeletedByUser)))
}

// UpdateLastUsed stamps every source in ids. Nothing is written unless all
// ids are present; every missing id is reported.
func (fs *FactorSources) UpdateLastUsed(ids []factor.ID, at time.Time) error {
	var err error
	for _, id := range ids {
		if fs.index(id) < 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s", ErrNotFound, id))
		}
	}
	if err != nil {
		return err
	}

	for _, id := range ids {
		i := fs.index(id)
		c := (*fs)[i].Common()
		c.LastUsedOn = at
		(*fs)[i] = (*fs)[i].WithCommon(c)
	}
	return nil
}

// PromoteToMain makes device the only main device source. A registered
// device keeps its stored state and only gains the main flag; an unknown one
// is added. Devices flagged for deletion cannot be promoted.
func (fs *FactorSources) PromoteToMain(device factor.Device) error {
	target := factor.Source(device)
	if stored, ok := fs.Get(device.ID()); ok {
		target = stored
	}
	if factor.IsDeleted(target) {
		return fmt.Errorf("%w: %s", ErrDeleted, device.ID())
	}

	for i, src := range *fs {
		if src.Kind() == factor.KindDevice && factor.IsMain(src) && src.ID() != device.ID() {
			(*fs)[i] = src.WithCommon(src.Common().WithoutFlag(factor.FlagMain))
		}
	}

	promoted := target.WithCommon(target.Common().WithFlag(factor.FlagMain))
	if fs.index(device.ID()) >= 0 {
		return fs.Update(promoted)
	}
	return fs.Add(promoted)
}

// MainDevice returns the device source flagged main.
func (fs FactorSources) MainDevice() (factor.Device, bool) {
	for _, src := range fs {
		if d, ok := src.(factor.Device); ok && factor.IsMain(d) {
			return d, true
		}
	}
	return factor.Device{}, false
}

// OfKind returns the sources of kind k in registry order.
func (fs FactorSources) OfKind(k factor.Kind) FactorSources {
	var out FactorSources
	for _, src := range fs {
		if src.Kind() == k {
			out = append(out, src)
		}
	}
	return out
}

func (fs FactorSources) validate() error {
	if len(fs) == 0 {
		return ErrEmptyRegistry
	}

	seen := make(map[factor.ID]struct{}, len(fs))
	mains := 0
	for _, src := range fs {
		if _, dup := seen[src.ID()]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, src.ID())
		}
		seen[src.ID()] = struct{}{}
		if src.ID().Kind != src.Kind() {
			return fmt.Errorf("%w: %s is a %s", ErrKindMismatch, src.ID(), src.Kind())
		}

		if !factor.IsMain(src) {
			continue
		}
		if src.Kind() != factor.KindDevice {
			return fmt.Errorf("%w: %s is flagged main", ErrMainInvariant, src.ID())
		}
		mains++
	}
	if mains != 1 {
		return fmt.Errorf("%w: found %d", ErrMainInvariant, mains)
	}
	return nil
}

// Clone copies the registry, re-cloning each source's Common.
func (fs FactorSources) Clone() FactorSources {
	out := make(FactorSources, len(fs))
	for i, src := range fs {
		out[i] = src.WithCommon(src.Common())
	}
	return out
}
