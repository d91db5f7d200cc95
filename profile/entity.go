package profile

import (
	"fmt"
	"slices"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/factor"
)

// EntityFlag marks an entity. Flagged entities keep their derivation index
// reserved.
type EntityFlag string

const (
	FlagHiddenByUser     EntityFlag = "hiddenByUser"
	FlagTombstonedByUser EntityFlag = "tombstonedByUser"
)

// SecurityState describes how an entity is controlled. The only variant today
// is Unsecured; multi-factor control will add more.
type SecurityState interface {
	isSecurityState()
}

// Unsecured control: one transaction signing key and optionally an
// authentication signing key, both from single factor sources.
type Unsecured struct {
	TransactionSigning    factor.Instance
	AuthenticationSigning *factor.Instance
}

func (Unsecured) isSecurityState() {}

// Instances returns the transaction signing instance followed by the
// authentication signing instance, if any.
func (u Unsecured) Instances() []factor.Instance {
	out := []factor.Instance{u.TransactionSigning}
	if u.AuthenticationSigning != nil {
		out = append(out, *u.AuthenticationSigning)
	}
	return out
}

func (u Unsecured) clone() Unsecured {
	if u.AuthenticationSigning != nil {
		auth := *u.AuthenticationSigning
		u.AuthenticationSigning = &auth
	}
	return u
}

// Entity is an account or a persona.
type Entity struct {
	Kind        derivation.EntityKind
	Address     string
	NetworkID   derivation.NetworkID
	DisplayName string
	Security    SecurityState
	Flags       []EntityFlag
}

// UnsecuredControl projects the entity's security state onto Unsecured.
func (e Entity) UnsecuredControl() (Unsecured, error) {
	u, ok := e.Security.(Unsecured)
	if !ok {
		return Unsecured{}, fmt.Errorf("%w: %s has %T", ErrWrongSecurityState, e.Address, e.Security)
	}
	return u, nil
}

func (e Entity) HasFlag(f EntityFlag) bool {
	return slices.Contains(e.Flags, f)
}

func (e Entity) Clone() Entity {
	out := e
	out.Flags = slices.Clone(e.Flags)
	if u, ok := e.Security.(Unsecured); ok {
		out.Security = u.clone()
	}
	return out
}

// Network holds the entities of one network.
type Network struct {
	ID       derivation.NetworkID
	Accounts []Entity
	Personas []Entity
}

// Entities returns the entities of the given kind, hidden and tombstoned ones
// included.
func (n Network) Entities(kind derivation.EntityKind) []Entity {
	switch kind {
	case derivation.EntityKindAccount:
		return n.Accounts
	case derivation.EntityKindIdentity:
		return n.Personas
	default:
		return nil
	}
}

// Entity looks an entity up by address across both kinds.
func (n Network) Entity(address string) (Entity, bool) {
	for _, list := range [][]Entity{n.Accounts, n.Personas} {
		for _, e := range list {
			if e.Address == address {
				return e, true
			}
		}
	}
	return Entity{}, false
}

// upsert adds e or replaces the entity with the same address.
func (n *Network) upsert(e Entity) {
	list := &n.Accounts
	if e.Kind == derivation.EntityKindIdentity {
		list = &n.Personas
	}
	i := slices.IndexFunc(*list, func(x Entity) bool { return x.Address == e.Address })
	if i >= 0 {
		(*list)[i] = e.Clone()
		return
	}
	*list = append(*list, e.Clone())
}

func (n Network) clone() Network {
	out := Network{ID: n.ID}
	for _, e := range n.Accounts {
		out.Accounts = append(out.Accounts, e.Clone())
	}
	for _, e := range n.Personas {
		out.Personas = append(out.Personas, e.Clone())
	}
	return out
}
