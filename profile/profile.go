// Package profile holds the wallet aggregate: the factor source registry and
// the accounts and personas of every network, guarded by a single writer.
package profile

import (
	"slices"

	"github.com/RaghavSood/factorkit/derivation"
)

type Profile struct {
	FactorSources    FactorSources
	Networks         []Network
	CurrentNetworkID derivation.NetworkID
}

// Network returns the network with the given id.
func (p Profile) Network(id derivation.NetworkID) (Network, bool) {
	i := slices.IndexFunc(p.Networks, func(n Network) bool { return n.ID == id })
	if i < 0 {
		return Network{}, false
	}
	return p.Networks[i], true
}

// Entities returns the entities of kind on network id. An unknown network has
// none.
func (p Profile) Entities(id derivation.NetworkID, kind derivation.EntityKind) []Entity {
	n, ok := p.Network(id)
	if !ok {
		return nil
	}
	return n.Entities(kind)
}

func (p *Profile) network(id derivation.NetworkID) *Network {
	for i := range p.Networks {
		if p.Networks[i].ID == id {
			return &p.Networks[i]
		}
	}
	p.Networks = append(p.Networks, Network{ID: id})
	return &p.Networks[len(p.Networks)-1]
}

// Validate checks the invariants every committed profile must hold.
func (p Profile) Validate() error {
	return p.FactorSources.validate()
}

// Clone deep copies p.
func (p Profile) Clone() Profile {
	out := Profile{
		FactorSources:    p.FactorSources.Clone(),
		CurrentNetworkID: p.CurrentNetworkID,
	}
	for _, n := range p.Networks {
		out.Networks = append(out.Networks, n.clone())
	}
	return out
}
