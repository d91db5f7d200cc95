// Package derivation models the hierarchical deterministic derivation paths
// used for accounts, personas and factor source identities.
//
// Two schemes exist. CAP26 paths are
//
//	m/44H/1022H/<network>H/<entity kind>H/<key kind>H/<index>H
//
// and every component is hardened. BIP44-like paths mirror the Olympia era
// wallets, m/44H/1022H/0H/0/<index>[H], where the last component was
// historically hardened by mistake, so both forms are accepted.
package derivation

import (
	"fmt"
	"strings"
)

// Component is one step of a path. Value never includes HardenedOffset.
type Component struct {
	Value    uint32
	Hardened bool
}

func Hardened(v uint32) Component {
	return Component{Value: v, Hardened: true}
}

func Unhardened(v uint32) Component {
	return Component{Value: v}
}

// Encoded returns the BIP32 child number, with the hardened bit applied.
func (c Component) Encoded() uint32 {
	if c.Hardened {
		return c.Value + HardenedOffset
	}
	return c.Value
}

func (c Component) String() string {
	if c.Hardened {
		return fmt.Sprintf("%dH", c.Value)
	}
	return fmt.Sprintf("%d", c.Value)
}

// Path is a derivation path. The set of implementations is closed:
// Cap26Path, BIP44LikePath and CustomPath.
type Path interface {
	Scheme() Scheme
	Components() []Component
	String() string

	isPath()
}

// Render formats p as m/... with hardened components marked H.
func Render(p Path) string {
	return renderComponents(p.Components())
}

func renderComponents(cs []Component) string {
	var b strings.Builder
	b.WriteString("m")
	for _, c := range cs {
		b.WriteByte('/')
		b.WriteString(c.String())
	}
	return b.String()
}

// IndexOf returns the entity index carried by p. Custom paths carry none.
func IndexOf(p Path) (Index, bool) {
	switch v := p.(type) {
	case Cap26Path:
		return v.Index, true
	case BIP44LikePath:
		return v.Index, true
	default:
		return 0, false
	}
}

// Equal compares two paths structurally.
func Equal(a, b Path) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Scheme() != b.Scheme() {
		return false
	}
	ac, bc := a.Components(), b.Components()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if ac[i] != bc[i] {
			return false
		}
	}
	return true
}

// Cap26Path is the default scheme for Babylon entities.
type Cap26Path struct {
	NetworkID  NetworkID
	EntityKind EntityKind
	KeyKind    KeyKind
	Index      Index
}

func (Cap26Path) isPath() {}

func (Cap26Path) Scheme() Scheme { return SchemeCAP26 }

func (p Cap26Path) Components() []Component {
	return []Component{
		Hardened(Purpose),
		Hardened(CoinType),
		Hardened(uint32(p.NetworkID)),
		Hardened(uint32(p.EntityKind)),
		Hardened(uint32(p.KeyKind)),
		Hardened(uint32(p.Index)),
	}
}

func (p Cap26Path) String() string { return Render(p) }

// Cap26PathFor builds a CAP26 path, rejecting values that could not be parsed
// back.
func Cap26PathFor(entityKind EntityKind, networkID NetworkID, index Index, keyKind KeyKind) (Cap26Path, error) {
	p := Cap26Path{
		NetworkID:  networkID,
		EntityKind: entityKind,
		KeyKind:    keyKind,
		Index:      index,
	}
	if err := p.check(); err != nil {
		return Cap26Path{}, err
	}
	return p, nil
}

func (p Cap26Path) check() error {
	return p.checkAs(p.String())
}

func (p Cap26Path) checkAs(raw string) error {
	if !p.EntityKind.Valid() {
		return pathErr(raw, ErrUnknownEntityKind, "%d", uint32(p.EntityKind))
	}
	if !p.KeyKind.Valid() {
		return pathErr(raw, ErrUnknownKeyKind, "%d", uint32(p.KeyKind))
	}
	if p.Index > MaxIndex {
		return pathErr(raw, ErrIndexOutOfRange, "%d", uint32(p.Index))
	}
	return nil
}

// BIP44LikePath is the legacy Olympia scheme m/44H/1022H/0H/0/<index>[H].
type BIP44LikePath struct {
	Index      Index
	HardenLast bool
}

func (BIP44LikePath) isPath() {}

func (BIP44LikePath) Scheme() Scheme { return SchemeBIP44Olympia }

func (p BIP44LikePath) Components() []Component {
	return []Component{
		Hardened(Purpose),
		Hardened(CoinType),
		Hardened(0),
		Unhardened(0),
		{Value: uint32(p.Index), Hardened: p.HardenLast},
	}
}

func (p BIP44LikePath) String() string { return Render(p) }

func NewBIP44LikePath(index Index, hardenLast bool) (BIP44LikePath, error) {
	if index > MaxIndex {
		return BIP44LikePath{}, &PathError{Path: fmt.Sprintf("m/44H/1022H/0H/0/%d", index), Err: ErrIndexOutOfRange}
	}
	return BIP44LikePath{Index: index, HardenLast: hardenLast}, nil
}

// CustomPath is an escape hatch for paths outside the two schemes.
type CustomPath struct {
	components []Component
}

func (CustomPath) isPath() {}

func (CustomPath) Scheme() Scheme { return SchemeCustom }

func (p CustomPath) Components() []Component {
	out := make([]Component, len(p.components))
	copy(out, p.components)
	return out
}

func (p CustomPath) String() string { return Render(p) }

// NewCustomPath builds a path from raw components.
func NewCustomPath(components ...Component) CustomPath {
	cs := make([]Component, len(components))
	copy(cs, components)
	return CustomPath{components: cs}
}

// GetIDPath is the fixed path m/44H/1022H/365H whose public key hashes to a
// factor source's identity.
func GetIDPath() CustomPath {
	return NewCustomPath(Hardened(Purpose), Hardened(CoinType), Hardened(GetIDComponent))
}

// IsGetIDPath reports whether p is the identity path.
func IsGetIDPath(p Path) bool {
	return Equal(p, GetIDPath())
}
