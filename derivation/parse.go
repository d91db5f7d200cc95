package derivation

import (
	"strconv"
	"strings"
)

// Parse reads a path in any supported scheme. Six components are read as
// CAP26, five as BIP44-like and three must be the identity path. Nothing is
// coerced: any deviation is a *PathError.
func Parse(raw string) (Path, error) {
	cs, err := splitComponents(raw)
	if err != nil {
		return nil, err
	}
	switch len(cs) {
	case 6:
		p, err := cap26FromComponents(raw, cs)
		if err != nil {
			return nil, err
		}
		return p, nil
	case 5:
		p, err := bip44FromComponents(raw, cs)
		if err != nil {
			return nil, err
		}
		return p, nil
	case 3:
		p := NewCustomPath(cs...)
		if !IsGetIDPath(p) {
			return nil, pathErr(raw, ErrComponentCount, "only the identity path has 3 components")
		}
		return p, nil
	default:
		return nil, pathErr(raw, ErrComponentCount, "got %d", len(cs))
	}
}

// ParseCap26 reads raw strictly as a CAP26 path.
func ParseCap26(raw string) (Cap26Path, error) {
	cs, err := splitComponents(raw)
	if err != nil {
		return Cap26Path{}, err
	}
	return cap26FromComponents(raw, cs)
}

// ParseBIP44Like reads raw strictly as a legacy Olympia path.
func ParseBIP44Like(raw string) (BIP44LikePath, error) {
	cs, err := splitComponents(raw)
	if err != nil {
		return BIP44LikePath{}, err
	}
	return bip44FromComponents(raw, cs)
}

// ParseCustom reads any syntactically valid path without scheme checks.
func ParseCustom(raw string) (CustomPath, error) {
	cs, err := splitComponents(raw)
	if err != nil {
		return CustomPath{}, err
	}
	return NewCustomPath(cs...), nil
}

// Validate checks that p is a well formed CAP26 path for the expected entity
// kind. Non-CAP26 paths are accepted only for accounts, the sole entity kind
// Olympia ever derived.
func Validate(p Path, expected EntityKind) error {
	switch v := p.(type) {
	case Cap26Path:
		if err := v.check(); err != nil {
			return err
		}
		if v.EntityKind != expected {
			return pathErr(v.String(), ErrEntityKindMismatch, "path is for %s, expected %s", v.EntityKind, expected)
		}
		return nil
	case BIP44LikePath:
		if expected != EntityKindAccount {
			return pathErr(v.String(), ErrEntityKindMismatch, "bip44-like paths only derive accounts, expected %s", expected)
		}
		if v.Index > MaxIndex {
			return pathErr(v.String(), ErrIndexOutOfRange, "%d", uint32(v.Index))
		}
		return nil
	case CustomPath:
		return pathErr(v.String(), ErrEntityKindMismatch, "custom paths do not belong to an entity")
	default:
		return &PathError{Path: "<nil>", Err: ErrComponentCount}
	}
}

func cap26FromComponents(raw string, cs []Component) (Cap26Path, error) {
	if len(cs) != 6 {
		return Cap26Path{}, pathErr(raw, ErrComponentCount, "cap26 needs 6, got %d", len(cs))
	}
	for i, c := range cs {
		if !c.Hardened {
			return Cap26Path{}, pathErr(raw, ErrNonHardenedComponent, "component %d (%s)", i+1, c)
		}
	}
	if cs[0].Value != Purpose {
		return Cap26Path{}, pathErr(raw, ErrPurpose, "got %d", cs[0].Value)
	}
	if cs[1].Value != CoinType {
		return Cap26Path{}, pathErr(raw, ErrCoinType, "got %d", cs[1].Value)
	}
	if cs[2].Value > 0xff {
		return Cap26Path{}, pathErr(raw, ErrNetworkIDOverflow, "got %d", cs[2].Value)
	}
	p := Cap26Path{
		NetworkID:  NetworkID(cs[2].Value),
		EntityKind: EntityKind(cs[3].Value),
		KeyKind:    KeyKind(cs[4].Value),
		Index:      Index(cs[5].Value),
	}
	if err := p.checkAs(raw); err != nil {
		return Cap26Path{}, err
	}
	return p, nil
}

func bip44FromComponents(raw string, cs []Component) (BIP44LikePath, error) {
	if len(cs) != 5 {
		return BIP44LikePath{}, pathErr(raw, ErrComponentCount, "bip44-like needs 5, got %d", len(cs))
	}
	for i := 0; i < 3; i++ {
		if !cs[i].Hardened {
			return BIP44LikePath{}, pathErr(raw, ErrNonHardenedComponent, "component %d (%s)", i+1, cs[i])
		}
	}
	if cs[0].Value != Purpose {
		return BIP44LikePath{}, pathErr(raw, ErrPurpose, "got %d", cs[0].Value)
	}
	if cs[1].Value != CoinType {
		return BIP44LikePath{}, pathErr(raw, ErrCoinType, "got %d", cs[1].Value)
	}
	if cs[2].Value != 0 {
		return BIP44LikePath{}, pathErr(raw, ErrLegacyStructure, "account component must be 0H, got %s", cs[2])
	}
	if cs[3] != Unhardened(0) {
		return BIP44LikePath{}, pathErr(raw, ErrLegacyStructure, "change component must be 0, got %s", cs[3])
	}
	return BIP44LikePath{Index: Index(cs[4].Value), HardenLast: cs[4].Hardened}, nil
}

func splitComponents(raw string) ([]Component, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if parts[0] != "m" && parts[0] != "M" {
		return nil, pathErr(raw, ErrMissingRoot, "got %q", parts[0])
	}
	parts = parts[1:]
	if len(parts) == 0 {
		return nil, pathErr(raw, ErrComponentCount, "no components after root")
	}
	cs := make([]Component, 0, len(parts))
	for i, part := range parts {
		c, err := parseComponent(part)
		if err != nil {
			return nil, pathErr(raw, err, "component %d (%q)", i+1, part)
		}
		cs = append(cs, c)
	}
	return cs, nil
}

func parseComponent(s string) (Component, error) {
	hardened := false
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'H', 'h', '\'':
			hardened = true
			s = s[:n-1]
		}
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return Component{}, ErrMalformedComponent
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return Component{}, ErrMalformedComponent
	}
	if uint32(v) >= HardenedOffset {
		return Component{}, ErrIndexOutOfRange
	}
	return Component{Value: uint32(v), Hardened: hardened}, nil
}
