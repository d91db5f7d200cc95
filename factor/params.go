package factor

import (
	"slices"

	"github.com/RaghavSood/factorkit/derivation"
)

// CryptoParameters lists the curves and path schemes a factor source has been
// used with. It never affects the source's identity.
type CryptoParameters struct {
	Curves  []Curve
	Schemes []derivation.Scheme
}

// Babylon supports curve25519 keys on CAP26 paths.
func Babylon() CryptoParameters {
	return CryptoParameters{
		Curves:  []Curve{CurveEd25519},
		Schemes: []derivation.Scheme{derivation.SchemeCAP26},
	}
}

// Olympia supports secp256k1 keys on legacy BIP44-like paths.
func Olympia() CryptoParameters {
	return CryptoParameters{
		Curves:  []Curve{CurveSecp256k1},
		Schemes: []derivation.Scheme{derivation.SchemeBIP44Olympia},
	}
}

func BabylonOlympiaCompatible() CryptoParameters {
	return Babylon().Union(Olympia())
}

func (p CryptoParameters) SupportsCurve(c Curve) bool {
	return slices.Contains(p.Curves, c)
}

func (p CryptoParameters) SupportsScheme(s derivation.Scheme) bool {
	return slices.Contains(p.Schemes, s)
}

// Supports reports whether every curve and scheme of o is already in p.
func (p CryptoParameters) Supports(o CryptoParameters) bool {
	for _, c := range o.Curves {
		if !p.SupportsCurve(c) {
			return false
		}
	}
	for _, s := range o.Schemes {
		if !p.SupportsScheme(s) {
			return false
		}
	}
	return true
}

// Union appends the members of o missing from p, keeping p's order.
func (p CryptoParameters) Union(o CryptoParameters) CryptoParameters {
	out := p.clone()
	for _, c := range o.Curves {
		if !out.SupportsCurve(c) {
			out.Curves = append(out.Curves, c)
		}
	}
	for _, s := range o.Schemes {
		if !out.SupportsScheme(s) {
			out.Schemes = append(out.Schemes, s)
		}
	}
	return out
}

func (p CryptoParameters) clone() CryptoParameters {
	return CryptoParameters{
		Curves:  slices.Clone(p.Curves),
		Schemes: slices.Clone(p.Schemes),
	}
}
