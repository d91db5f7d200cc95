package factor

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/RaghavSood/factorkit/derivation"
)

// Curve is an elliptic curve a factor source can derive keys on.
type Curve string

const (
	CurveEd25519   Curve = "curve25519"
	CurveSecp256k1 Curve = "secp256k1"
)

// PublicKey is a raw public key: 32 bytes for ed25519, 33 bytes compressed
// for secp256k1.
type PublicKey struct {
	Curve Curve
	Bytes []byte
}

func NewPublicKey(curve Curve, b []byte) (PublicKey, error) {
	want := 0
	switch curve {
	case CurveEd25519:
		want = 32
	case CurveSecp256k1:
		want = 33
	default:
		return PublicKey{}, fmt.Errorf("unknown curve %q", curve)
	}
	if len(b) != want {
		return PublicKey{}, fmt.Errorf("%s public key must be %d bytes, got %d", curve, want, len(b))
	}
	return PublicKey{Curve: curve, Bytes: bytes.Clone(b)}, nil
}

func (k PublicKey) Equal(o PublicKey) bool {
	return k.Curve == o.Curve && bytes.Equal(k.Bytes, o.Bytes)
}

func (k PublicKey) Hex() string {
	return hex.EncodeToString(k.Bytes)
}

func (k PublicKey) String() string {
	return fmt.Sprintf("%s:%s", k.Curve, k.Hex())
}

// HDPublicKey is a public key together with the path it was derived at.
type HDPublicKey struct {
	PublicKey PublicKey
	Path      derivation.Path
}

func (k HDPublicKey) Equal(o HDPublicKey) bool {
	return k.PublicKey.Equal(o.PublicKey) && derivation.Equal(k.Path, o.Path)
}

// Instance is a concrete key derived from one factor source for one entity.
type Instance struct {
	FactorSourceID ID
	Key            HDPublicKey
}

func (i Instance) Equal(o Instance) bool {
	return i.FactorSourceID == o.FactorSourceID && i.Key.Equal(o.Key)
}
