package wallet

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"fmt"
	"strings"

	slip10 "github.com/anyproto/go-slip10"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"golang.org/x/crypto/blake2b"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/factor"
)

// DeriveKey derives a secp256k1 private key from a mnemonic at the given path.
// Every component is walked with BIP32, hardened or not, so this serves the
// legacy Olympia scheme m/44'/1022'/0'/0/{index}['].
func DeriveKey(mwp MnemonicWithPassphrase, path derivation.Path) (*ecdsa.PrivateKey, error) {
	seed, err := mwp.Seed()
	if err != nil {
		return nil, err
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("creating master key: %w", err)
	}

	for _, c := range path.Components() {
		key, err = key.NewChildKey(c.Encoded())
		if err != nil {
			return nil, fmt.Errorf("deriving child %s of %s: %w", c, path, err)
		}
	}

	privateKey, err := crypto.ToECDSA(key.Key)
	if err != nil {
		return nil, fmt.Errorf("converting to ECDSA: %w", err)
	}

	return privateKey, nil
}

// DeriveEd25519Key derives an ed25519 key pair with SLIP-10. SLIP-10 only
// defines hardened derivation for ed25519.
func DeriveEd25519Key(mwp MnemonicWithPassphrase, path derivation.Path) (ed25519.PrivateKey, error) {
	slipPath, err := slip10Path(path)
	if err != nil {
		return nil, err
	}

	seed, err := mwp.Seed()
	if err != nil {
		return nil, err
	}

	node, err := slip10.DeriveForPath(slipPath, seed)
	if err != nil {
		return nil, fmt.Errorf("deriving %s: %w", path, err)
	}

	_, privBytes := node.Keypair()
	return ed25519.PrivateKey(privBytes), nil
}

// DerivePublicKey derives the public key at path on the given curve.
func DerivePublicKey(mwp MnemonicWithPassphrase, curve factor.Curve, path derivation.Path) (factor.PublicKey, error) {
	switch curve {
	case factor.CurveEd25519:
		priv, err := DeriveEd25519Key(mwp, path)
		if err != nil {
			return factor.PublicKey{}, err
		}
		return factor.NewPublicKey(curve, priv.Public().(ed25519.PublicKey))
	case factor.CurveSecp256k1:
		priv, err := DeriveKey(mwp, path)
		if err != nil {
			return factor.PublicKey{}, err
		}
		return factor.NewPublicKey(curve, crypto.CompressPubkey(&priv.PublicKey))
	default:
		return factor.PublicKey{}, fmt.Errorf("unsupported curve %q", curve)
	}
}

// CurveFor returns the curve a path's scheme derives on: Olympia paths use
// secp256k1, everything else curve25519.
func CurveFor(path derivation.Path) factor.Curve {
	if path.Scheme() == derivation.SchemeBIP44Olympia {
		return factor.CurveSecp256k1
	}
	return factor.CurveEd25519
}

// DeriveHDPublicKey derives the public key at path on the path's own curve.
func DeriveHDPublicKey(mwp MnemonicWithPassphrase, path derivation.Path) (factor.HDPublicKey, error) {
	pub, err := DerivePublicKey(mwp, CurveFor(path), path)
	if err != nil {
		return factor.HDPublicKey{}, err
	}
	return factor.HDPublicKey{PublicKey: pub, Path: path}, nil
}

// FactorSourceID computes the content-derived identity of a mnemonic: the
// blake2b-256 hash of the ed25519 public key at m/44H/1022H/365H. The id
// depends only on the mnemonic and passphrase.
func FactorSourceID(mwp MnemonicWithPassphrase, kind factor.Kind) (factor.ID, error) {
	pub, err := DerivePublicKey(mwp, factor.CurveEd25519, derivation.GetIDPath())
	if err != nil {
		return factor.ID{}, fmt.Errorf("deriving identity key: %w", err)
	}
	return factor.NewHashID(kind, blake2b.Sum256(pub.Bytes)), nil
}

func slip10Path(path derivation.Path) (string, error) {
	var b strings.Builder
	b.WriteString("m")
	for _, c := range path.Components() {
		if !c.Hardened {
			return "", fmt.Errorf("%w: %s", ErrNonHardenedEd25519, path)
		}
		fmt.Fprintf(&b, "/%d'", c.Value)
	}
	return b.String(), nil
}
