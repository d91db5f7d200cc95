package factor

import "fmt"

// Kind is the kind of a factor source.
type Kind string

const (
	KindDevice               Kind = "device"
	KindLedgerHardwareWallet Kind = "ledgerHQHardwareWallet"
	KindOffDeviceMnemonic    Kind = "offDeviceMnemonic"
	KindTrustedContact       Kind = "trustedContact"
	KindSecurityQuestions    Kind = "securityQuestions"
	KindPassword             Kind = "password"
	KindArculusCard          Kind = "arculusCard"
)

// Kinds lists every kind in signing order.
var Kinds = []Kind{
	KindLedgerHardwareWallet,
	KindArculusCard,
	KindOffDeviceMnemonic,
	KindSecurityQuestions,
	KindPassword,
	KindTrustedContact,
	KindDevice,
}

// SigningOrder ranks kinds for sequential signing. External hardware comes
// first; device is always last so decrypted device mnemonics can be evicted
// as soon as the last signature is produced.
func (k Kind) SigningOrder() int {
	for i, kind := range Kinds {
		if kind == k {
			return i
		}
	}
	return len(Kinds)
}

func (k Kind) Valid() bool {
	return k.SigningOrder() < len(Kinds)
}

// IsMnemonicBased reports whether sources of this kind are backed by a BIP39
// mnemonic the wallet may hold.
func (k Kind) IsMnemonicBased() bool {
	return k == KindDevice || k == KindOffDeviceMnemonic
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown factor source kind %q", s)
	}
	return k, nil
}
