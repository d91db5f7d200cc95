// Package keystore keeps the mnemonics of mnemonic-based factor sources in
// secure storage.
package keystore

import (
	"context"
	"errors"

	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/wallet"
)

var (
	ErrAlreadyStored = errors.New("mnemonic already stored")
	ErrDecrypt       = errors.New("decrypting mnemonic: wrong secret or corrupted record")
	ErrEmptySecret   = errors.New("keystore secret is empty")
)

// PrivateHDFactorSource pairs a factor source with the mnemonic behind it.
type PrivateHDFactorSource struct {
	Mnemonic wallet.MnemonicWithPassphrase
	Source   factor.Source
}

func (p PrivateHDFactorSource) ID() factor.ID {
	return p.Source.ID()
}

// Storage is the secure storage contract for mnemonics.
type Storage interface {
	SaveMnemonic(ctx context.Context, src PrivateHDFactorSource) error
	// LoadMnemonic returns nil, nil when no mnemonic is stored for id.
	LoadMnemonic(ctx context.Context, id factor.ID) (*wallet.MnemonicWithPassphrase, error)
	DeleteMnemonic(ctx context.Context, id factor.ID) error
	ContainsMnemonic(ctx context.Context, id factor.ID) (bool, error)
}
