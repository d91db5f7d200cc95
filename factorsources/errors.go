package factorsources

import "errors"

var (
	ErrEntityNotFound    = errors.New("entity not found")
	ErrMnemonicNotFound  = errors.New("no mnemonic stored for factor source")
	ErrNotMnemonicBased  = errors.New("factor source kind is not mnemonic based")
	ErrNoHardwareDeriver = errors.New("no hardware deriver configured")
	ErrCannotDerive      = errors.New("factor source kind cannot derive public keys")
)
