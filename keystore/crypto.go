package keystore

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/RaghavSood/factorkit/wallet"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

// Params are the scrypt cost parameters used to turn the keystore secret into
// a per-record encryption key.
type Params struct {
	N int
	R int
	P int
}

// DefaultParams are the interactive-login costs recommended for scrypt.
var DefaultParams = Params{N: 1 << 15, R: 8, P: 1}

type sealed struct {
	salt       []byte
	nonce      []byte
	ciphertext []byte
	params     Params
}

type plaintext struct {
	Mnemonic   string `json:"mnemonic"`
	Passphrase string `json:"passphrase"`
}

func deriveKey(secret, salt []byte, params Params) (*[keySize]byte, error) {
	raw, err := scrypt.Key(secret, salt, params.N, params.R, params.P, keySize)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], raw)
	clear(raw)
	return &key, nil
}

func seal(secret []byte, params Params, mwp wallet.MnemonicWithPassphrase) (sealed, error) {
	msg, err := json.Marshal(plaintext{Mnemonic: mwp.Mnemonic, Passphrase: mwp.Passphrase})
	if err != nil {
		return sealed{}, fmt.Errorf("encoding mnemonic: %w", err)
	}
	defer clear(msg)

	s := sealed{
		salt:   make([]byte, saltSize),
		nonce:  make([]byte, nonceSize),
		params: params,
	}
	if _, err := rand.Read(s.salt); err != nil {
		return sealed{}, fmt.Errorf("generating salt: %w", err)
	}
	if _, err := rand.Read(s.nonce); err != nil {
		return sealed{}, fmt.Errorf("generating nonce: %w", err)
	}

	key, err := deriveKey(secret, s.salt, params)
	if err != nil {
		return sealed{}, err
	}
	defer clear(key[:])

	var nonce [nonceSize]byte
	copy(nonce[:], s.nonce)
	s.ciphertext = secretbox.Seal(nil, msg, &nonce, key)
	return s, nil
}

func open(secret []byte, s sealed) (wallet.MnemonicWithPassphrase, error) {
	if len(s.nonce) != nonceSize {
		return wallet.MnemonicWithPassphrase{}, ErrDecrypt
	}

	key, err := deriveKey(secret, s.salt, s.params)
	if err != nil {
		return wallet.MnemonicWithPassphrase{}, err
	}
	defer clear(key[:])

	var nonce [nonceSize]byte
	copy(nonce[:], s.nonce)
	msg, ok := secretbox.Open(nil, s.ciphertext, &nonce, key)
	if !ok {
		return wallet.MnemonicWithPassphrase{}, ErrDecrypt
	}
	defer clear(msg)

	var p plaintext
	if err := json.Unmarshal(msg, &p); err != nil {
		return wallet.MnemonicWithPassphrase{}, fmt.Errorf("decoding mnemonic: %w", err)
	}
	return wallet.MnemonicWithPassphrase{Mnemonic: p.Mnemonic, Passphrase: p.Passphrase}, nil
}
