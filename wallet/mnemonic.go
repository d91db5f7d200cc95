package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

var (
	ErrInvalidMnemonic    = errors.New("invalid mnemonic")
	ErrWordCount          = errors.New("unsupported mnemonic word count")
	ErrNonHardenedEd25519 = errors.New("ed25519 derivation requires every component to be hardened")
)

// entropyBits maps supported BIP39 word counts to entropy sizes.
var entropyBits = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// WordCounts lists the supported mnemonic lengths, shortest first.
var WordCounts = []int{12, 15, 18, 21, 24}

// MnemonicWithPassphrase is the secret behind a mnemonic-based factor source.
// Passphrase is the optional BIP39 "25th word".
type MnemonicWithPassphrase struct {
	Mnemonic   string
	Passphrase string
}

// NewMnemonic generates a fresh mnemonic of the given length with no passphrase.
func NewMnemonic(wordCount int) (MnemonicWithPassphrase, error) {
	bits, ok := entropyBits[wordCount]
	if !ok {
		return MnemonicWithPassphrase{}, fmt.Errorf("%w: %d", ErrWordCount, wordCount)
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return MnemonicWithPassphrase{}, fmt.Errorf("generating entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return MnemonicWithPassphrase{}, fmt.Errorf("generating mnemonic: %w", err)
	}

	return MnemonicWithPassphrase{Mnemonic: mnemonic}, nil
}

// ParseMnemonic normalizes phrase and checks its word count and checksum.
func ParseMnemonic(phrase, passphrase string) (MnemonicWithPassphrase, error) {
	normalized := NormalizePhrase(phrase)
	words := strings.Fields(normalized)
	if _, ok := entropyBits[len(words)]; !ok {
		return MnemonicWithPassphrase{}, fmt.Errorf("%w: %d", ErrWordCount, len(words))
	}
	if !bip39.IsMnemonicValid(normalized) {
		return MnemonicWithPassphrase{}, ErrInvalidMnemonic
	}
	return MnemonicWithPassphrase{Mnemonic: normalized, Passphrase: passphrase}, nil
}

// NormalizePhrase lower-cases phrase and collapses whitespace.
func NormalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// Seed returns the BIP39 seed. The mnemonic is validated first so a typo never
// silently yields a different wallet.
func (m MnemonicWithPassphrase) Seed() ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(m.Mnemonic, m.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return seed, nil
}

func (m MnemonicWithPassphrase) WordCount() int {
	return len(strings.Fields(m.Mnemonic))
}

func (m MnemonicWithPassphrase) Words() []string {
	return strings.Fields(m.Mnemonic)
}

// IsWord reports whether w is in the BIP39 English word list.
func IsWord(w string) bool {
	_, ok := bip39.GetWordIndex(w)
	return ok
}

// WordList returns the BIP39 English word list.
func WordList() []string {
	return bip39.GetWordList()
}
