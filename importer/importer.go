// Package importer drives the import of a mnemonic typed in by the user: word
// entry, checksum validation and the spot check binding it to a known factor
// source.
package importer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/profile"
	"github.com/RaghavSood/factorkit/wallet"
)

var (
	ErrNotReady          = errors.New("mnemonic is not ready for a spot check")
	ErrSpotCheckMismatch = errors.New("mnemonic does not match the expected factor source")
	ErrPublicKeyMismatch = errors.New("mnemonic does not derive the recorded public key")
	ErrWordIndex         = errors.New("word index out of range")
)

type State int

const (
	Incomplete State = iota
	Invalid
	ReadyForSpotCheck
	Confirmed
	SpotCheckFailed
)

func (s State) String() string {
	switch s {
	case Incomplete:
		return "incomplete"
	case Invalid:
		return "invalid"
	case ReadyForSpotCheck:
		return "readyForSpotCheck"
	case Confirmed:
		return "confirmed"
	case SpotCheckFailed:
		return "spotCheckFailed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Attempt is one import session. It is not safe for concurrent use.
type Attempt struct {
	words      []string
	passphrase string
	state      State
}

func NewAttempt(wordCount int) (*Attempt, error) {
	if !isWordCount(wordCount) {
		return nil, fmt.Errorf("%w: %d", wallet.ErrWordCount, wordCount)
	}
	return &Attempt{words: make([]string, wordCount)}, nil
}

func isWordCount(n int) bool {
	for _, c := range wallet.WordCounts {
		if c == n {
			return true
		}
	}
	return false
}

// SetWord sets word i (zero based) and re-evaluates the attempt.
func (a *Attempt) SetWord(i int, w string) (State, error) {
	if i < 0 || i >= len(a.words) {
		return a.state, fmt.Errorf("%w: %d of %d", ErrWordIndex, i, len(a.words))
	}
	a.words[i] = strings.ToLower(strings.TrimSpace(w))
	return a.Evaluate(), nil
}

// SetPhrase fills every word from a pasted phrase. Extra words are an error.
func (a *Attempt) SetPhrase(phrase string) (State, error) {
	words := strings.Fields(wallet.NormalizePhrase(phrase))
	if len(words) > len(a.words) {
		return a.state, fmt.Errorf("%w: got %d words, want %d", ErrWordIndex, len(words), len(a.words))
	}
	clear(a.words)
	copy(a.words, words)
	return a.Evaluate(), nil
}

func (a *Attempt) SetPassphrase(p string) State {
	a.passphrase = p
	return a.Evaluate()
}

func (a *Attempt) State() State {
	return a.state
}

func (a *Attempt) Words() []string {
	return append([]string(nil), a.words...)
}

// Evaluate recomputes the state from the current words.
func (a *Attempt) Evaluate() State {
	a.state = a.evaluate()
	return a.state
}

func (a *Attempt) evaluate() State {
	for _, w := range a.words {
		if w == "" {
			return Incomplete
		}
	}
	if _, err := wallet.ParseMnemonic(strings.Join(a.words, " "), a.passphrase); err != nil {
		return Invalid
	}
	return ReadyForSpotCheck
}

// MnemonicWithPassphrase returns the entered mnemonic once its checksum is
// valid.
func (a *Attempt) MnemonicWithPassphrase() (wallet.MnemonicWithPassphrase, error) {
	if a.state == Incomplete || a.state == Invalid {
		return wallet.MnemonicWithPassphrase{}, fmt.Errorf("%w: %s", ErrNotReady, a.state)
	}
	return wallet.ParseMnemonic(strings.Join(a.words, " "), a.passphrase)
}

// Suggestions returns the BIP39 words starting with prefix.
func Suggestions(prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}
	list := wallet.WordList()
	start := sort.SearchStrings(list, prefix)
	var out []string
	for _, w := range list[start:] {
		if !strings.HasPrefix(w, prefix) {
			break
		}
		out = append(out, w)
	}
	return out
}

// SpotCheck confirms that the entered mnemonic is the one behind expected and
// that it re-derives every key recorded for entities it controls. A failed
// check moves the attempt to SpotCheckFailed; cancellation leaves the state
// unchanged.
func (a *Attempt) SpotCheck(ctx context.Context, expected factor.ID, entities []profile.Entity) error {
	mwp, err := a.MnemonicWithPassphrase()
	if err != nil {
		return err
	}

	id, err := wallet.FactorSourceID(mwp, expected.Kind)
	if err != nil {
		return fmt.Errorf("computing factor source id: %w", err)
	}
	if id != expected {
		a.state = SpotCheckFailed
		return fmt.Errorf("%w: got %s, want %s", ErrSpotCheckMismatch, id, expected)
	}

	if err := ValidatePublicKeys(ctx, mwp, id, entities); err != nil {
		if ctx.Err() == nil {
			a.state = SpotCheckFailed
		}
		return err
	}

	a.state = Confirmed
	return nil
}

// ValidatePublicKeys re-derives every instance of entities controlled by id
// and compares it with the recorded public key. All instances must match.
func ValidatePublicKeys(ctx context.Context, mwp wallet.MnemonicWithPassphrase, id factor.ID, entities []profile.Entity) error {
	controls := make([]profile.Unsecured, len(entities))
	for i, e := range entities {
		control, err := e.UnsecuredControl()
		if err != nil {
			return err
		}
		controls[i] = control
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, e := range entities {
		e := e
		for _, instance := range controls[i].Instances() {
			if instance.FactorSourceID != id {
				continue
			}
			instance := instance
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				recorded := instance.Key
				derived, err := wallet.DerivePublicKey(mwp, recorded.PublicKey.Curve, recorded.Path)
				if err != nil {
					return fmt.Errorf("deriving %s for %s: %w", recorded.Path, e.Address, err)
				}
				if !derived.Equal(recorded.PublicKey) {
					return fmt.Errorf("%w: %s at %s", ErrPublicKeyMismatch, e.Address, recorded.Path)
				}
				return nil
			})
		}
	}

	return g.Wait()
}
