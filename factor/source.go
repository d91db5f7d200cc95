// Package factor defines factor sources, the credentials and devices able to
// produce signatures or key material, along with their identities and the
// keys they derive.
package factor

import (
	"fmt"
	"slices"
	"time"
)

// Flag marks a factor source. Flags are append-only in normal operation.
type Flag string

const (
	FlagDeletedByUser Flag = "deletedByUser"
	FlagMain          Flag = "main"
)

// Common holds the fields every factor source carries.
type Common struct {
	CryptoParameters CryptoParameters
	AddedOn          time.Time
	LastUsedOn       time.Time
	Flags            []Flag
}

func NewCommon(params CryptoParameters, at time.Time) Common {
	return Common{
		CryptoParameters: params.clone(),
		AddedOn:          at,
		LastUsedOn:       at,
	}
}

func (c Common) HasFlag(f Flag) bool {
	return slices.Contains(c.Flags, f)
}

// WithFlag returns a copy with f set. Setting a present flag is a no-op.
func (c Common) WithFlag(f Flag) Common {
	out := c.Clone()
	if !out.HasFlag(f) {
		out.Flags = append(out.Flags, f)
	}
	return out
}

func (c Common) WithoutFlag(f Flag) Common {
	out := c.Clone()
	out.Flags = slices.DeleteFunc(out.Flags, func(x Flag) bool { return x == f })
	return out
}

func (c Common) Clone() Common {
	return Common{
		CryptoParameters: c.CryptoParameters.clone(),
		AddedOn:          c.AddedOn,
		LastUsedOn:       c.LastUsedOn,
		Flags:            slices.Clone(c.Flags),
	}
}

// Source is a factor source. Implementations are value types; use WithCommon
// to obtain a modified copy.
type Source interface {
	ID() ID
	Kind() Kind
	Common() Common
	WithCommon(Common) Source

	isSource()
}

func IsMain(s Source) bool {
	return s.Common().HasFlag(FlagMain)
}

func IsDeleted(s Source) bool {
	return s.Common().HasFlag(FlagDeletedByUser)
}

// As projects s onto the concrete variant K.
func As[K Source](s Source) (K, error) {
	k, ok := s.(K)
	if !ok {
		var zero K
		return zero, fmt.Errorf("%w: %s is %s, not %T", ErrWrongKind, s.ID(), s.Kind(), zero)
	}
	return k, nil
}

// DeviceHint describes the phone or computer holding a device mnemonic.
type DeviceHint struct {
	Label             string
	Model             string
	MnemonicWordCount int
}

// Device is a mnemonic held in the host's secure storage.
type Device struct {
	FactorID ID
	Meta     Common
	Hint     DeviceHint
}

func NewDevice(hash [HashSize]byte, hint DeviceHint, params CryptoParameters, at time.Time) Device {
	return Device{
		FactorID: NewHashID(KindDevice, hash),
		Meta:     NewCommon(params, at),
		Hint:     hint,
	}
}

func (Device) isSource()        {}
func (d Device) ID() ID         { return d.FactorID }
func (Device) Kind() Kind       { return KindDevice }
func (d Device) Common() Common { return d.Meta.Clone() }
func (d Device) WithCommon(c Common) Source {
	d.Meta = c.Clone()
	return d
}

// LedgerModel is the Ledger device family.
type LedgerModel string

const (
	LedgerNanoS     LedgerModel = "nanoS"
	LedgerNanoSPlus LedgerModel = "nanoS+"
	LedgerNanoX     LedgerModel = "nanoX"
)

type LedgerHint struct {
	Label string
	Model LedgerModel
}

// LedgerHardwareWallet is a Ledger device running the Babylon app.
type LedgerHardwareWallet struct {
	FactorID ID
	Meta     Common
	Hint     LedgerHint
}

func NewLedgerHardwareWallet(hash [HashSize]byte, hint LedgerHint, params CryptoParameters, at time.Time) LedgerHardwareWallet {
	return LedgerHardwareWallet{
		FactorID: NewHashID(KindLedgerHardwareWallet, hash),
		Meta:     NewCommon(params, at),
		Hint:     hint,
	}
}

func (LedgerHardwareWallet) isSource()        {}
func (l LedgerHardwareWallet) ID() ID         { return l.FactorID }
func (LedgerHardwareWallet) Kind() Kind       { return KindLedgerHardwareWallet }
func (l LedgerHardwareWallet) Common() Common { return l.Meta.Clone() }
func (l LedgerHardwareWallet) WithCommon(c Common) Source {
	l.Meta = c.Clone()
	return l
}

type OffDeviceMnemonicHint struct {
	Label     string
	WordCount int
}

// OffDeviceMnemonic is a mnemonic the user keeps a written copy of outside
// the app. Like a device mnemonic it is stored encrypted in the keystore so
// keys can be derived locally; it signs before device sources.
type OffDeviceMnemonic struct {
	FactorID ID
	Meta     Common
	Hint     OffDeviceMnemonicHint
}

func NewOffDeviceMnemonic(hash [HashSize]byte, hint OffDeviceMnemonicHint, params CryptoParameters, at time.Time) OffDeviceMnemonic {
	return OffDeviceMnemonic{
		FactorID: NewHashID(KindOffDeviceMnemonic, hash),
		Meta:     NewCommon(params, at),
		Hint:     hint,
	}
}

func (OffDeviceMnemonic) isSource()        {}
func (o OffDeviceMnemonic) ID() ID         { return o.FactorID }
func (OffDeviceMnemonic) Kind() Kind       { return KindOffDeviceMnemonic }
func (o OffDeviceMnemonic) Common() Common { return o.Meta.Clone() }
func (o OffDeviceMnemonic) WithCommon(c Common) Source {
	o.Meta = c.Clone()
	return o
}

type Contact struct {
	Name         string
	EmailAddress string
}

// TrustedContact is another person's account, anchored by its address.
type TrustedContact struct {
	FactorID ID
	Meta     Common
	Contact  Contact
}

func NewTrustedContact(accountAddress string, contact Contact, params CryptoParameters, at time.Time) TrustedContact {
	return TrustedContact{
		FactorID: NewAddressID(KindTrustedContact, accountAddress),
		Meta:     NewCommon(params, at),
		Contact:  contact,
	}
}

func (TrustedContact) isSource()        {}
func (t TrustedContact) ID() ID         { return t.FactorID }
func (TrustedContact) Kind() Kind       { return KindTrustedContact }
func (t TrustedContact) Common() Common { return t.Meta.Clone() }
func (t TrustedContact) WithCommon(c Common) Source {
	t.Meta = c.Clone()
	return t
}

// SecurityQuestions seals a mnemonic behind answers to personal questions.
// Only the questions are recorded here.
type SecurityQuestions struct {
	FactorID  ID
	Meta      Common
	Questions []string
}

func NewSecurityQuestions(hash [HashSize]byte, questions []string, params CryptoParameters, at time.Time) SecurityQuestions {
	return SecurityQuestions{
		FactorID:  NewHashID(KindSecurityQuestions, hash),
		Meta:      NewCommon(params, at),
		Questions: slices.Clone(questions),
	}
}

func (SecurityQuestions) isSource()        {}
func (s SecurityQuestions) ID() ID         { return s.FactorID }
func (SecurityQuestions) Kind() Kind       { return KindSecurityQuestions }
func (s SecurityQuestions) Common() Common { return s.Meta.Clone() }
func (s SecurityQuestions) WithCommon(c Common) Source {
	s.Meta = c.Clone()
	s.Questions = slices.Clone(s.Questions)
	return s
}

type PasswordHint struct {
	Label string
}

// Password is a key derived from a user chosen password.
type Password struct {
	FactorID ID
	Meta     Common
	Hint     PasswordHint
}

func NewPassword(hash [HashSize]byte, hint PasswordHint, params CryptoParameters, at time.Time) Password {
	return Password{
		FactorID: NewHashID(KindPassword, hash),
		Meta:     NewCommon(params, at),
		Hint:     hint,
	}
}

func (Password) isSource()        {}
func (p Password) ID() ID         { return p.FactorID }
func (Password) Kind() Kind       { return KindPassword }
func (p Password) Common() Common { return p.Meta.Clone() }
func (p Password) WithCommon(c Common) Source {
	p.Meta = c.Clone()
	return p
}

type ArculusHint struct {
	Label string
	Model string
}

// ArculusCard is an NFC smart card.
type ArculusCard struct {
	FactorID ID
	Meta     Common
	Hint     ArculusHint
}

func NewArculusCard(hash [HashSize]byte, hint ArculusHint, params CryptoParameters, at time.Time) ArculusCard {
	return ArculusCard{
		FactorID: NewHashID(KindArculusCard, hash),
		Meta:     NewCommon(params, at),
		Hint:     hint,
	}
}

func (ArculusCard) isSource()        {}
func (a ArculusCard) ID() ID         { return a.FactorID }
func (ArculusCard) Kind() Kind       { return KindArculusCard }
func (a ArculusCard) Common() Common { return a.Meta.Clone() }
func (a ArculusCard) WithCommon(c Common) Source {
	a.Meta = c.Clone()
	return a
}
