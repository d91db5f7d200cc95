package factor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaghavSood/factorkit/derivation"
)

func hashOf(b byte) [HashSize]byte {
	var h [HashSize]byte
	for i := range h {
		h[i] = b
	}
	return h
}

func TestIDStringRoundTrip(t *testing.T) {
	ids := []ID{
		NewHashID(KindDevice, hashOf(0xab)),
		NewHashID(KindLedgerHardwareWallet, hashOf(0x01)),
		NewAddressID(KindTrustedContact, "account_tdx_2_1abc"),
		NewAddressID(KindTrustedContact, strings.Repeat("ab", HashSize)),
	}
	for _, id := range ids {
		parsed, err := ParseID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}

	_, err := ParseID("device")
	assert.Error(t, err)
	_, err = ParseID("nonsense:abcd")
	assert.Error(t, err)
	_, err = ParseID("device:hash:abcd")
	assert.Error(t, err)
	_, err = ParseID("device:" + strings.Repeat("ab", HashSize))
	assert.Error(t, err)
}

func TestIDStringMarksScheme(t *testing.T) {
	body := strings.Repeat("cd", HashSize)
	addr := NewAddressID(KindTrustedContact, body)
	assert.Equal(t, "trustedContact:addr:"+body, addr.String())

	parsed, err := ParseID(addr.String())
	require.NoError(t, err)
	assert.False(t, parsed.IsHash())
	assert.Equal(t, body, parsed.Address)

	assert.Equal(t, "device:hash:"+body, NewHashID(KindDevice, hashOf(0xcd)).String())
}

func TestSigningOrderPutsDeviceLast(t *testing.T) {
	assert.Equal(t, 0, KindLedgerHardwareWallet.SigningOrder())
	assert.Equal(t, 1, KindArculusCard.SigningOrder())
	for _, k := range Kinds {
		if k == KindDevice {
			continue
		}
		assert.Less(t, k.SigningOrder(), KindDevice.SigningOrder(), k)
	}
	assert.Less(t, KindOffDeviceMnemonic.SigningOrder(), KindPassword.SigningOrder())
	assert.False(t, Kind("bogus").Valid())
}

func TestCryptoParametersUnion(t *testing.T) {
	b := Babylon()
	assert.False(t, b.Supports(Olympia()))

	both := b.Union(Olympia())
	assert.True(t, both.Supports(Olympia()))
	assert.True(t, both.Supports(Babylon()))
	assert.Equal(t, []Curve{CurveEd25519, CurveSecp256k1}, both.Curves)
	assert.Equal(t, []derivation.Scheme{derivation.SchemeCAP26, derivation.SchemeBIP44Olympia}, both.Schemes)

	// union is idempotent and leaves the receiver untouched
	assert.Equal(t, both, both.Union(Olympia()))
	assert.Len(t, b.Curves, 1)
	assert.Equal(t, both, BabylonOlympiaCompatible())
}

func TestFlagsAreCopied(t *testing.T) {
	d := NewDevice(hashOf(1), DeviceHint{Label: "phone"}, Babylon(), time.Unix(0, 0))
	flagged := d.WithCommon(d.Common().WithFlag(FlagMain))

	assert.False(t, IsMain(d))
	assert.True(t, IsMain(flagged))

	again := flagged.WithCommon(flagged.Common().WithFlag(FlagMain))
	assert.Len(t, again.Common().Flags, 1)

	cleared := again.WithCommon(again.Common().WithoutFlag(FlagMain))
	assert.False(t, IsMain(cleared))
	assert.True(t, IsMain(again))
}

func TestAs(t *testing.T) {
	var src Source = NewLedgerHardwareWallet(hashOf(2), LedgerHint{Label: "nano", Model: LedgerNanoX}, Babylon(), time.Now())

	ledger, err := As[LedgerHardwareWallet](src)
	require.NoError(t, err)
	assert.Equal(t, LedgerNanoX, ledger.Hint.Model)

	_, err = As[Device](src)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestPublicKeyValidation(t *testing.T) {
	_, err := NewPublicKey(CurveEd25519, make([]byte, 33))
	assert.Error(t, err)

	k, err := NewPublicKey(CurveSecp256k1, make([]byte, 33))
	require.NoError(t, err)
	other, err := NewPublicKey(CurveEd25519, make([]byte, 32))
	require.NoError(t, err)
	assert.False(t, k.Equal(other))
}
