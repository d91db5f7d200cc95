package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/factor"
)

const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testMnemonic(t *testing.T, passphrase string) MnemonicWithPassphrase {
	t.Helper()
	mwp, err := ParseMnemonic(testPhrase, passphrase)
	require.NoError(t, err)
	return mwp
}

func TestParseMnemonicNormalizes(t *testing.T) {
	mwp, err := ParseMnemonic("  ABANDON abandon abandon abandon abandon abandon\tabandon abandon abandon abandon abandon About ", "")
	require.NoError(t, err)
	assert.Equal(t, testPhrase, mwp.Mnemonic)
	assert.Equal(t, 12, mwp.WordCount())
}

func TestParseMnemonicRejects(t *testing.T) {
	_, err := ParseMnemonic("abandon abandon abandon", "")
	assert.ErrorIs(t, err, ErrWordCount)

	// valid words, bad checksum
	_, err = ParseMnemonic("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestNewMnemonic(t *testing.T) {
	for _, n := range WordCounts {
		mwp, err := NewMnemonic(n)
		require.NoError(t, err)
		assert.Equal(t, n, mwp.WordCount())

		_, err = ParseMnemonic(mwp.Mnemonic, "")
		assert.NoError(t, err)
	}

	_, err := NewMnemonic(13)
	assert.ErrorIs(t, err, ErrWordCount)
}

func TestFactorSourceIDIsDeterministic(t *testing.T) {
	a, err := FactorSourceID(testMnemonic(t, ""), factor.KindDevice)
	require.NoError(t, err)
	b, err := FactorSourceID(testMnemonic(t, ""), factor.KindDevice)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.IsHash())

	withPassphrase, err := FactorSourceID(testMnemonic(t, "secret"), factor.KindDevice)
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash, withPassphrase.Hash)

	offDevice, err := FactorSourceID(testMnemonic(t, ""), factor.KindOffDeviceMnemonic)
	require.NoError(t, err)
	assert.Equal(t, a.Hash, offDevice.Hash)
	assert.NotEqual(t, a, offDevice)
}

func TestDeriveHDPublicKeyPicksCurve(t *testing.T) {
	mwp := testMnemonic(t, "")

	cap26, err := derivation.Cap26PathFor(derivation.EntityKindAccount, derivation.Mainnet, 0, derivation.KeyKindTransactionSigning)
	require.NoError(t, err)
	key, err := DeriveHDPublicKey(mwp, cap26)
	require.NoError(t, err)
	assert.Equal(t, factor.CurveEd25519, key.PublicKey.Curve)
	assert.Len(t, key.PublicKey.Bytes, 32)

	legacy, err := derivation.NewBIP44LikePath(0, false)
	require.NoError(t, err)
	key, err = DeriveHDPublicKey(mwp, legacy)
	require.NoError(t, err)
	assert.Equal(t, factor.CurveSecp256k1, key.PublicKey.Curve)
	assert.Len(t, key.PublicKey.Bytes, 33)

	again, err := DeriveHDPublicKey(mwp, legacy)
	require.NoError(t, err)
	assert.True(t, key.Equal(again))
}

func TestDistinctIndicesDeriveDistinctKeys(t *testing.T) {
	mwp := testMnemonic(t, "")

	p0, err := derivation.Cap26PathFor(derivation.EntityKindAccount, derivation.Mainnet, 0, derivation.KeyKindTransactionSigning)
	require.NoError(t, err)
	p1, err := derivation.Cap26PathFor(derivation.EntityKindAccount, derivation.Mainnet, 1, derivation.KeyKindTransactionSigning)
	require.NoError(t, err)

	k0, err := DeriveHDPublicKey(mwp, p0)
	require.NoError(t, err)
	k1, err := DeriveHDPublicKey(mwp, p1)
	require.NoError(t, err)
	assert.False(t, k0.PublicKey.Equal(k1.PublicKey))
}

func TestEd25519RequiresHardenedPath(t *testing.T) {
	legacy, err := derivation.NewBIP44LikePath(3, true)
	require.NoError(t, err)

	_, err = DerivePublicKey(testMnemonic(t, ""), factor.CurveEd25519, legacy)
	assert.ErrorIs(t, err, ErrNonHardenedEd25519)
}

func TestDeriveKeyMatchesPublicKey(t *testing.T) {
	mwp := testMnemonic(t, "")
	legacy, err := derivation.NewBIP44LikePath(7, true)
	require.NoError(t, err)

	priv, err := DeriveKey(mwp, legacy)
	require.NoError(t, err)

	pub, err := DerivePublicKey(mwp, factor.CurveSecp256k1, legacy)
	require.NoError(t, err)

	assert.Equal(t, pub.Bytes[1:], priv.PublicKey.X.FillBytes(make([]byte, 32)))
}

func TestWordList(t *testing.T) {
	assert.Len(t, WordList(), 2048)
	assert.True(t, IsWord("zoo"))
	assert.False(t, IsWord("zzz"))
}
