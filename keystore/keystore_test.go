package keystore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/wallet"
)

var testParams = Params{N: 16, R: 8, P: 1}

const phrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func privateSource(t *testing.T, passphrase string) PrivateHDFactorSource {
	t.Helper()
	mwp, err := wallet.ParseMnemonic(phrase, passphrase)
	require.NoError(t, err)
	id, err := wallet.FactorSourceID(mwp, factor.KindDevice)
	require.NoError(t, err)
	return PrivateHDFactorSource{
		Mnemonic: mwp,
		Source:   factor.NewDevice(id.Hash, factor.DeviceHint{MnemonicWordCount: 12}, factor.Babylon(), time.Now()),
	}
}

func openStore(t *testing.T, path string, secret string) *Store {
	t.Helper()
	s, err := Open(path, []byte(secret), testParams)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "keys.db"), "hunter2")
	src := privateSource(t, "extra words")

	missing, err := s.LoadMnemonic(ctx, src.ID())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.SaveMnemonic(ctx, src))

	ok, err := s.ContainsMnemonic(ctx, src.ID())
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := s.LoadMnemonic(ctx, src.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, src.Mnemonic, *loaded)

	ids, err := s.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []factor.ID{src.ID()}, ids)

	err = s.SaveMnemonic(ctx, src)
	assert.ErrorIs(t, err, ErrAlreadyStored)

	require.NoError(t, s.DeleteMnemonic(ctx, src.ID()))
	require.NoError(t, s.DeleteMnemonic(ctx, src.ID()))
	ok, err = s.ContainsMnemonic(ctx, src.ID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorePersistsAndRequiresSecret(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keys.db")
	src := privateSource(t, "")

	first, err := Open(path, []byte("correct"), testParams)
	require.NoError(t, err)
	require.NoError(t, first.SaveMnemonic(ctx, src))
	require.NoError(t, first.Close())

	// cost parameters are stored per record
	reopened := openStore(t, path, "correct")
	reopened.params = Params{N: 32, R: 8, P: 1}
	loaded, err := reopened.LoadMnemonic(ctx, src.ID())
	require.NoError(t, err)
	assert.Equal(t, src.Mnemonic, *loaded)
	require.NoError(t, reopened.Close())

	wrong := openStore(t, path, "incorrect")
	_, err = wrong.LoadMnemonic(ctx, src.ID())
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestOpenRejectsEmptySecret(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "keys.db"), nil, testParams)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSealUsesFreshSalt(t *testing.T) {
	mwp := privateSource(t, "").Mnemonic
	a, err := seal([]byte("s"), testParams, mwp)
	require.NoError(t, err)
	b, err := seal([]byte("s"), testParams, mwp)
	require.NoError(t, err)
	assert.NotEqual(t, a.salt, b.salt)
	assert.NotEqual(t, a.ciphertext, b.ciphertext)
	assert.NotContains(t, string(a.ciphertext), "abandon")
}

func TestCacheExpires(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewCache[int](time.Minute)
	c.now = func() time.Time { return now }

	calls := 0
	fetch := func() (int, error) {
		calls++
		return calls, nil
	}

	v, err := c.GetOrFetch("k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, _ = c.GetOrFetch("k", fetch)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	v, _ = c.GetOrFetch("k", fetch)
	assert.Equal(t, 2, v)

	_, err = c.GetOrFetch("bad", func() (int, error) { return 0, errors.New("boom") })
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())

	c.Delete("k")
	assert.Equal(t, 0, c.Len())
}

type countingStorage struct {
	Storage
	loads int
}

func (c *countingStorage) LoadMnemonic(ctx context.Context, id factor.ID) (*wallet.MnemonicWithPassphrase, error) {
	c.loads++
	return c.Storage.LoadMnemonic(ctx, id)
}

func TestCachedStorage(t *testing.T) {
	ctx := context.Background()
	backing := &countingStorage{Storage: openStore(t, filepath.Join(t.TempDir(), "keys.db"), "pw")}
	cached := NewCached(backing, time.Minute)
	src := privateSource(t, "")

	absent, err := cached.LoadMnemonic(ctx, src.ID())
	require.NoError(t, err)
	assert.Nil(t, absent)

	require.NoError(t, cached.SaveMnemonic(ctx, src))
	for i := 0; i < 3; i++ {
		loaded, err := cached.LoadMnemonic(ctx, src.ID())
		require.NoError(t, err)
		assert.Equal(t, src.Mnemonic, *loaded)
	}
	assert.Equal(t, 2, backing.loads, "absent lookups are not cached")

	assert.Equal(t, 1, cached.EvictAll())
	_, err = cached.LoadMnemonic(ctx, src.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, backing.loads)

	require.NoError(t, cached.DeleteMnemonic(ctx, src.ID()))
	gone, err := cached.LoadMnemonic(ctx, src.ID())
	require.NoError(t, err)
	assert.Nil(t, gone)
}
