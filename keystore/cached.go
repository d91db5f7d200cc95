package keystore

import (
	"context"
	"errors"
	"time"

	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/wallet"
)

var errAbsent = errors.New("absent")

// Cached keeps decrypted mnemonics in memory for a short while so a signing
// session does not hit secure storage once per key. Call EvictAll when the
// session ends.
type Cached struct {
	Storage
	cache *Cache[wallet.MnemonicWithPassphrase]
}

var _ Storage = (*Cached)(nil)

func NewCached(s Storage, ttl time.Duration) *Cached {
	return &Cached{
		Storage: s,
		cache:   NewCache[wallet.MnemonicWithPassphrase](ttl),
	}
}

func (c *Cached) LoadMnemonic(ctx context.Context, id factor.ID) (*wallet.MnemonicWithPassphrase, error) {
	mwp, err := c.cache.GetOrFetch(id.String(), func() (wallet.MnemonicWithPassphrase, error) {
		loaded, err := c.Storage.LoadMnemonic(ctx, id)
		if err != nil {
			return wallet.MnemonicWithPassphrase{}, err
		}
		if loaded == nil {
			return wallet.MnemonicWithPassphrase{}, errAbsent
		}
		return *loaded, nil
	})
	if errors.Is(err, errAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mwp, nil
}

func (c *Cached) SaveMnemonic(ctx context.Context, src PrivateHDFactorSource) error {
	c.cache.Delete(src.ID().String())
	return c.Storage.SaveMnemonic(ctx, src)
}

func (c *Cached) DeleteMnemonic(ctx context.Context, id factor.ID) error {
	c.cache.Delete(id.String())
	return c.Storage.DeleteMnemonic(ctx, id)
}

// EvictAll drops every cached mnemonic and reports how many were held.
func (c *Cached) EvictAll() int {
	return c.cache.Purge()
}
