// Package factorsources is the entry point the rest of the wallet uses to
// manage factor sources: adding and importing mnemonics, picking derivation
// indices, deriving keys and planning signatures.
package factorsources

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/indices"
	"github.com/RaghavSood/factorkit/keystore"
	"github.com/RaghavSood/factorkit/profile"
	"github.com/RaghavSood/factorkit/signing"
)

// HardwareDeriver derives public keys on an external device such as a Ledger.
type HardwareDeriver interface {
	DerivePublicKeys(ctx context.Context, source factor.Source, paths []derivation.Path) ([]factor.HDPublicKey, error)
}

type Options struct {
	Logger   logrus.FieldLogger
	Hardware HardwareDeriver
	Now      func() time.Time

	// CompensationRetries bounds the attempts to remove a mnemonic written
	// by a failed AddPrivateHDFactorSource.
	CompensationRetries uint64
	CompensationDelay   time.Duration
}

type Client struct {
	store    *profile.Store
	storage  keystore.Storage
	hardware HardwareDeriver
	log      logrus.FieldLogger
	now      func() time.Time

	compensationRetries uint64
	compensationDelay   time.Duration
}

func New(store *profile.Store, storage keystore.Storage, opts Options) *Client {
	c := &Client{
		store:               store,
		storage:             storage,
		hardware:            opts.Hardware,
		log:                 opts.Logger,
		now:                 opts.Now,
		compensationRetries: opts.CompensationRetries,
		compensationDelay:   opts.CompensationDelay,
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.compensationRetries == 0 {
		c.compensationRetries = 3
	}
	if c.compensationDelay == 0 {
		c.compensationDelay = 100 * time.Millisecond
	}
	return c
}

func (c *Client) IndicesUsedByFactorSource(req indices.Request) (indices.Used, error) {
	var used indices.Used
	err := c.store.View(func(p profile.Profile) error {
		var err error
		used, err = indices.UsedByFactorSource(p, req)
		return err
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"factor_source": req.FactorSourceID,
			"network":       req.NetworkID,
			"kind":          req.EntityKind,
		}).WithError(err).Error("Collecting used derivation indices")
		return indices.Used{}, err
	}
	return used, nil
}

// NextEntityIndex returns the index the next entity of req should derive at.
func (c *Client) NextEntityIndex(req indices.Request, mode indices.Mode) (derivation.Index, error) {
	used, err := c.IndicesUsedByFactorSource(req)
	if err != nil {
		return 0, err
	}
	return indices.Next(used, mode)
}

// SigningFactors plans the signatures the entities at addresses on networkID
// must produce for purpose.
func (c *Client) SigningFactors(networkID derivation.NetworkID, addresses []string, purpose signing.Purpose) (signing.Factors, error) {
	var factors signing.Factors
	err := c.store.View(func(p profile.Profile) error {
		network, ok := p.Network(networkID)
		if !ok && len(addresses) > 0 {
			return fmt.Errorf("%w: network %s has no entities", ErrEntityNotFound, networkID)
		}

		entities := make([]profile.Entity, 0, len(addresses))
		for _, addr := range addresses {
			e, ok := network.Entity(addr)
			if !ok {
				return fmt.Errorf("%w: %s on %s", ErrEntityNotFound, addr, networkID)
			}
			entities = append(entities, e)
		}

		var err error
		factors, err = signing.Build(entities, p.FactorSources, purpose)
		return err
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"network": networkID,
			"purpose": purpose,
		}).WithError(err).Error("Assembling signing factors")
		return nil, err
	}
	return factors, nil
}

func (c *Client) SaveFactorSource(src factor.Source) error {
	return c.update("Saving factor source", src.ID(), func(fs *profile.FactorSources) error {
		return fs.Add(src)
	})
}

func (c *Client) UpdateFactorSource(src factor.Source) error {
	return c.update("Updating factor source", src.ID(), func(fs *profile.FactorSources) error {
		return fs.Update(src)
	})
}

func (c *Client) FlagFactorSourceForDeletion(id factor.ID) error {
	return c.update("Flagging factor source for deletion", id, func(fs *profile.FactorSources) error {
		return fs.FlagForDeletion(id)
	})
}

// UpdateLastUsed stamps the factor sources that signed for purpose.
func (c *Client) UpdateLastUsed(ids []factor.ID, purpose signing.Purpose, at time.Time) error {
	err := c.store.Update(func(p *profile.Profile) error {
		return p.FactorSources.UpdateLastUsed(ids, at)
	})
	if err != nil {
		c.log.WithField("purpose", purpose).WithError(err).Error("Updating factor source last used")
		return err
	}
	c.log.WithFields(logrus.Fields{
		"purpose": purpose,
		"count":   len(ids),
	}).Debug("Updated factor source last used")
	return nil
}

// SetMainFactorSource promotes device to be the main device factor source.
func (c *Client) SetMainFactorSource(device factor.Device) error {
	return c.update("Promoting main factor source", device.ID(), func(fs *profile.FactorSources) error {
		return fs.PromoteToMain(device)
	})
}

func (c *Client) update(action string, id factor.ID, fn func(fs *profile.FactorSources) error) error {
	err := c.store.Update(func(p *profile.Profile) error {
		return fn(&p.FactorSources)
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"factor_source": id,
			"kind":          id.Kind,
		}).WithError(err).Error(action)
		return err
	}
	c.log.WithField("factor_source", id).Debug(action)
	return nil
}

// EvictMnemonics drops every decrypted mnemonic cached by the storage, if it
// caches any. Call it once a signing session is over.
func (c *Client) EvictMnemonics() int {
	e, ok := c.storage.(interface{ EvictAll() int })
	if !ok {
		return 0
	}
	n := e.EvictAll()
	if n > 0 {
		c.log.WithField("count", n).Debug("Evicted cached mnemonics")
	}
	return n
}
