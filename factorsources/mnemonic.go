package factorsources

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/importer"
	"github.com/RaghavSood/factorkit/keystore"
	"github.com/RaghavSood/factorkit/profile"
	"github.com/RaghavSood/factorkit/wallet"
)

// AddRequest describes a mnemonic-based factor source to add.
type AddRequest struct {
	Mnemonic wallet.MnemonicWithPassphrase
	// Kind is KindDevice or KindOffDeviceMnemonic. Empty means device.
	Kind  factor.Kind
	Label string
	Model string
	// CryptoParameters defaults to Babylon.
	CryptoParameters factor.CryptoParameters
	// Main promotes the source to main device factor source.
	Main bool
}

func (r AddRequest) kind() factor.Kind {
	if r.Kind == "" {
		return factor.KindDevice
	}
	return r.Kind
}

func (r AddRequest) params() factor.CryptoParameters {
	if len(r.CryptoParameters.Curves) == 0 && len(r.CryptoParameters.Schemes) == 0 {
		return factor.Babylon()
	}
	return r.CryptoParameters
}

func (r AddRequest) source(id factor.ID, c *Client) (factor.Source, error) {
	at := c.now()
	switch id.Kind {
	case factor.KindDevice:
		return factor.NewDevice(id.Hash, factor.DeviceHint{
			Label:             r.Label,
			Model:             r.Model,
			MnemonicWordCount: r.Mnemonic.WordCount(),
		}, r.params(), at), nil
	case factor.KindOffDeviceMnemonic:
		return factor.NewOffDeviceMnemonic(id.Hash, factor.OffDeviceMnemonicHint{
			Label:     r.Label,
			WordCount: r.Mnemonic.WordCount(),
		}, r.params(), at), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotMnemonicBased, id.Kind)
	}
}

// AddPrivateHDFactorSource stores the mnemonic in secure storage and registers
// its factor source. When the profile already holds a source with the same
// id, its crypto parameters are extended instead. If the registry update
// fails after the mnemonic was written, the write is undone.
func (c *Client) AddPrivateHDFactorSource(ctx context.Context, req AddRequest) (factor.ID, error) {
	kind := req.kind()
	if !kind.IsMnemonicBased() {
		return factor.ID{}, fmt.Errorf("%w: %s", ErrNotMnemonicBased, kind)
	}

	id, err := wallet.FactorSourceID(req.Mnemonic, kind)
	if err != nil {
		return factor.ID{}, fmt.Errorf("computing factor source id: %w", err)
	}
	src, err := req.source(id, c)
	if err != nil {
		return factor.ID{}, err
	}
	log := c.log.WithFields(logrus.Fields{"factor_source": id, "kind": kind})

	stored, err := c.storage.ContainsMnemonic(ctx, id)
	if err != nil {
		return factor.ID{}, fmt.Errorf("checking secure storage: %w", err)
	}
	wrote := false
	if !stored {
		if err := c.storage.SaveMnemonic(ctx, keystore.PrivateHDFactorSource{Mnemonic: req.Mnemonic, Source: src}); err != nil {
			return factor.ID{}, fmt.Errorf("saving mnemonic: %w", err)
		}
		wrote = true
	}

	appended := false
	err = c.store.Update(func(p *profile.Profile) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if existing, ok := p.FactorSources.Get(id); ok {
			appended = true
			common := existing.Common()
			common.CryptoParameters = common.CryptoParameters.Union(src.Common().CryptoParameters)
			src = existing.WithCommon(common)
			if err := p.FactorSources.Update(src); err != nil {
				return err
			}
		} else if !req.Main {
			if err := p.FactorSources.Add(src); err != nil {
				return err
			}
		}
		if req.Main {
			device, ok := src.(factor.Device)
			if !ok {
				return fmt.Errorf("only device factor sources can be main, not %s", kind)
			}
			return p.FactorSources.PromoteToMain(device)
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Adding factor source")
		if wrote {
			c.compensate(ctx, id)
		}
		return factor.ID{}, fmt.Errorf("adding factor source: %w", err)
	}

	log.WithFields(logrus.Fields{
		"appended":       appended,
		"wrote_mnemonic": wrote,
	}).Info("Added factor source")
	return id, nil
}

// compensate removes a mnemonic written by a failed add. It runs detached from
// ctx's cancellation; a failure is logged and swallowed.
func (c *Client) compensate(ctx context.Context, id factor.ID) {
	ctx = context.WithoutCancel(ctx)
	backoff := retry.WithMaxRetries(c.compensationRetries, retry.NewConstant(c.compensationDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.storage.DeleteMnemonic(ctx, id); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		c.log.WithField("factor_source", id).WithError(err).Error("Removing mnemonic after failed add")
		return
	}
	c.log.WithField("factor_source", id).Warn("Removed mnemonic after failed add")
}

// ImportMnemonic spot checks attempt against expected and every entity it
// controls, then adds it as a factor source.
func (c *Client) ImportMnemonic(ctx context.Context, attempt *importer.Attempt, expected factor.ID, req AddRequest) (factor.ID, error) {
	var entities []profile.Entity
	for _, n := range c.store.Snapshot().Networks {
		entities = append(entities, n.Accounts...)
		entities = append(entities, n.Personas...)
	}

	if err := attempt.SpotCheck(ctx, expected, entities); err != nil {
		c.log.WithField("factor_source", expected).WithError(err).Warn("Mnemonic spot check failed")
		return factor.ID{}, err
	}

	mwp, err := attempt.MnemonicWithPassphrase()
	if err != nil {
		return factor.ID{}, err
	}
	req.Mnemonic = mwp
	req.Kind = expected.Kind
	return c.AddPrivateHDFactorSource(ctx, req)
}

// DerivePublicKeys derives the keys of factor source id at paths. Mnemonic
// based sources derive locally from secure storage; hardware sources go
// through the configured HardwareDeriver.
func (c *Client) DerivePublicKeys(ctx context.Context, id factor.ID, paths []derivation.Path) ([]factor.HDPublicKey, error) {
	var src factor.Source
	err := c.store.View(func(p profile.Profile) error {
		s, ok := p.FactorSources.Get(id)
		if !ok {
			return fmt.Errorf("%w: %s", profile.ErrNotFound, id)
		}
		src = s
		return nil
	})
	if err != nil {
		c.log.WithField("factor_source", id).WithError(err).Error("Deriving public keys")
		return nil, err
	}

	switch {
	case id.Kind.IsMnemonicBased():
		return c.deriveLocally(ctx, src, paths)
	case id.Kind == factor.KindLedgerHardwareWallet || id.Kind == factor.KindArculusCard:
		if c.hardware == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoHardwareDeriver, id)
		}
		keys, err := c.hardware.DerivePublicKeys(ctx, src, paths)
		if err != nil {
			return nil, fmt.Errorf("deriving on %s: %w", id, err)
		}
		return keys, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrCannotDerive, id.Kind)
	}
}

func (c *Client) deriveLocally(ctx context.Context, src factor.Source, paths []derivation.Path) ([]factor.HDPublicKey, error) {
	mwp, err := c.storage.LoadMnemonic(ctx, src.ID())
	if err != nil {
		return nil, fmt.Errorf("loading mnemonic: %w", err)
	}
	if mwp == nil {
		return nil, fmt.Errorf("%w: %s", ErrMnemonicNotFound, src.ID())
	}

	params := src.Common().CryptoParameters
	keys := make([]factor.HDPublicKey, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if path.Scheme() != derivation.SchemeCustom && !params.SupportsScheme(path.Scheme()) {
			return nil, fmt.Errorf("%s does not support %s paths", src.ID(), path.Scheme())
		}
		key, err := wallet.DeriveHDPublicKey(*mwp, path)
		if err != nil {
			return nil, fmt.Errorf("deriving %s: %w", path, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
