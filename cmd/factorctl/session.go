package main

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/RaghavSood/factorkit/config"
	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/factorsources"
	"github.com/RaghavSood/factorkit/keystore"
	"github.com/RaghavSood/factorkit/profile"
)

var errNoDevice = errors.New("keystore holds no device mnemonic")

var configPath string

// session is the config and keystore shared by the commands that need them.
type session struct {
	cfg       *config.Config
	store     *keystore.Store
	mnemonics *keystore.Cached
}

var sess *session

func openSession(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Level())

	store, err := keystore.Open(cfg.DatabasePath, []byte(cfg.KeystoreSecret), cfg.KeystoreParams())
	if err != nil {
		return err
	}
	sess = &session{
		cfg:       cfg,
		store:     store,
		mnemonics: keystore.NewCached(store, cfg.CacheTTL()),
	}
	log.WithField("path", cfg.DatabasePath).Debug("Opened keystore")
	return nil
}

func closeSession(cmd *cobra.Command, args []string) error {
	if sess == nil {
		return nil
	}
	sess.mnemonics.EvictAll()
	err := sess.store.Close()
	sess = nil
	return err
}

// client registers every stored mnemonic as a factor source of an in-memory
// profile on the configured network. The first device becomes main.
func (s *session) client(ctx context.Context) (*factorsources.Client, *profile.Store, error) {
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	var sources profile.FactorSources
	for _, id := range ids {
		switch id.Kind {
		case factor.KindDevice:
			sources = append(sources, factor.NewDevice(id.Hash, factor.DeviceHint{}, factor.BabylonOlympiaCompatible(), now))
		case factor.KindOffDeviceMnemonic:
			sources = append(sources, factor.NewOffDeviceMnemonic(id.Hash, factor.OffDeviceMnemonicHint{}, factor.BabylonOlympiaCompatible(), now))
		}
	}
	main := slices.IndexFunc(sources, func(src factor.Source) bool { return src.Kind() == factor.KindDevice })
	if main < 0 {
		return nil, nil, errNoDevice
	}
	sources[main] = sources[main].WithCommon(sources[main].Common().WithFlag(factor.FlagMain))

	store, err := profile.NewStore(profile.Profile{FactorSources: sources, CurrentNetworkID: s.cfg.NetworkID})
	if err != nil {
		return nil, nil, err
	}
	return factorsources.New(store, s.mnemonics, factorsources.Options{Logger: log}), store, nil
}
