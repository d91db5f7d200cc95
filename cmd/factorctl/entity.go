package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/indices"
	"github.com/RaghavSood/factorkit/profile"
)

var (
	entityKind  string
	entityCount int
)

var entityCmd = &cobra.Command{
	Use:                "entity",
	Short:              "Derive entity keys from mnemonics in the keystore.",
	PersistentPreRunE:  openSession,
	PersistentPostRunE: closeSession,
}

var entityNextCmd = &cobra.Command{
	Use:   "next <factor-source-id>",
	Short: "Derives the transaction signing keys of the next entities on the configured network.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := factor.ParseID(args[0])
		if err != nil {
			return err
		}
		kind, err := derivation.ParseEntityKind(entityKind)
		if err != nil {
			return err
		}
		if entityCount < 1 {
			return fmt.Errorf("count must be at least 1")
		}

		ctx := cmd.Context()
		client, store, err := sess.client(ctx)
		if err != nil {
			return err
		}
		defer client.EvictMnemonics()

		network := sess.cfg.NetworkID
		req := indices.Request{
			FactorSourceID: id,
			EntityKind:     kind,
			NetworkID:      network,
			Scheme:         derivation.SchemeCAP26,
		}
		for n := 0; n < entityCount; n++ {
			index, err := client.NextEntityIndex(req, sess.cfg.Mode())
			if err != nil {
				return err
			}
			path, err := derivation.Cap26PathFor(kind, network, index, derivation.KeyKindTransactionSigning)
			if err != nil {
				return err
			}
			keys, err := client.DerivePublicKeys(ctx, id, []derivation.Path{path})
			if err != nil {
				return err
			}

			// later iterations see this index as used
			err = store.UpdateEntities(network, profile.Entity{
				Kind:      kind,
				Address:   fmt.Sprintf("%s_%d", kind, index),
				NetworkID: network,
				Security:  profile.Unsecured{TransactionSigning: factor.Instance{FactorSourceID: id, Key: keys[0]}},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s %s\n", index, path, keys[0].PublicKey)
		}
		return nil
	},
}

func init() {
	entityCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to config file")
	entityNextCmd.Flags().StringVar(&entityKind, "kind", "account", "account or persona")
	entityNextCmd.Flags().IntVar(&entityCount, "count", 1, "number of entities to derive")

	entityCmd.AddCommand(entityNextCmd)
}
