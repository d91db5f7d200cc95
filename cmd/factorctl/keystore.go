package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/keystore"
	"github.com/RaghavSood/factorkit/wallet"
)

var (
	storeKind  string
	storeLabel string
	storePass  string
)

var keystoreCmd = &cobra.Command{
	Use:                "keystore",
	Short:              "Manage mnemonics in the encrypted keystore.",
	PersistentPreRunE:  openSession,
	PersistentPostRunE: closeSession,
}

var keystoreAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Stores the mnemonic on stdin and prints its factor source id.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := factor.ParseKind(storeKind)
		if err != nil {
			return err
		}
		mwp, err := readMnemonic(cmd.InOrStdin(), storePass)
		if err != nil {
			return err
		}
		id, err := wallet.FactorSourceID(mwp, kind)
		if err != nil {
			return err
		}

		var src factor.Source
		switch kind {
		case factor.KindDevice:
			src = factor.NewDevice(id.Hash, factor.DeviceHint{Label: storeLabel, MnemonicWordCount: mwp.WordCount()}, factor.Babylon(), time.Now())
		case factor.KindOffDeviceMnemonic:
			src = factor.NewOffDeviceMnemonic(id.Hash, factor.OffDeviceMnemonicHint{Label: storeLabel, WordCount: mwp.WordCount()}, factor.Babylon(), time.Now())
		default:
			return fmt.Errorf("%s factor sources have no mnemonic", kind)
		}

		if err := sess.mnemonics.SaveMnemonic(cmd.Context(), keystore.PrivateHDFactorSource{Mnemonic: mwp, Source: src}); err != nil {
			return err
		}
		log.WithField("factor_source", id).Info("Stored mnemonic")
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var keystoreHasCmd = &cobra.Command{
	Use:   "has <factor-source-id>",
	Short: "Reports whether a mnemonic is stored for the id.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := factor.ParseID(args[0])
		if err != nil {
			return err
		}
		ok, err := sess.mnemonics.ContainsMnemonic(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

var keystoreListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the ids of every stored mnemonic.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := sess.store.IDs(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var keystoreDeleteCmd = &cobra.Command{
	Use:   "delete <factor-source-id>",
	Short: "Deletes the stored mnemonic for the id.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := factor.ParseID(args[0])
		if err != nil {
			return err
		}
		if err := sess.mnemonics.DeleteMnemonic(cmd.Context(), id); err != nil {
			return err
		}
		log.WithField("factor_source", id).Info("Deleted mnemonic")
		return nil
	},
}

func init() {
	keystoreCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to config file")
	keystoreAddCmd.Flags().StringVar(&storeKind, "kind", string(factor.KindDevice), "device or offDeviceMnemonic")
	keystoreAddCmd.Flags().StringVar(&storeLabel, "label", "", "factor source label")
	keystoreAddCmd.Flags().StringVar(&storePass, "passphrase", "", "BIP39 passphrase")

	keystoreCmd.AddCommand(keystoreAddCmd, keystoreHasCmd, keystoreListCmd, keystoreDeleteCmd)
}
