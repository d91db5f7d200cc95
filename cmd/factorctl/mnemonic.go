package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RaghavSood/factorkit/derivation"
	"github.com/RaghavSood/factorkit/factor"
	"github.com/RaghavSood/factorkit/wallet"
)

var (
	mnemonicWords      int
	mnemonicPassphrase string
	mnemonicKind       string
)

var mnemonicCmd = &cobra.Command{
	Use:   "mnemonic",
	Short: "Generate mnemonics and derive from them. Phrases are read from stdin.",
}

var mnemonicNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generates a new BIP39 mnemonic.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mwp, err := wallet.NewMnemonic(mnemonicWords)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), mwp.Mnemonic)
		return nil
	},
}

var mnemonicIDCmd = &cobra.Command{
	Use:   "id",
	Short: "Prints the factor source id of the mnemonic on stdin.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := factor.ParseKind(mnemonicKind)
		if err != nil {
			return err
		}
		mwp, err := readMnemonic(cmd.InOrStdin(), mnemonicPassphrase)
		if err != nil {
			return err
		}
		id, err := wallet.FactorSourceID(mwp, kind)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var mnemonicDeriveCmd = &cobra.Command{
	Use:   "derive <path> [<path> ...]",
	Short: "Derives the public keys of the mnemonic on stdin at each path.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := make([]derivation.Path, 0, len(args))
		for _, raw := range args {
			p, err := derivation.Parse(raw)
			if err != nil {
				return err
			}
			paths = append(paths, p)
		}

		mwp, err := readMnemonic(cmd.InOrStdin(), mnemonicPassphrase)
		if err != nil {
			return err
		}
		for _, p := range paths {
			key, err := wallet.DeriveHDPublicKey(mwp, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", p, key.PublicKey)
		}
		return nil
	},
}

func init() {
	mnemonicNewCmd.Flags().IntVar(&mnemonicWords, "words", 24, "word count: 12, 15, 18, 21 or 24")
	mnemonicCmd.PersistentFlags().StringVar(&mnemonicPassphrase, "passphrase", "", "BIP39 passphrase")
	mnemonicIDCmd.Flags().StringVar(&mnemonicKind, "kind", string(factor.KindDevice), "factor source kind")

	mnemonicCmd.AddCommand(mnemonicNewCmd, mnemonicIDCmd, mnemonicDeriveCmd)
}
