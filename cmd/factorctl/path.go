package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RaghavSood/factorkit/derivation"
)

var (
	pathNetwork    string
	pathEntityKind string
	pathKeyKind    string
	pathIndex      uint32
	pathHardenLast bool
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Parse and build derivation paths.",
}

var pathParseCmd = &cobra.Command{
	Use:   "parse <path>",
	Short: "Parses a derivation path and prints its scheme and components.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := derivation.Parse(args[0])
		if err != nil {
			return err
		}
		printPath(cmd, p)
		return nil
	},
}

var pathCap26Cmd = &cobra.Command{
	Use:   "cap26",
	Short: "Builds a CAP26 path.",
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := derivation.ParseNetworkID(pathNetwork)
		if err != nil {
			return err
		}
		entityKind, err := derivation.ParseEntityKind(pathEntityKind)
		if err != nil {
			return err
		}
		keyKind, err := derivation.ParseKeyKind(pathKeyKind)
		if err != nil {
			return err
		}
		index, err := derivation.NewIndex(pathIndex)
		if err != nil {
			return err
		}

		p, err := derivation.Cap26PathFor(entityKind, network, index, keyKind)
		if err != nil {
			return err
		}
		printPath(cmd, p)
		return nil
	},
}

var pathLegacyCmd = &cobra.Command{
	Use:   "legacy <index>",
	Short: "Builds an Olympia BIP44-like path.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("parsing index: %w", err)
		}
		index, err := derivation.NewIndex(uint32(raw))
		if err != nil {
			return err
		}
		p, err := derivation.NewBIP44LikePath(index, pathHardenLast)
		if err != nil {
			return err
		}
		printPath(cmd, p)
		return nil
	},
}

func init() {
	pathCap26Cmd.Flags().StringVar(&pathNetwork, "network", "mainnet", "network name or id")
	pathCap26Cmd.Flags().StringVar(&pathEntityKind, "entity", "account", "account or persona")
	pathCap26Cmd.Flags().StringVar(&pathKeyKind, "key-kind", "tx", "tx, auth or enc")
	pathCap26Cmd.Flags().Uint32Var(&pathIndex, "index", 0, "entity index")
	pathLegacyCmd.Flags().BoolVar(&pathHardenLast, "harden-last", true, "harden the index component")

	pathCmd.AddCommand(pathParseCmd, pathCap26Cmd, pathLegacyCmd)
}

func printPath(cmd *cobra.Command, p derivation.Path) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:   %s\n", p)
	fmt.Fprintf(out, "scheme: %s\n", p.Scheme())
	if c, ok := p.(derivation.Cap26Path); ok {
		fmt.Fprintf(out, "network: %s\nentity:  %s\nkey:     %s\n", c.NetworkID, c.EntityKind, c.KeyKind)
	}
	if index, ok := derivation.IndexOf(p); ok {
		fmt.Fprintf(out, "index:  %d\n", index)
	}
}
