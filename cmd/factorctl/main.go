package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/RaghavSood/factorkit/wallet"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:           "factorctl",
	Short:         "Inspect derivation paths, mnemonics and the mnemonic keystore.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	rootCmd.AddCommand(pathCmd, mnemonicCmd, keystoreCmd, entityCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

// readMnemonic reads a phrase from the first line of r. The passphrase comes
// from the flag so it never shares a line with the words.
func readMnemonic(r io.Reader, passphrase string) (wallet.MnemonicWithPassphrase, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return wallet.MnemonicWithPassphrase{}, fmt.Errorf("reading mnemonic: %w", err)
		}
		return wallet.MnemonicWithPassphrase{}, fmt.Errorf("reading mnemonic: no input")
	}
	return wallet.ParseMnemonic(strings.TrimSpace(scanner.Text()), passphrase)
}
