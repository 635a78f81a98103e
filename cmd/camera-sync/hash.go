package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/alexjbarnes/camera-sync/internal/auth"
	"github.com/spf13/cobra"
)

var hashTokenCmd = &cobra.Command{
	Use:   "hash-token",
	Short: "Hash an MCP bearer token for MCP_TOKEN_HASH",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprint(os.Stderr, "Enter token: ")

		scanner := bufio.NewScanner(cmd.InOrStdin())
		if !scanner.Scan() {
			return fmt.Errorf("no input")
		}

		hash, err := auth.HashToken(scanner.Text())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hash)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashTokenCmd)
}
