package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"imsse/internal/entitlement/provisioning"
)

func newVersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vers <file>",
		Short: "Parse a provisioning document and print its version, validity and entitlements",
		Long:  "Parse a provisioning document and print its version, validity and entitlements. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			doc, err := provisioning.Parse(string(raw))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			vers, ok := doc.Vers()
			if !ok {
				fmt.Fprintln(out, "vers: missing")
			} else {
				fmt.Fprintf(out, "version: %d\n", vers.Version)
				fmt.Fprintf(out, "validity: %s\n", vers.Validity)
				fmt.Fprintf(out, "valid_until: %s\n", provisioning.ValidUntil(string(raw), time.Now()).UTC().Format(time.RFC3339))
				fmt.Fprintf(out, "server_disabled: %t\n", vers.ServerDisabled())
			}
			for _, app := range doc.Applications() {
				fmt.Fprintf(out, "application %s: %s\n", app.AppID, app.EntitlementStatus)
			}
			return nil
		},
	}
}
