package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// discoverCmd fetches and renders the server's uma2-configuration.
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Show the server's discovery metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching discovery document...")
		doc, correlation, err := cli.Discover(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching discovery document (correlation: %s): %w", correlation, err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Issuer", doc.Issuer},
			{"Token endpoint", doc.TokenEndpoint},
			{"Permission endpoint", doc.PermissionEndpoint},
			{"JWKS", doc.JWKSURI},
			{"Grant types", strings.Join(doc.GrantTypesSupported, "\n")},
			{"Claim token profiles", strings.Join(doc.ClaimTokenProfilesSupported, "\n")},
			{"DPoP algorithms", strings.Join(doc.DPoPSigningAlgValuesSupported, ", ")},
		})
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
