package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

var (
	registerResource string
	registerScopes   []string
)

// registerCmd registers requested permissions as a resource server would.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register requested permissions and obtain a ticket",
	Long: `Registers requested permissions on behalf of a resource server and
	prints the resulting ticket id. The ticket is what the resource server
	hands to the client in the WWW-Authenticate header.

Requires a resource server credential, see 'uma login'.`,
	Example: `  # Request read and write access to a resource
  uma register --resource http://localhost:3000/alice/private/doc \
    --scope urn:example:css:modes:read --scope urn:example:css:modes:write`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		perms := []core.Permission{{
			ResourceID:     registerResource,
			ResourceScopes: registerScopes,
		}}

		log.Info().Msgf("Registering permissions for '%s'...", truncate(registerResource, 60))
		ticket, correlation, err := cli.RegisterPermissions(cmd.Context(), perms)
		if err != nil {
			return fmt.Errorf("registering permissions (correlation: %s): %w", correlation, err)
		}

		fmt.Printf("%s Ticket issued\n", greenCheck)
		fmt.Printf("  %s: %s\n", faint("Ticket"), bold(ticket))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVar(&registerResource, "resource", "", "Resource identifier (IRI)")
	registerCmd.Flags().StringArrayVar(&registerScopes, "scope", nil, "Requested scope (repeatable)")

	_ = registerCmd.MarkFlagRequired("resource")
	_ = registerCmd.MarkFlagRequired("scope")
}
