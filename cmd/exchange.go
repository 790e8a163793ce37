package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SolidLabResearch/user-managed-access-sub001/pkg/client"
)

var (
	exchangeTicket      string
	exchangeClaimToken  string
	exchangeClaimFormat string
	exchangeRPT         string
)

// exchangeCmd plays one round of the negotiation as a client.
var exchangeCmd = &cobra.Command{
	Use:   "exchange",
	Short: "Exchange a ticket (plus optional claims) for an access token",
	Long: `Performs one round against the token endpoint. Without claims the
	server answers with a fresh ticket and the claim formats it accepts;
	rerun with --claim-token to continue the negotiation.`,
	Example: `  # Probe which claim formats the server wants
  uma exchange --ticket <id>

  # Submit an OIDC ID token
  uma exchange --ticket <id> --claim-token <jwt> \
    --claim-token-format http://openid.net/specs/openid-connect-core-1_0.html#IDToken`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Requesting token...")
		result, correlation, err := cli.RequestToken(cmd.Context(), client.TokenRequest{
			Ticket:           exchangeTicket,
			ClaimToken:       exchangeClaimToken,
			ClaimTokenFormat: exchangeClaimFormat,
			RPT:              exchangeRPT,
		})
		if err != nil {
			return fmt.Errorf("token request failed (correlation: %s): %w", correlation, err)
		}

		switch {
		case result.AccessToken != "":
			fmt.Printf("%s Access token issued\n", greenCheck)
			fmt.Printf("  %s: %s\n", faint("Type"), result.TokenType)
			fmt.Printf("  %s:\n%s\n", faint("Token"), result.AccessToken)
		case result.Denied:
			fmt.Printf("%s Request denied, obtain a new ticket from the resource server\n", redCross)
		default:
			fmt.Printf("%s More claims needed\n", bold("?"))
			fmt.Printf("  %s: %s\n", faint("New ticket"), bold(result.Ticket))
			for _, format := range result.RequiredFormats {
				fmt.Printf("  %s: %s\n", faint("Accepted format"), format)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exchangeCmd)

	exchangeCmd.Flags().StringVar(&exchangeTicket, "ticket", "", "Ticket id from the resource server")
	exchangeCmd.Flags().StringVar(&exchangeClaimToken, "claim-token", "", "Claim token to submit")
	exchangeCmd.Flags().StringVar(&exchangeClaimFormat, "claim-token-format", "", "Format IRI of the claim token")
	exchangeCmd.Flags().StringVar(&exchangeRPT, "rpt", "", "Previously issued access token for step-up")

	_ = exchangeCmd.MarkFlagRequired("ticket")
}
