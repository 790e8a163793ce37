package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/cliconfig"
)

var loginToken string

// loginCmd stores a resource server credential for the configured server.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a resource server credential for a server",
	Long: `Stores the given token for the configured server address. The token
	is attached to future permission registration requests against that
	server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := viper.GetString(ServerAddrKey)
		if server == "" {
			return fmt.Errorf("server address not configured, provide via --server or env")
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			return err
		}
		if err := cfg.SetCredential(server, &cliconfig.Credential{Token: loginToken}); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return err
		}

		fmt.Printf("%s Credential stored for %s\n", greenCheck, bold(server))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginToken, "token", "", "Resource server token")
	_ = loginCmd.MarkFlagRequired("token")
}
