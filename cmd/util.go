package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/cliconfig"
	"github.com/SolidLabResearch/user-managed-access-sub001/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()

	greenCheck = color.GreenString("✓")
	redCross   = color.RedString("✗")
)

func getClient() (*client.Client, error) {
	// we need the user to provide some server address first
	server := viper.GetString(ServerAddrKey)
	if server == "" {
		return nil, fmt.Errorf("server address not configured, provide via --server or env")
	}

	cfg, err := cliconfig.Load()
	if err != nil {
		return nil, err
	}

	var authToken string

	credential, err := cfg.GetCredential(server)
	if err != nil {
		if !errors.Is(err, cliconfig.ErrCredentialNotFound) {
			return nil, err
		}
	} else {
		authToken = credential.Token
	}

	return client.New(server, client.WithAuthToken(authToken)), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
