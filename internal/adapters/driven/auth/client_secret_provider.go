// Package auth supplies bearer tokens for the Azure management plane.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
)

const managementScope = "https://management.azure.com/.default"

// ClientSecretProvider obtains tokens through the OAuth2 client
// credentials flow against Microsoft Entra ID. Tokens are cached and
// refreshed by the underlying token source.
type ClientSecretProvider struct {
	source oauth2.TokenSource
}

var _ driven.TokenProvider = (*ClientSecretProvider)(nil)

// NewClientSecretProvider builds a provider for the given service
// principal.
func NewClientSecretProvider(tenantID, clientID, clientSecret string) *ClientSecretProvider {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
		Scopes:       []string{managementScope},
	}
	return &ClientSecretProvider{source: cfg.TokenSource(context.Background())}
}

// GetToken returns a valid access token, refreshing when expired.
func (p *ClientSecretProvider) GetToken(ctx context.Context) (string, error) {
	token, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("acquiring management token: %w", err)
	}
	return token.AccessToken, nil
}
