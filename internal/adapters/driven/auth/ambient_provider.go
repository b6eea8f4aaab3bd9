package auth

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
)

// TokenEnvVar carries a pre-acquired management token, typically
// minted by `az account get-access-token` in CI.
const TokenEnvVar = "AZURE_ACCESS_TOKEN"

// AmbientProvider reads the token from the environment instead of
// running a credential flow.
type AmbientProvider struct{}

var _ driven.TokenProvider = (*AmbientProvider)(nil)

// NewAmbientProvider returns a provider backed by TokenEnvVar.
func NewAmbientProvider() *AmbientProvider {
	return &AmbientProvider{}
}

// GetToken returns the ambient token or ErrAuthRequired when unset.
func (p *AmbientProvider) GetToken(ctx context.Context) (string, error) {
	token := os.Getenv(TokenEnvVar)
	if token == "" {
		return "", fmt.Errorf("%s is not set: %w", TokenEnvVar, domain.ErrAuthRequired)
	}
	return token, nil
}
