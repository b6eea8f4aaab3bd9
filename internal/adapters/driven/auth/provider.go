package auth

import (
	"github.com/custodia-labs/apidocs-cli/internal/config"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
)

// NewProvider picks the token provider the configuration asks for:
// ambient when use_default_credential is set, otherwise the client
// secret flow.
func NewProvider(cfg config.AzureConfig) driven.TokenProvider {
	if cfg.Auth.UseDefaultCredential {
		return NewAmbientProvider()
	}
	return NewClientSecretProvider(cfg.TenantID, cfg.ClientID, cfg.ClientSecret)
}
