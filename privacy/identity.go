package privacy

import (
	"context"

	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/go-chi/jwtauth/v5"
)

// PrivacyPublicKeyClaim is the JWT claim carrying the caller's enclave key.
const PrivacyPublicKeyClaim = "privacyPublicKey"

// EnclavePublicKeyProvider resolves the enclave key a request acts as.
type EnclavePublicKeyProvider struct {
	defaultKey string
}

func NewEnclavePublicKeyProvider(defaultKey string) *EnclavePublicKeyProvider {
	return &EnclavePublicKeyProvider{defaultKey: defaultKey}
}

// EnclavePublicKey returns the privacyPublicKey claim of the verified JWT in
// ctx, or the configured key when there is none.
func (p *EnclavePublicKeyProvider) EnclavePublicKey(ctx context.Context) string {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return p.defaultKey
	}
	if key, ok := claims[PrivacyPublicKeyClaim].(string); ok && key != "" {
		return key
	}
	log.Trace("token has no privacy key claim, using default", "subject", token.Subject())
	return p.defaultKey
}
