package testutil

import (
	"crypto/rsa"
	"testing"

	"github.com/WailSalutem-Health-Care/membership-service/internal/auth"
)

// CreateTestVerifier creates a verifier that accepts tokens from GenerateTestJWT.
// It returns the verifier and the private key to sign test tokens.
func CreateTestVerifier(t *testing.T) (*auth.Verifier, *rsa.PrivateKey) {
	t.Helper()

	privateKey, publicKey := GenerateTestKeyPair(t)
	jwks := auth.NewStaticJWKS(map[string]*rsa.PublicKey{TestKeyID: publicKey})

	return auth.NewVerifier(auth.Config{Issuer: TestIssuer}, jwks), privateKey
}

// TestPermissions mirrors permissions.yml
func TestPermissions() auth.Permissions {
	return auth.Permissions{
		"USER":    {"organization:create", "organization:view", "organization:join", "profile:view"},
		"SUPPORT": {"organization:view", "profile:view"},
	}
}
