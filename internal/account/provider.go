package account

import "context"

// SessionProvider is the identity provider behind sign-up, sign-in and sign-out
type SessionProvider interface {
	SignUp(ctx context.Context, input SignUpInput) (string, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, refreshToken string) error
}

var _ SessionProvider = (*KeycloakProvider)(nil)
