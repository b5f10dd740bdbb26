package auth

import (
	"context"

	"github.com/WailSalutem-Health-Care/membership-service/internal/logger"
)

// ContextWithPrincipal stores the principal and tags log lines with its user id.
// Middleware calls it after a token verifies; FromContext reads it back.
func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey, principal)
	return logger.ContextWithUserID(ctx, principal.UserID)
}
