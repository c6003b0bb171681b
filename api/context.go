package api

import (
	"context"

	"github.com/zakdoc/blog-backend/errs"
	"github.com/zakdoc/blog-backend/models"
)

type keyType string

const userKey keyType = "user"

// ctxWithUser stores the authenticated user on the request context
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ctxGetUser returns the authenticated user, or an unauthorized error when the route skipped authentication
func ctxGetUser(ctx context.Context) (*models.User, error) {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok || user == nil {
		return nil, errs.NewMissingTokenError()
	}
	return user, nil
}
