package utils

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// UserIDFromTokenMiddleware extracts user ID from JWT token and stores it in context
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims, ok := jwt.Get(ctx).(*AccessToken)
	if !ok {
		CreateError(iris.StatusUnauthorized, "Unauthorized", "missing access token", ctx)
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("isAdmin", claims.IsAdmin())
	ctx.Next()
}

// AdminOnlyMiddleware ensures the requester has admin or super_admin role
func AdminOnlyMiddleware(ctx iris.Context) {
	claims, ok := jwt.Get(ctx).(*AccessToken)
	if !ok || !claims.IsAdmin() {
		JSONError(ctx, iris.StatusForbidden, "forbidden", "admin access required")
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("isAdmin", true)
	ctx.Next()
}

// CurrentUser returns the caller set by one of the middlewares above.
func CurrentUser(ctx iris.Context) (id uint, isAdmin bool) {
	id, _ = ctx.Values().Get("userID").(uint)
	isAdmin, _ = ctx.Values().Get("isAdmin").(bool)
	return id, isAdmin
}
