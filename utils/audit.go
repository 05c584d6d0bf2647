package utils

import (
	"context"
	"net"
	"strings"

	"vehicle-rental-server/services"

	"github.com/kataras/iris/v12"
)

// RequestContext is the request's context carrying the client IP, which
// lands on every audit entry the request produces.
func RequestContext(ctx iris.Context) context.Context {
	return services.WithClientIP(ctx.Request().Context(), clientIP(ctx))
}

func clientIP(ctx iris.Context) string {
	if fwd := ctx.GetHeader("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	ip, _, err := net.SplitHostPort(ctx.Request().RemoteAddr)
	if err != nil {
		return ctx.Request().RemoteAddr
	}
	return ip
}
