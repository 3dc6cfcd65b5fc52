package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

var ErrInvalidUserID = errors.New("invalid_user_id")

// ParseUserID reads a snowflake user ID from its string form.
func ParseUserID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, ErrInvalidUserID
	}
	return id, nil
}

// Identity is the authenticated principal attached to every request context.
// RegionID is zero for principals that are not region-scoped.
type Identity struct {
	UserID   snowflake.ID
	Username string
	Role     string
	RegionID snowflake.ID
}

type identityKey struct{}
type requestIDKey struct{}
type ipAddressKey struct{}
type userAgentKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}
	return id, true
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithIPAddress(ctx context.Context, ip string) context.Context {
	if strings.TrimSpace(ip) == "" {
		return ctx
	}
	return context.WithValue(ctx, ipAddressKey{}, ip)
}

func IPAddressFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ipAddressKey{}).(string); ok {
		return v
	}
	return ""
}

func WithUserAgent(ctx context.Context, ua string) context.Context {
	if strings.TrimSpace(ua) == "" {
		return ctx
	}
	return context.WithValue(ctx, userAgentKey{}, ua)
}

func UserAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}
