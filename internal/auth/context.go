package auth

import "context"

// LocalOwnerID владеет отчётами, когда запрос пришёл без токена
const LocalOwnerID = "local"

type contextKey string

const userIDContextKey contextKey = "user_id"

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}

// OwnerID returns the authenticated user id or LocalOwnerID.
func OwnerID(ctx context.Context) string {
	if userID, ok := GetUserID(ctx); ok {
		return userID
	}
	return LocalOwnerID
}
