package utils

import (
	"context"

	"github.com/amberworks/bestflow_backend/appctx"
)

// Alias the shared context key type so callers only import utils.
type contextKey = appctx.ContextKey

var (
	ContextKeyUserId         = appctx.ContextKeyUserId
	ContextKeyPlantId        = appctx.ContextKeyPlantId
	ContextKeyCorrelationId  = appctx.ContextKeyCorrelationId
	ContextKeyIsHqAdmin      = appctx.ContextKeyIsHqAdmin
	ContextKeySkipPlantScope = appctx.ContextKeySkipPlantScope
)

func GetUserIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserId)
}

func GetPlantIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyPlantId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func GetIsHqAdminFromContext(ctx context.Context) bool {
	v, ok := appctx.GetBool(ctx, ContextKeyIsHqAdmin)
	return ok && v
}

func SetUserIdInContext(ctx context.Context, userId string) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetPlantIdInContext(ctx context.Context, plantId string) context.Context {
	return appctx.Set(ctx, ContextKeyPlantId, plantId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetIsHqAdminInContext(ctx context.Context, isHqAdmin bool) context.Context {
	return appctx.Set(ctx, ContextKeyIsHqAdmin, isHqAdmin)
}

// SetSkipPlantScopeInContext marks an internal job context so the plant
// write guard stands aside.
func SetSkipPlantScopeInContext(ctx context.Context) context.Context {
	return appctx.Set(ctx, ContextKeySkipPlantScope, true)
}
