package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> utils).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyUserId        = ContextKey("UserId")
	ContextKeyPlantId       = ContextKey("PlantId")
	ContextKeyCorrelationId = ContextKey("CorrelationId")

	// ContextKeyIsHqAdmin is true for HQ admins. HQ-only operations
	// (benchmarking, recalculation) check it in the surrounding API layer.
	ContextKeyIsHqAdmin = ContextKey("IsHqAdmin")

	// ContextKeySkipPlantScope bypasses the plant write guard for internal
	// jobs (recalculation, seeding, the copy workflow's cross-plant writes).
	ContextKeySkipPlantScope = ContextKey("SkipPlantScope")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetBool(ctx context.Context, key ContextKey) (bool, bool) {
	v, ok := ctx.Value(key).(bool)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}
