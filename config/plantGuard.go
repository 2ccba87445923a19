package config

import (
	"context"
	"strings"

	"github.com/amberworks/bestflow_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlantGuardPlugin scopes updates and deletes on plant-owned content to the
// request's plant_id: a plant user can read everyone's practices, but can
// only modify their own plant's rows.
//
// NOTE:
// - This does NOT apply to Raw SQL. Those queries must filter manually.
// - Reads are untouched; cross-plant visibility is the point of the portal.
// - HQ admins and internal jobs bypass via context flags.
type PlantGuardPlugin struct{}

func NewPlantGuardPlugin() *PlantGuardPlugin { return &PlantGuardPlugin{} }

func (p *PlantGuardPlugin) Name() string { return "plant_guard" }

// plantOwnedTables is the content a plant user may modify only for their own
// plant. Derived tables (leaderboard, rollups) are written by the engines
// across plants and stay out of scope.
var plantOwnedTables = map[string]bool{
	"best_practices": true,
}

func (p *PlantGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Update().Before("gorm:update").Register("plant_guard:update", plantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("plant_guard:delete", plantGuardCallback); err != nil {
		return err
	}
	return nil
}

func plantGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassPlantScope(ctx) {
		return
	}
	plantID := plantIdFromContext(ctx)
	if plantID == "" {
		return
	}
	if !plantOwnedTables[db.Statement.Table] {
		return
	}

	// Don't duplicate an explicit plant filter.
	if whereHasPlantID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "plant_id"},
				Value:  plantID,
			},
		},
	})
}

func plantIdFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(appctx.ContextKeyPlantId).(string); ok && v != "" {
		return v
	}
	return ""
}

func shouldBypassPlantScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipPlantScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsHqAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasPlantID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasPlantID(e) {
			return true
		}
	}
	return false
}

func exprHasPlantID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsPlantID(v.Column)
	case clause.Neq:
		return colIsPlantID(v.Column)
	case clause.IN:
		return colIsPlantID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasPlantID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasPlantID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "plant_id")
	default:
		return false
	}
}

func colIsPlantID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "plant_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "plant_id")
	default:
		return false
	}
}
