package workflow

import (
	"context"
	"time"

	"github.com/amberworks/bestflow_backend/models"
	"github.com/shopspring/decimal"
)

// Consumer-side store interfaces. The workflows never reach for an ambient
// DB handle; every operation receives its data access explicitly so the
// engines stay testable and transaction boundaries stay visible.
//
// "Absent row" convention: single-row getters return (nil, nil) when the row
// does not exist. Errors are reserved for storage failures.

type PracticeStore interface {
	// GetActive fetches a practice that exists and is not soft-deleted.
	GetActive(ctx context.Context, id string) (*models.BestPractice, error)
	Create(ctx context.Context, practice *models.BestPractice) error
	// SumApprovedSavings sums savings_amount over approved, non-deleted
	// practices of a plant whose submitted_date falls in [from, to], and
	// counts the matching rows. Amounts are returned in lakhs. When
	// includeCrores is false only lakhs-denominated rows participate (the
	// legacy sum); when true, crore rows are converted and included.
	SumApprovedSavings(ctx context.Context, plantId string, from, to time.Time, includeCrores bool) (decimal.Decimal, int, error)
}

type BenchmarkStore interface {
	// ForPractice returns the practice's benchmark, or nil when not benchmarked.
	ForPractice(ctx context.Context, practiceId string) (*models.BenchmarkedPractice, error)
	Create(ctx context.Context, benchmark *models.BenchmarkedPractice) error
	Delete(ctx context.Context, practiceId string) error
	// All returns every benchmark with its practice loaded, soft-deleted
	// practices included: rebuild-from-log must see the same events the
	// incremental path saw, and a practice can be deleted after being copied.
	All(ctx context.Context) ([]models.BenchmarkedPractice, error)
}

type CopyStore interface {
	Exists(ctx context.Context, originalPracticeId, copyingPlantId string) (bool, error)
	Count(ctx context.Context, originalPracticeId string) (int64, error)
	Create(ctx context.Context, copy *models.CopiedPractice) error
	// ForOriginal lists copies of a practice, newest first.
	ForOriginal(ctx context.Context, originalPracticeId string) ([]models.CopiedPractice, error)
	UpdateImplementationStatus(ctx context.Context, copyId string, status models.ImplementationStatus) error
}

type SummaryStore interface {
	// Upsert writes the rollup for the summary's (plant, year, month) grain.
	Upsert(ctx context.Context, summary *models.MonthlySavings) error
	ForPlantYear(ctx context.Context, plantId string, year int) ([]models.MonthlySavings, error)
}

type LeaderboardStore interface {
	// AddPoints increments a plant-year entry, creating it on first award.
	// total_points tracks origin_points + copier_points.
	AddPoints(ctx context.Context, plantId string, year, originDelta, copierDelta int) error
	DeleteYear(ctx context.Context, year int) error
	// EntriesForYear returns the year's entries ordered by total_points descending.
	EntriesForYear(ctx context.Context, year int) ([]models.LeaderboardEntry, error)
	Entry(ctx context.Context, plantId string, year int) (*models.LeaderboardEntry, error)
}

type PlantStore interface {
	Active(ctx context.Context) ([]models.Plant, error)
	Get(ctx context.Context, id string) (*models.Plant, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type EventStore interface {
	// Emit appends an outbox row in the current transaction; the dispatcher
	// publishes it after commit.
	Emit(ctx context.Context, eventType models.PortalEventType, practiceId, plantId string, payload any) error
}

// Stores bundles the store interfaces a transaction scope exposes.
type Stores interface {
	Practices() PracticeStore
	Benchmarks() BenchmarkStore
	Copies() CopyStore
	Summaries() SummaryStore
	Leaderboard() LeaderboardStore
	Plants() PlantStore
	Notifications() NotificationStore
	Events() EventStore

	// LockPractice serializes copy recording per original practice for the
	// remainder of the current transaction. Two concurrent copies of the
	// same original must not both observe "no copies yet" and double-award
	// origin points.
	LockPractice(ctx context.Context, practiceId string) error
}

// UnitOfWork runs a function against transactional stores. Either every
// write inside fn commits, or none do.
type UnitOfWork interface {
	InTransaction(ctx context.Context, fn func(s Stores) error) error
}
