package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/amberworks/bestflow_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStores is the production Stores implementation. One instance wraps
// either the root *gorm.DB (plain reads) or a transaction handle (inside
// GormUnitOfWork.InTransaction).
type GormStores struct {
	db *gorm.DB
}

func NewGormStores(db *gorm.DB) *GormStores {
	return &GormStores{db: db}
}

func (s *GormStores) Practices() PracticeStore         { return (*gormPracticeStore)(s) }
func (s *GormStores) Benchmarks() BenchmarkStore       { return (*gormBenchmarkStore)(s) }
func (s *GormStores) Copies() CopyStore                { return (*gormCopyStore)(s) }
func (s *GormStores) Summaries() SummaryStore          { return (*gormSummaryStore)(s) }
func (s *GormStores) Leaderboard() LeaderboardStore    { return (*gormLeaderboardStore)(s) }
func (s *GormStores) Plants() PlantStore               { return (*gormPlantStore)(s) }
func (s *GormStores) Notifications() NotificationStore { return (*gormNotificationStore)(s) }
func (s *GormStores) Events() EventStore               { return (*gormEventStore)(s) }

// LockPractice takes a Postgres transaction-scoped advisory lock keyed on the
// practice id. Released automatically at commit/rollback, so it must be
// called on a transaction handle.
func (s *GormStores) LockPractice(ctx context.Context, practiceId string) error {
	return s.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", practiceId).Error
}

// GormUnitOfWork maps UnitOfWork onto gorm's transaction support.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) InTransaction(ctx context.Context, fn func(s Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStores(tx))
	})
}

type gormPracticeStore GormStores

func (s *gormPracticeStore) GetActive(ctx context.Context, id string) (*models.BestPractice, error) {
	var practice models.BestPractice
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&practice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &practice, nil
}

func (s *gormPracticeStore) Create(ctx context.Context, practice *models.BestPractice) error {
	return s.db.WithContext(ctx).Create(practice).Error
}

func (s *gormPracticeStore) SumApprovedSavings(ctx context.Context, plantId string, from, to time.Time, includeCrores bool) (decimal.Decimal, int, error) {
	var result struct {
		Total         decimal.Decimal
		PracticeCount int
	}

	q := s.db.WithContext(ctx).Model(&models.BestPractice{}).
		Where("plant_id = ? AND is_deleted = ? AND status = ?", plantId, false, models.PracticeStatusApproved).
		Where("submitted_date BETWEEN ? AND ?", from, to)

	if includeCrores {
		q = q.
			Select("COALESCE(SUM(CASE WHEN savings_currency = ? THEN savings_amount * 100 ELSE savings_amount END), 0) AS total, COUNT(*) AS practice_count",
				models.SavingsCurrencyCrores).
			Where("savings_currency IN ?", []models.SavingsCurrency{models.SavingsCurrencyLakhs, models.SavingsCurrencyCrores})
	} else {
		// Legacy sum: lakhs-denominated rows only.
		q = q.
			Select("COALESCE(SUM(savings_amount), 0) AS total, COUNT(*) AS practice_count").
			Where("savings_currency = ?", models.SavingsCurrencyLakhs)
	}

	if err := q.Scan(&result).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return result.Total, result.PracticeCount, nil
}

type gormBenchmarkStore GormStores

func (s *gormBenchmarkStore) ForPractice(ctx context.Context, practiceId string) (*models.BenchmarkedPractice, error) {
	var benchmark models.BenchmarkedPractice
	err := s.db.WithContext(ctx).
		Where("practice_id = ?", practiceId).
		First(&benchmark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &benchmark, nil
}

func (s *gormBenchmarkStore) Create(ctx context.Context, benchmark *models.BenchmarkedPractice) error {
	return s.db.WithContext(ctx).Create(benchmark).Error
}

func (s *gormBenchmarkStore) Delete(ctx context.Context, practiceId string) error {
	return s.db.WithContext(ctx).
		Where("practice_id = ?", practiceId).
		Delete(&models.BenchmarkedPractice{}).Error
}

func (s *gormBenchmarkStore) All(ctx context.Context) ([]models.BenchmarkedPractice, error) {
	var benchmarks []models.BenchmarkedPractice
	err := s.db.WithContext(ctx).
		Preload("Practice").
		Order("benchmarked_date asc, created_at asc").
		Find(&benchmarks).Error
	if err != nil {
		return nil, err
	}
	return benchmarks, nil
}

type gormCopyStore GormStores

func (s *gormCopyStore) Exists(ctx context.Context, originalPracticeId, copyingPlantId string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CopiedPractice{}).
		Where("original_practice_id = ? AND copying_plant_id = ?", originalPracticeId, copyingPlantId).
		Count(&count).Error
	return count > 0, err
}

func (s *gormCopyStore) Count(ctx context.Context, originalPracticeId string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CopiedPractice{}).
		Where("original_practice_id = ?", originalPracticeId).
		Count(&count).Error
	return count, err
}

func (s *gormCopyStore) Create(ctx context.Context, copy *models.CopiedPractice) error {
	return s.db.WithContext(ctx).Create(copy).Error
}

func (s *gormCopyStore) ForOriginal(ctx context.Context, originalPracticeId string) ([]models.CopiedPractice, error) {
	var copies []models.CopiedPractice
	err := s.db.WithContext(ctx).
		Where("original_practice_id = ?", originalPracticeId).
		Order("copied_date desc, created_at desc").
		Find(&copies).Error
	if err != nil {
		return nil, err
	}
	return copies, nil
}

func (s *gormCopyStore) UpdateImplementationStatus(ctx context.Context, copyId string, status models.ImplementationStatus) error {
	return s.db.WithContext(ctx).Model(&models.CopiedPractice{}).
		Where("id = ?", copyId).
		Update("implementation_status", status).Error
}

type gormSummaryStore GormStores

func (s *gormSummaryStore) Upsert(ctx context.Context, summary *models.MonthlySavings) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "plant_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_savings", "practice_count", "stars", "updated_at",
		}),
	}).Create(summary).Error
}

func (s *gormSummaryStore) ForPlantYear(ctx context.Context, plantId string, year int) ([]models.MonthlySavings, error) {
	var summaries []models.MonthlySavings
	err := s.db.WithContext(ctx).
		Where("plant_id = ? AND year = ?", plantId, year).
		Order("month asc").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

type gormLeaderboardStore GormStores

func (s *gormLeaderboardStore) AddPoints(ctx context.Context, plantId string, year, originDelta, copierDelta int) error {
	db := s.db.WithContext(ctx)

	var entry models.LeaderboardEntry
	err := db.
		Where(models.LeaderboardEntry{PlantId: plantId, Year: year}).
		FirstOrCreate(&entry).Error
	if err != nil {
		return err
	}

	return db.Model(&models.LeaderboardEntry{}).
		Where("plant_id = ? AND year = ?", plantId, year).
		Updates(map[string]interface{}{
			"origin_points": gorm.Expr("origin_points + ?", originDelta),
			"copier_points": gorm.Expr("copier_points + ?", copierDelta),
			"total_points":  gorm.Expr("total_points + ?", originDelta+copierDelta),
		}).Error
}

func (s *gormLeaderboardStore) DeleteYear(ctx context.Context, year int) error {
	return s.db.WithContext(ctx).
		Where("year = ?", year).
		Delete(&models.LeaderboardEntry{}).Error
}

func (s *gormLeaderboardStore) EntriesForYear(ctx context.Context, year int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.db.WithContext(ctx).
		Where("year = ?", year).
		Order("total_points desc, plant_id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *gormLeaderboardStore) Entry(ctx context.Context, plantId string, year int) (*models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := s.db.WithContext(ctx).
		Where("plant_id = ? AND year = ?", plantId, year).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type gormPlantStore GormStores

func (s *gormPlantStore) Active(ctx context.Context) ([]models.Plant, error) {
	return models.ActivePlants(ctx, s.db)
}

func (s *gormPlantStore) Get(ctx context.Context, id string) (*models.Plant, error) {
	plant, err := models.GetPlant(ctx, s.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return plant, err
}

type gormNotificationStore GormStores

func (s *gormNotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	return s.db.WithContext(ctx).Create(notification).Error
}

type gormEventStore GormStores

func (s *gormEventStore) Emit(ctx context.Context, eventType models.PortalEventType, practiceId, plantId string, payload any) error {
	return models.EmitPortalEvent(ctx, s.db, eventType, practiceId, plantId, payload)
}
