package workflow

import (
	"context"
	"time"

	"github.com/amberworks/bestflow_backend/models"
	"github.com/amberworks/bestflow_backend/utils"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

const (
	// OriginCopyPoints goes to the practice's home plant, once, when the
	// practice is copied for the first time.
	OriginCopyPoints = 10
	// CopierPoints goes to the copying plant on every copy it records.
	CopierPoints = 5
)

// LeaderboardEngine maintains the per-plant-per-year point ledger.
type LeaderboardEngine struct {
	uow    UnitOfWork
	logger *logrus.Logger

	// Locker, when set, keeps concurrent Recalculate runs from racing the
	// clear-then-rebuild window. Best effort.
	Locker *redislock.Client
}

func NewLeaderboardEngine(uow UnitOfWork, logger *logrus.Logger) *LeaderboardEngine {
	return &LeaderboardEngine{uow: uow, logger: logger}
}

// CopyAward reports the points granted for one recorded copy.
type CopyAward struct {
	OriginPlantId  string `json:"origin_plant_id"`
	CopyingPlantId string `json:"copying_plant_id"`
	OriginPoints   int    `json:"origin_points"`
	CopierPoints   int    `json:"copier_points"`
	FirstCopy      bool   `json:"first_copy"`
}

// awardForCopy applies the copy scoring rule inside an existing transaction.
// isFirstCopy must reflect the copy count BEFORE the triggering copy row was
// inserted; the caller holds the per-practice lock that makes that count
// trustworthy.
func awardForCopy(ctx context.Context, s Stores, originPlantId, copyingPlantId string, year int, isFirstCopy bool) (*CopyAward, error) {
	award := &CopyAward{
		OriginPlantId:  originPlantId,
		CopyingPlantId: copyingPlantId,
		CopierPoints:   CopierPoints,
		FirstCopy:      isFirstCopy,
	}

	if isFirstCopy {
		award.OriginPoints = OriginCopyPoints
		if err := s.Leaderboard().AddPoints(ctx, originPlantId, year, OriginCopyPoints, 0); err != nil {
			return nil, err
		}
	}
	if err := s.Leaderboard().AddPoints(ctx, copyingPlantId, year, 0, CopierPoints); err != nil {
		return nil, err
	}
	return award, nil
}

// AwardForCopy applies the copy scoring rule in its own transaction, for
// callers that record the copy row through another path. First-copy status
// is taken from the copy rows already recorded for the practice, so call it
// before inserting the triggering copy. RecordCopy bundles both steps
// atomically and is the normal entry point.
func (e *LeaderboardEngine) AwardForCopy(ctx context.Context, originalPracticeId, copyingPlantId string, year int) (*CopyAward, error) {
	var award *CopyAward
	err := e.uow.InTransaction(ctx, func(s Stores) error {
		if err := s.LockPractice(ctx, originalPracticeId); err != nil {
			return err
		}

		original, err := s.Practices().GetActive(ctx, originalPracticeId)
		if err != nil {
			return err
		}
		if original == nil {
			return utils.NotFoundf("practice %s not found", originalPracticeId)
		}

		priorCopies, err := s.Copies().Count(ctx, originalPracticeId)
		if err != nil {
			return err
		}

		award, err = awardForCopy(ctx, s, original.PlantId, copyingPlantId, year, priorCopies == 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return award, nil
}

// RecalculateSummary reports a Recalculate run.
type RecalculateSummary struct {
	Year                int `json:"year"`
	TotalEntries        int `json:"total_entries"`
	OriginPointsAwarded int `json:"origin_points_awarded"`
	CopierPointsAwarded int `json:"copier_points_awarded"`
	TotalPoints         int `json:"total_points"`
}

const recalculateLeaderboardLockKey = "bestflow:recalculate-leaderboard"

// Recalculate clears a year's entries and rebuilds them from the benchmark
// and copy log: every benchmarked practice with at least one copy earns its
// origin plant OriginCopyPoints once, and every copy earns the copying plant
// CopierPoints. Runs in one transaction so readers never see the cleared
// intermediate state, and must land on the same totals the incremental
// awards produced.
func (e *LeaderboardEngine) Recalculate(ctx context.Context, year int) (*RecalculateSummary, error) {
	if e.Locker != nil {
		lock, err := e.Locker.Obtain(ctx, recalculateLeaderboardLockKey, 5*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			return nil, utils.Conflictf("leaderboard recalculation already running")
		}
		if err != nil {
			e.logger.WithError(err).Warn("redis lock unavailable, proceeding without it")
		} else {
			defer lock.Release(context.WithoutCancel(ctx))
		}
	}

	summary := &RecalculateSummary{Year: year}
	err := e.uow.InTransaction(ctx, func(s Stores) error {
		if err := s.Leaderboard().DeleteYear(ctx, year); err != nil {
			return err
		}

		benchmarks, err := s.Benchmarks().All(ctx)
		if err != nil {
			return err
		}

		for _, benchmark := range benchmarks {
			if benchmark.Practice == nil {
				return utils.IntegrityFailuref("benchmark %s references missing practice %s", benchmark.Id, benchmark.PracticeId)
			}

			copies, err := s.Copies().ForOriginal(ctx, benchmark.PracticeId)
			if err != nil {
				return err
			}
			if len(copies) == 0 {
				continue
			}

			if err := s.Leaderboard().AddPoints(ctx, benchmark.Practice.PlantId, year, OriginCopyPoints, 0); err != nil {
				return err
			}
			summary.OriginPointsAwarded += OriginCopyPoints

			for _, copy := range copies {
				if err := s.Leaderboard().AddPoints(ctx, copy.CopyingPlantId, year, 0, CopierPoints); err != nil {
					return err
				}
				summary.CopierPointsAwarded += CopierPoints
			}
		}

		entries, err := s.Leaderboard().EntriesForYear(ctx, year)
		if err != nil {
			return err
		}
		summary.TotalEntries = len(entries)
		summary.TotalPoints = summary.OriginPointsAwarded + summary.CopierPointsAwarded

		return s.Events().Emit(ctx, models.PortalEventLeaderboardUpdated, "", "", summary)
	})
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"year":          year,
		"total_entries": summary.TotalEntries,
		"total_points":  summary.TotalPoints,
	}).Info("leaderboard recalculated")

	return summary, nil
}

// RankedEntry is a leaderboard row with its competition rank.
type RankedEntry struct {
	Rank  int                     `json:"rank"`
	Entry models.LeaderboardEntry `json:"entry"`
}

// RankedEntries returns the year's leaderboard in competition ranking: tied
// totals share a rank and the next distinct total skips past the tie, so
// points [30, 30, 20] rank [1, 1, 3].
func (e *LeaderboardEngine) RankedEntries(ctx context.Context, year int) ([]RankedEntry, error) {
	var entries []models.LeaderboardEntry
	err := e.uow.InTransaction(ctx, func(s Stores) error {
		var err error
		entries, err = s.Leaderboard().EntriesForYear(ctx, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rankEntries(entries), nil
}

func rankEntries(entries []models.LeaderboardEntry) []RankedEntry {
	ranked := make([]RankedEntry, 0, len(entries))
	rank := 0
	previousPoints := -1
	for i, entry := range entries {
		if entry.TotalPoints != previousPoints {
			rank = i + 1
			previousPoints = entry.TotalPoints
		}
		ranked = append(ranked, RankedEntry{Rank: rank, Entry: entry})
	}
	return ranked
}

// PlantStanding returns one plant's entry and rank for a year, or (nil, 0)
// when the plant has no points yet.
func (e *LeaderboardEngine) PlantStanding(ctx context.Context, plantId string, year int) (*RankedEntry, error) {
	ranked, err := e.RankedEntries(ctx, year)
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		if ranked[i].Entry.PlantId == plantId {
			return &ranked[i], nil
		}
	}
	return nil, nil
}
