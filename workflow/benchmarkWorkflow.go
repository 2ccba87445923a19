package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amberworks/bestflow_backend/models"
	"github.com/amberworks/bestflow_backend/utils"
	"github.com/sirupsen/logrus"
)

// BenchmarkManager marks practices as benchmarked (HQ-curated, copy-eligible)
// and removes the mark while no plant has copied them yet.
type BenchmarkManager struct {
	uow    UnitOfWork
	logger *logrus.Logger
}

func NewBenchmarkManager(uow UnitOfWork, logger *logrus.Logger) *BenchmarkManager {
	return &BenchmarkManager{uow: uow, logger: logger}
}

// Benchmark marks a practice as benchmarked and notifies its submitter.
// NotFound when the practice is missing or deleted; Conflict when it is
// already benchmarked.
func (m *BenchmarkManager) Benchmark(ctx context.Context, practiceId, benchmarkedByUserId string) (*models.BenchmarkedPractice, error) {
	var benchmark *models.BenchmarkedPractice
	err := m.uow.InTransaction(ctx, func(s Stores) error {
		practice, err := s.Practices().GetActive(ctx, practiceId)
		if err != nil {
			return err
		}
		if practice == nil {
			return utils.NotFoundf("practice %s not found", practiceId)
		}

		existing, err := s.Benchmarks().ForPractice(ctx, practiceId)
		if err != nil {
			return err
		}
		if existing != nil {
			return utils.Conflictf("practice %s is already benchmarked", practiceId)
		}

		now := time.Now().UTC()
		benchmark = &models.BenchmarkedPractice{
			PracticeId:          practiceId,
			BenchmarkedByUserId: benchmarkedByUserId,
			BenchmarkedDate:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		}
		if err := s.Benchmarks().Create(ctx, benchmark); err != nil {
			return err
		}

		err = s.Notifications().Create(ctx, &models.Notification{
			UserId:            practice.SubmittedByUserId,
			Type:              models.NotificationTypePracticeBenchmarked,
			Title:             "Your practice was benchmarked",
			Message:           fmt.Sprintf("%q was selected as a benchmarked practice", practice.Title),
			RelatedPracticeId: practice.Id,
		})
		if err != nil {
			return err
		}

		return s.Events().Emit(ctx, models.PortalEventPracticeBenchmarked, practiceId, practice.PlantId, map[string]any{
			"practice_id":    practiceId,
			"plant_id":       practice.PlantId,
			"benchmarked_by": benchmarkedByUserId,
		})
	})
	if err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"practice_id":    practiceId,
		"benchmarked_by": benchmarkedByUserId,
	}).Info("practice benchmarked")

	return benchmark, nil
}

// Unbenchmark removes a practice's benchmark. NotFound when the practice is
// not benchmarked; Conflict once any plant has copied it, because removing
// the benchmark then would orphan awarded points and provenance.
func (m *BenchmarkManager) Unbenchmark(ctx context.Context, practiceId string) error {
	err := m.uow.InTransaction(ctx, func(s Stores) error {
		benchmark, err := s.Benchmarks().ForPractice(ctx, practiceId)
		if err != nil {
			return err
		}
		if benchmark == nil {
			return utils.NotFoundf("practice %s is not benchmarked", practiceId)
		}

		copyCount, err := s.Copies().Count(ctx, practiceId)
		if err != nil {
			return err
		}
		if copyCount > 0 {
			return utils.Conflictf("cannot unbenchmark: practice has been copied by %d plant(s)", copyCount)
		}

		if err := s.Benchmarks().Delete(ctx, practiceId); err != nil {
			return err
		}

		return s.Events().Emit(ctx, models.PortalEventPracticeUnbenchmarked, practiceId, "", map[string]any{
			"practice_id": practiceId,
		})
	})
	if err != nil {
		return err
	}

	m.logger.WithField("practice_id", practiceId).Info("practice unbenchmarked")
	return nil
}

// IsBenchmarked reports whether a practice currently carries a benchmark.
func (m *BenchmarkManager) IsBenchmarked(ctx context.Context, practiceId string) (bool, error) {
	var benchmarked bool
	err := m.uow.InTransaction(ctx, func(s Stores) error {
		benchmark, err := s.Benchmarks().ForPractice(ctx, practiceId)
		if err != nil {
			return err
		}
		benchmarked = benchmark != nil
		return nil
	})
	return benchmarked, err
}
