package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amberworks/bestflow_backend/models"
	"github.com/amberworks/bestflow_backend/utils"
	"github.com/sirupsen/logrus"
)

// CopyTracker records horizontal deployment: one plant adopting another
// plant's benchmarked practice.
type CopyTracker struct {
	uow    UnitOfWork
	logger *logrus.Logger
}

func NewCopyTracker(uow UnitOfWork, logger *logrus.Logger) *CopyTracker {
	return &CopyTracker{uow: uow, logger: logger}
}

// CopyInput carries everything RecordCopy needs. ImplementationStatus
// defaults to planning when empty.
type CopyInput struct {
	OriginalPracticeId   string
	CopyingPlantId       string
	CopiedByUserId       string
	CustomizedTitle      *string
	CustomizedSolution   *string
	ImplementationStatus models.ImplementationStatus
}

// CopyResult is what one successful RecordCopy produced.
type CopyResult struct {
	DerivedPractice *models.BestPractice   `json:"derived_practice"`
	CopyRecord      *models.CopiedPractice `json:"copy_record"`
	PointsAwarded   *CopyAward             `json:"points_awarded"`
}

// RecordCopy copies a benchmarked practice into the copying plant: it creates
// the derivative practice, the provenance row, and the leaderboard award in
// one transaction, then emits copy.recorded through the outbox.
//
// Preconditions, checked in order:
//  1. the original exists and is not deleted (NotFound)
//  2. the original is benchmarked (InvalidState)
//  3. the copying plant is not the origin plant (InvalidState)
//  4. the copying plant has not copied this original before (Conflict)
func (t *CopyTracker) RecordCopy(ctx context.Context, input CopyInput) (*CopyResult, error) {
	if input.ImplementationStatus == "" {
		input.ImplementationStatus = models.ImplementationStatusPlanning
	}
	if !input.ImplementationStatus.Valid() {
		return nil, utils.InvalidStatef("unknown implementation status %q", input.ImplementationStatus)
	}

	var result *CopyResult
	err := t.uow.InTransaction(ctx, func(s Stores) error {
		// Serialize per original so two concurrent first copies cannot
		// both read "no copies yet" and double-award origin points.
		if err := s.LockPractice(ctx, input.OriginalPracticeId); err != nil {
			return err
		}

		original, err := s.Practices().GetActive(ctx, input.OriginalPracticeId)
		if err != nil {
			return err
		}
		if original == nil {
			return utils.NotFoundf("practice %s not found", input.OriginalPracticeId)
		}

		benchmark, err := s.Benchmarks().ForPractice(ctx, input.OriginalPracticeId)
		if err != nil {
			return err
		}
		if benchmark == nil {
			return utils.InvalidStatef("practice %s must be benchmarked before it can be copied", input.OriginalPracticeId)
		}

		if original.PlantId == input.CopyingPlantId {
			return utils.InvalidStatef("cannot copy a practice from your own plant")
		}

		exists, err := s.Copies().Exists(ctx, input.OriginalPracticeId, input.CopyingPlantId)
		if err != nil {
			return err
		}
		if exists {
			return utils.Conflictf("plant %s has already copied practice %s", input.CopyingPlantId, input.OriginalPracticeId)
		}

		// First-copy status is decided by the count before this copy
		// lands, under the lock taken above.
		priorCopies, err := s.Copies().Count(ctx, input.OriginalPracticeId)
		if err != nil {
			return err
		}

		derived := original.DeriveForCopy(input.CopyingPlantId, input.CopiedByUserId, input.CustomizedTitle, input.CustomizedSolution)
		if err := s.Practices().Create(ctx, derived); err != nil {
			return err
		}

		now := time.Now().UTC()
		copyRecord := &models.CopiedPractice{
			OriginalPracticeId:   input.OriginalPracticeId,
			CopiedPracticeId:     derived.Id,
			CopyingPlantId:       input.CopyingPlantId,
			CopiedDate:           time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			ImplementationStatus: input.ImplementationStatus,
		}
		if err := s.Copies().Create(ctx, copyRecord); err != nil {
			return err
		}

		award, err := awardForCopy(ctx, s, original.PlantId, input.CopyingPlantId, utils.CurrentYear(), priorCopies == 0)
		if err != nil {
			return err
		}

		err = s.Notifications().Create(ctx, &models.Notification{
			UserId:            original.SubmittedByUserId,
			Type:              models.NotificationTypePracticeCopied,
			Title:             "Your practice was copied",
			Message:           fmt.Sprintf("%q was copied by another plant", original.Title),
			RelatedPracticeId: original.Id,
		})
		if err != nil {
			return err
		}

		err = s.Events().Emit(ctx, models.PortalEventCopyRecorded, input.OriginalPracticeId, input.CopyingPlantId, map[string]any{
			"original_practice_id": input.OriginalPracticeId,
			"derived_practice_id":  derived.Id,
			"copying_plant_id":     input.CopyingPlantId,
			"origin_plant_id":      original.PlantId,
			"first_copy":           award.FirstCopy,
		})
		if err != nil {
			return err
		}

		result = &CopyResult{DerivedPractice: derived, CopyRecord: copyRecord, PointsAwarded: award}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.WithFields(logrus.Fields{
		"original_practice_id": input.OriginalPracticeId,
		"derived_practice_id":  result.DerivedPractice.Id,
		"copying_plant_id":     input.CopyingPlantId,
		"first_copy":           result.PointsAwarded.FirstCopy,
	}).Info("copy recorded")

	return result, nil
}

// CopiesOf lists the copies of a practice, newest first.
func (t *CopyTracker) CopiesOf(ctx context.Context, originalPracticeId string) ([]models.CopiedPractice, error) {
	var copies []models.CopiedPractice
	err := t.uow.InTransaction(ctx, func(s Stores) error {
		var err error
		copies, err = s.Copies().ForOriginal(ctx, originalPracticeId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return copies, nil
}

// CopyCount returns how many plants have copied a practice.
func (t *CopyTracker) CopyCount(ctx context.Context, originalPracticeId string) (int64, error) {
	var count int64
	err := t.uow.InTransaction(ctx, func(s Stores) error {
		var err error
		count, err = s.Copies().Count(ctx, originalPracticeId)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateImplementationStatus moves a copy along
// planning -> in_progress -> completed. Any transition between valid
// statuses is allowed.
func (t *CopyTracker) UpdateImplementationStatus(ctx context.Context, copyId string, status models.ImplementationStatus) error {
	if !status.Valid() {
		return utils.InvalidStatef("unknown implementation status %q", status)
	}
	return t.uow.InTransaction(ctx, func(s Stores) error {
		return s.Copies().UpdateImplementationStatus(ctx, copyId, status)
	})
}
