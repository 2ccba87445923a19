package workflow

import (
	"context"
	"time"

	"github.com/amberworks/bestflow_backend/models"
	"github.com/amberworks/bestflow_backend/utils"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	starBand5YTD     = decimal.NewFromInt(200)
	starBand5Monthly = decimal.NewFromInt(16)
	starBand4YTD     = decimal.NewFromInt(150)
	starBand4Monthly = decimal.NewFromInt(12)
	starBand3YTD     = decimal.NewFromInt(100)
	starBand3Monthly = decimal.NewFromInt(8)
	starBand2YTD     = decimal.NewFromInt(50)
	starBand2Monthly = decimal.NewFromInt(4)
)

// CalculateStars maps a plant's monthly and YTD savings (both in lakhs) to a
// 0-5 star rating. Both thresholds of a band must hold; bands are checked
// from 5 down so amounts above a band's ceiling fall through to the
// open-ended 1-star check rather than to zero.
func CalculateStars(monthlySavings, ytdSavings decimal.Decimal) int {
	if ytdSavings.GreaterThan(starBand5YTD) && monthlySavings.GreaterThan(starBand5Monthly) {
		return 5
	}
	if between(ytdSavings, starBand4YTD, starBand5YTD) && between(monthlySavings, starBand4Monthly, starBand5Monthly) {
		return 4
	}
	if between(ytdSavings, starBand3YTD, starBand4YTD) && between(monthlySavings, starBand3Monthly, starBand4Monthly) {
		return 3
	}
	if between(ytdSavings, starBand2YTD, starBand3YTD) && between(monthlySavings, starBand2Monthly, starBand3Monthly) {
		return 2
	}
	if ytdSavings.GreaterThan(starBand2YTD) && monthlySavings.GreaterThan(starBand2Monthly) {
		return 1
	}
	return 0
}

// between reports lo <= v <= hi.
func between(v, lo, hi decimal.Decimal) bool {
	return v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
}

// SavingsCalculator maintains the monthly_savings rollup from approved
// practices.
type SavingsCalculator struct {
	uow    UnitOfWork
	logger *logrus.Logger

	// IncludeCroreSavings widens the sums to crore-denominated practices
	// (converted to lakhs). Off by default: the legacy rollup counted
	// lakhs rows only.
	IncludeCroreSavings bool

	// Locker, when set, keeps concurrent RecalculateAll runs from
	// interleaving. Best effort; aggregation is idempotent either way.
	Locker *redislock.Client
}

func NewSavingsCalculator(uow UnitOfWork, logger *logrus.Logger) *SavingsCalculator {
	return &SavingsCalculator{uow: uow, logger: logger}
}

// MonthAggregate is the result of aggregating one plant-month.
type MonthAggregate struct {
	PlantId        string          `json:"plant_id"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	MonthlySavings decimal.Decimal `json:"monthly_savings"`
	YTDSavings     decimal.Decimal `json:"ytd_savings"`
	PracticeCount  int             `json:"practice_count"`
	Stars          int             `json:"stars"`
}

// AggregateMonth recomputes one plant-month from best_practices and upserts
// the monthly_savings row. Safe to run repeatedly; the rollup always lands
// on whatever the source rows currently say.
func (c *SavingsCalculator) AggregateMonth(ctx context.Context, plantId string, year, month int) (*MonthAggregate, error) {
	if month < 1 || month > 12 {
		return nil, utils.InvalidStatef("month %d out of range", month)
	}

	var aggregate *MonthAggregate
	err := c.uow.InTransaction(ctx, func(s Stores) error {
		var err error
		aggregate, err = c.aggregateMonthTx(ctx, s, plantId, year, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	return aggregate, nil
}

func (c *SavingsCalculator) aggregateMonthTx(ctx context.Context, s Stores, plantId string, year, month int) (*MonthAggregate, error) {
	monthStart, monthEnd := utils.MonthRange(year, month)
	monthly, count, err := s.Practices().SumApprovedSavings(ctx, plantId, monthStart, monthEnd, c.IncludeCroreSavings)
	if err != nil {
		return nil, err
	}

	ytdStart, ytdEnd := utils.YTDRange(year)
	ytd, _, err := s.Practices().SumApprovedSavings(ctx, plantId, ytdStart, ytdEnd, c.IncludeCroreSavings)
	if err != nil {
		return nil, err
	}

	stars := CalculateStars(monthly, ytd)

	err = s.Summaries().Upsert(ctx, &models.MonthlySavings{
		PlantId:         plantId,
		Year:            year,
		Month:           month,
		TotalSavings:    monthly,
		SavingsCurrency: models.SavingsCurrencyLakhs,
		PracticeCount:   count,
		Stars:           stars,
	})
	if err != nil {
		return nil, err
	}

	return &MonthAggregate{
		PlantId:        plantId,
		Year:           year,
		Month:          month,
		MonthlySavings: monthly,
		YTDSavings:     ytd,
		PracticeCount:  count,
		Stars:          stars,
	}, nil
}

// YTDSavings returns a plant's year-to-date approved savings in lakhs.
func (c *SavingsCalculator) YTDSavings(ctx context.Context, plantId string, year int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := c.uow.InTransaction(ctx, func(s Stores) error {
		from, to := utils.YTDRange(year)
		var err error
		total, _, err = s.Practices().SumApprovedSavings(ctx, plantId, from, to, c.IncludeCroreSavings)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// RecalculateResult summarizes a RecalculateAll run.
type RecalculateResult struct {
	Year            int `json:"year"`
	PlantsProcessed int `json:"plants_processed"`
	MonthsProcessed int `json:"months_processed"`
	TotalRecords    int `json:"total_records"`
}

const recalculateSavingsLockKey = "bestflow:recalculate-savings"

// RecalculateAll rebuilds the monthly_savings rollup for every active plant
// over the year's elapsed months. Each plant-month commits on its own, same
// as the incremental path, so a failure partway leaves earlier months
// correct rather than rolling the whole run back.
func (c *SavingsCalculator) RecalculateAll(ctx context.Context, year int) (*RecalculateResult, error) {
	if year > utils.CurrentYear() {
		return nil, utils.InvalidStatef("cannot aggregate savings for future year %d", year)
	}

	if c.Locker != nil {
		lock, err := c.Locker.Obtain(ctx, recalculateSavingsLockKey, 10*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			return nil, utils.Conflictf("savings recalculation already running")
		}
		if err != nil {
			c.logger.WithError(err).Warn("redis lock unavailable, proceeding without it")
		} else {
			defer lock.Release(context.WithoutCancel(ctx))
		}
	}

	months := utils.MonthsElapsed(year)

	var plants []models.Plant
	err := c.uow.InTransaction(ctx, func(s Stores) error {
		var err error
		plants, err = s.Plants().Active(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &RecalculateResult{Year: year, PlantsProcessed: len(plants), MonthsProcessed: len(months)}
	for _, plant := range plants {
		for _, ym := range months {
			if _, err := c.AggregateMonth(ctx, plant.Id, ym.Year, ym.Month); err != nil {
				return nil, err
			}
			result.TotalRecords++
		}
	}

	c.logger.WithFields(logrus.Fields{
		"year":          year,
		"plants":        result.PlantsProcessed,
		"months":        result.MonthsProcessed,
		"total_records": result.TotalRecords,
	}).Info("monthly savings recalculated")

	return result, nil
}
