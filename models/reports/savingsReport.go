package reports

import (
	"context"

	"github.com/amberworks/bestflow_backend/config"
	"github.com/amberworks/bestflow_backend/utils"
	"github.com/shopspring/decimal"
)

type SavingsReportRow struct {
	PlantId       string          `json:"PlantId"`
	PlantName     string          `json:"PlantName"`
	Year          int             `json:"Year"`
	Month         int             `json:"Month"`
	MonthLabel    string          `json:"MonthLabel" gorm:"-"`
	TotalSavings  decimal.Decimal `json:"TotalSavings"`
	PracticeCount int             `json:"PracticeCount"`
	Stars         int             `json:"Stars"`
}

// GetSavingsReport returns the monthly_savings rollup for a year across all
// active plants, in plant/month order. Amounts are in lakhs.
func GetSavingsReport(ctx context.Context, year int) ([]*SavingsReportRow, error) {
	sql := `
SELECT
    ms.plant_id,
    plants.name AS plant_name,
    ms.year,
    ms.month,
    ms.total_savings,
    ms.practice_count,
    ms.stars
FROM
    monthly_savings ms
    JOIN plants ON plants.id = ms.plant_id
WHERE
    ms.year = @year AND plants.is_active = true
ORDER BY plants.name ASC, ms.month ASC;
`

	var records []*SavingsReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"year": year,
	}).Scan(&records).Error; err != nil {
		return nil, err
	}

	for _, r := range records {
		r.MonthLabel = utils.FormatMonthLabel(r.Year, r.Month)
	}
	return records, nil
}

type PlantSavingsSummary struct {
	PlantId      string          `json:"PlantId"`
	PlantName    string          `json:"PlantName"`
	YTDSavings   decimal.Decimal `json:"YTDSavings"`
	BestStars    int             `json:"BestStars"`
	LatestStars  int             `json:"LatestStars"`
	MonthsOnFile int             `json:"MonthsOnFile"`
}

// GetPlantSavingsSummary condenses a year to one row per plant: YTD total,
// best star rating, and the latest month's rating.
func GetPlantSavingsSummary(ctx context.Context, year int) ([]*PlantSavingsSummary, error) {
	sql := `
SELECT
    ms.plant_id,
    plants.name AS plant_name,
    SUM(ms.total_savings) AS ytd_savings,
    MAX(ms.stars) AS best_stars,
    (
        SELECT stars FROM monthly_savings latest
        WHERE latest.plant_id = ms.plant_id AND latest.year = ms.year
        ORDER BY latest.month DESC
        LIMIT 1
    ) AS latest_stars,
    COUNT(*) AS months_on_file
FROM
    monthly_savings ms
    JOIN plants ON plants.id = ms.plant_id
WHERE
    ms.year = @year AND plants.is_active = true
GROUP BY ms.plant_id, ms.year, plants.name
ORDER BY ytd_savings DESC;
`

	var records []*PlantSavingsSummary
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"year": year,
	}).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ExportSavingsReport writes the per-month rollup to an xlsx file.
func ExportSavingsReport(ctx context.Context, year int, filename string) error {
	records, err := GetSavingsReport(ctx, year)
	if err != nil {
		return err
	}

	exporters := make([]ExcelExporter, 0, len(records))
	for _, r := range records {
		exporters = append(exporters, r)
	}
	return exportExcel(exporters, filename,
		"Plant", "Month", "Total Savings (L)", "Practices", "Stars",
	)
}

func (r SavingsReportRow) GetCellValues() []interface{} {
	return []interface{}{
		r.PlantName,
		r.MonthLabel,
		r.TotalSavings,
		r.PracticeCount,
		r.Stars,
	}
}
