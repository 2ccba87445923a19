package reports

import (
	"context"

	"github.com/amberworks/bestflow_backend/config"
)

type LeaderboardReportRow struct {
	Rank          int    `json:"Rank" gorm:"-"`
	PlantId       string `json:"PlantId"`
	PlantName     string `json:"PlantName"`
	Division      string `json:"Division"`
	TotalPoints   int    `json:"TotalPoints"`
	OriginPoints  int    `json:"OriginPoints"`
	CopierPoints  int    `json:"CopierPoints"`
	PracticeCount int    `json:"PracticeCount"`
	CopiesMade    int    `json:"CopiesMade"`
}

// GetLeaderboardReport returns the year's standings with submission and copy
// counts per plant. Ranks are competition style: tied totals share a rank
// and the next distinct total skips past the tie.
func GetLeaderboardReport(ctx context.Context, year int) ([]*LeaderboardReportRow, error) {
	sql := `
SELECT
    le.plant_id,
    plants.name AS plant_name,
    plants.division,
    le.total_points,
    le.origin_points,
    le.copier_points,
    COALESCE(bp.practice_count, 0) AS practice_count,
    COALESCE(cp.copies_made, 0) AS copies_made
FROM
    leaderboard_entries le
    JOIN plants ON plants.id = le.plant_id
    LEFT JOIN (
        SELECT plant_id, COUNT(*) AS practice_count
        FROM best_practices
        WHERE is_deleted = false AND status = 'approved'
        GROUP BY plant_id
    ) AS bp ON bp.plant_id = le.plant_id
    LEFT JOIN (
        SELECT copying_plant_id, COUNT(*) AS copies_made
        FROM copied_practices
        GROUP BY copying_plant_id
    ) AS cp ON cp.copying_plant_id = le.plant_id
WHERE
    le.year = @year
ORDER BY le.total_points DESC, plants.name ASC;
`

	var records []*LeaderboardReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"year": year,
	}).Scan(&records).Error; err != nil {
		return nil, err
	}

	rank := 0
	previousPoints := -1
	for i, r := range records {
		if r.TotalPoints != previousPoints {
			rank = i + 1
			previousPoints = r.TotalPoints
		}
		r.Rank = rank
	}

	return records, nil
}

// ExportLeaderboardReport writes the standings to an xlsx file.
func ExportLeaderboardReport(ctx context.Context, year int, filename string) error {
	records, err := GetLeaderboardReport(ctx, year)
	if err != nil {
		return err
	}

	exporters := make([]ExcelExporter, 0, len(records))
	for _, r := range records {
		exporters = append(exporters, r)
	}
	return exportExcel(exporters, filename,
		"Rank", "Plant", "Division", "Total Points", "Origin Points", "Copier Points", "Approved Practices", "Copies Made",
	)
}

func (r LeaderboardReportRow) GetCellValues() []interface{} {
	return []interface{}{
		r.Rank,
		r.PlantName,
		r.Division,
		r.TotalPoints,
		r.OriginPoints,
		r.CopierPoints,
		r.PracticeCount,
		r.CopiesMade,
	}
}
