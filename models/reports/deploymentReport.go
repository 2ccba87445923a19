package reports

import (
	"context"

	"github.com/amberworks/bestflow_backend/config"
	"github.com/amberworks/bestflow_backend/models"
)

type DeploymentReportRow struct {
	PracticeId      string `json:"PracticeId"`
	Title           string `json:"Title"`
	OriginPlantId   string `json:"OriginPlantId"`
	OriginPlantName string `json:"OriginPlantName"`
	CopyCount       int    `json:"CopyCount"`
	Completed       int    `json:"Completed"`
	InProgress      int    `json:"InProgress"`
	Planning        int    `json:"Planning"`
}

// GetDeploymentReport shows horizontal deployment: every benchmarked
// practice with its copy count, broken down by implementation status, most
// copied first.
func GetDeploymentReport(ctx context.Context, page models.Page) ([]*DeploymentReportRow, error) {
	page = page.Normalize()

	sql := `
SELECT
    bp.id AS practice_id,
    bp.title,
    bp.plant_id AS origin_plant_id,
    plants.name AS origin_plant_name,
    COUNT(cp.id) AS copy_count,
    COUNT(cp.id) FILTER (WHERE cp.implementation_status = 'completed') AS completed,
    COUNT(cp.id) FILTER (WHERE cp.implementation_status = 'in_progress') AS in_progress,
    COUNT(cp.id) FILTER (WHERE cp.implementation_status = 'planning') AS planning
FROM
    benchmarked_practices bmp
    JOIN best_practices bp ON bp.id = bmp.practice_id
    JOIN plants ON plants.id = bp.plant_id
    LEFT JOIN copied_practices cp ON cp.original_practice_id = bp.id
WHERE
    bp.is_deleted = false
GROUP BY bp.id, bp.title, bp.plant_id, plants.name
ORDER BY copy_count DESC, bp.title ASC
LIMIT @limit OFFSET @offset;
`

	var records []*DeploymentReportRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"limit":  page.Limit,
		"offset": page.Offset,
	}).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ExportDeploymentReport writes the deployment status to an xlsx file.
func ExportDeploymentReport(ctx context.Context, page models.Page, filename string) error {
	records, err := GetDeploymentReport(ctx, page)
	if err != nil {
		return err
	}

	exporters := make([]ExcelExporter, 0, len(records))
	for _, r := range records {
		exporters = append(exporters, r)
	}
	return exportExcel(exporters, filename,
		"Practice", "Origin Plant", "Copies", "Completed", "In Progress", "Planning",
	)
}

func (r DeploymentReportRow) GetCellValues() []interface{} {
	return []interface{}{
		r.Title,
		r.OriginPlantName,
		r.CopyCount,
		r.Completed,
		r.InProgress,
		r.Planning,
	}
}
