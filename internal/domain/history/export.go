package history

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
)

// ExportRow is one session in the Parquet export.
type ExportRow struct {
	SessionID       string  `parquet:"session_id"`
	CreatedAtMillis int64   `parquet:"created_at_ms"`
	Date            string  `parquet:"date"`
	OverallScore    int32   `parquet:"overall_score"`
	DensityScore    int32   `parquet:"density_score"`
	HairlineScore   int32   `parquet:"hairline_score"`
	CrownScore      int32   `parquet:"crown_score"`
	OverallDelta    *int32  `parquet:"overall_delta,optional"`
	AlertTriggered  bool    `parquet:"alert_triggered"`
	AISummary       string  `parquet:"ai_summary"`
	ComparisonNotes *string `parquet:"comparison_notes,optional"`
	Angles          string  `parquet:"angles"`
	PhotoCount      int32   `parquet:"photo_count"`
}

// ExportRows flattens sessions in the given order.
func ExportRows(sessions []analysis.Session, deltas map[uuid.UUID]Delta, photos map[uuid.UUID][]analysis.Photo) []ExportRow {
	rows := make([]ExportRow, 0, len(sessions))
	for _, s := range sessions {
		angles := make([]string, 0, len(photos[s.ID]))
		for _, p := range photos[s.ID] {
			angles = append(angles, string(p.Angle))
		}

		row := ExportRow{
			SessionID:       s.ID.String(),
			CreatedAtMillis: s.CreatedAt.UnixMilli(),
			Date:            s.CreatedAt.UTC().Format("2006-01-02"),
			OverallScore:    int32(s.OverallScore),
			DensityScore:    int32(s.DensityScore),
			HairlineScore:   int32(s.HairlineScore),
			CrownScore:      int32(s.CrownScore),
			AlertTriggered:  s.AlertTriggered,
			AISummary:       s.AISummary,
			Angles:          strings.Join(angles, ","),
			PhotoCount:      int32(len(angles)),
		}
		if d, ok := deltas[s.ID]; ok {
			v := int32(d.Overall)
			row.OverallDelta = &v
		}
		if s.ComparisonNotes.Valid {
			notes := s.ComparisonNotes.String
			row.ComparisonNotes = &notes
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteParquet writes the export file to w.
func WriteParquet(w io.Writer, sessions []analysis.Session, deltas map[uuid.UUID]Delta, photos map[uuid.UUID][]analysis.Photo) error {
	writer := parquet.NewGenericWriter[ExportRow](w)
	if _, err := writer.Write(ExportRows(sessions, deltas, photos)); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
