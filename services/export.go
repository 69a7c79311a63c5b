package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"landslide-monitor/models"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Export is a rendered trend file ready to be sent as an attachment.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportTrend renders Trend as a two column date,avg_value file.
func (h *HistoryAggregator) ExportTrend(ctx context.Context, rangeToken, metric, format string) (*Export, error) {
	if format != FormatCSV && format != FormatXLSX {
		return nil, validationError("Invalid format")
	}
	points, err := h.Trend(ctx, rangeToken, metric)
	if err != nil {
		return nil, err
	}

	exp := &Export{
		Filename: fmt.Sprintf("sensor-%s-%s-%s.%s", metric, rangeToken, h.now().UTC().Format("2006-01-02"), format),
	}
	switch format {
	case FormatXLSX:
		exp.ContentType = contentTypeXLSX
		exp.Body, err = renderTrendXLSX(metric, points)
	default:
		exp.ContentType = contentTypeCSV
		exp.Body, err = renderTrendCSV(points)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", format, err)
	}
	return exp, nil
}

func renderTrendCSV(points []models.TrendPoint) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "avg_value"}); err != nil {
		return nil, err
	}
	for _, p := range points {
		if err := w.Write([]string{p.Date, strconv.FormatFloat(p.AvgValue, 'f', -1, 64)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func renderTrendXLSX(metric string, points []models.TrendPoint) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := metric
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"date", "avg_value"}); err != nil {
		return nil, err
	}
	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{p.Date, p.AvgValue}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
