// Package export renders reservation listings into spreadsheets for the
// site managers.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"penzion/internal/models"
)

const overviewSheet = "Reservations"
const roomsSheet = "Rooms"

// WriteOverview renders the reservation overview and the per-room detail
// into an XLSX workbook at path.
func WriteOverview(path string, siteName string, rows []models.OverviewRow, reservations []*models.Reservation) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", overviewSheet)
	_ = f.SetDocProps(&excelize.DocProperties{Title: siteName + " reservations"})
	if err := writeOverviewSheet(f, rows); err != nil {
		return err
	}
	if err := writeRoomsSheet(f, reservations); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save overview %s: %w", path, err)
	}
	return nil
}

func writeOverviewSheet(f *excelize.File, rows []models.OverviewRow) error {
	headers := []string{"ID", "Guest", "Arrival", "Departure", "Nights", "Mode", "Rooms", "Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(overviewSheet, cell, h); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(overviewSheet, 1, 1, style)
	}

	for i, row := range rows {
		values := []interface{}{
			row.ID,
			row.GuestName,
			row.Arrival.Format(models.DateFormatCZ),
			row.Departure.Format(models.DateFormatCZ),
			row.Nights,
			row.Mode.String(),
			row.RoomCount,
			row.TotalPrice,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(overviewSheet, cell, v); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(overviewSheet, "A", "A", 24)
	_ = f.SetColWidth(overviewSheet, "B", "B", 28)
	_ = f.SetColWidth(overviewSheet, "C", "D", 12)
	return nil
}

func writeRoomsSheet(f *excelize.File, reservations []*models.Reservation) error {
	if _, err := f.NewSheet(roomsSheet); err != nil {
		return err
	}

	headers := []string{"Reservation", "Room", "Staff", "Guests", "Arrival", "Departure", "Nights", "Price"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(roomsSheet, cell, h); err != nil {
			return err
		}
	}

	rowIdx := 2
	for _, res := range reservations {
		for _, line := range res.ActiveLines() {
			values := []interface{}{
				res.Header.ID,
				line.RoomType,
				line.Staff,
				line.Guests,
				line.Interval.Arrival.Format(models.DateFormatCZ),
				line.Interval.Departure.Format(models.DateFormatCZ),
				line.Interval.Nights(),
				line.Price,
			}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, rowIdx)
				if err := f.SetCellValue(roomsSheet, cell, v); err != nil {
					return err
				}
			}
			rowIdx++
		}
	}

	_ = f.SetColWidth(roomsSheet, "A", "A", 24)
	_ = f.SetColWidth(roomsSheet, "E", "F", 12)
	return nil
}
