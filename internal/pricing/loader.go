package pricing

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Price-list column headers. The files are maintained by site staff and
// keep the original Czech names: room type, employee rate, guest rate.
const (
	colRoomType  = "POKOJ"
	colStaffRate = "CENA_Z"
	colGuestRate = "CENA_N"
)

// Load reads a rate table from a CSV or XLSX price list, chosen by file
// extension.
func Load(path string) (*RateTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return LoadCSV(path)
	}
}

// LoadCSV reads a comma-separated price list with a header row.
func LoadCSV(path string) (*RateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read price list %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("price list %s is empty", path)
	}
	return fromRows(records, path)
}

// LoadXLSX reads the first sheet of an Excel price list with a header row.
func LoadXLSX(path string) (*RateTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open price list: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("price list %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read price list %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("price list %s is empty", path)
	}
	return fromRows(rows, path)
}

func fromRows(rows [][]string, path string) (*RateTable, error) {
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colRoomType, colStaffRate, colGuestRate} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("price list %s: missing column %s", path, required)
		}
	}

	table := NewRateTable()
	for n, row := range rows[1:] {
		roomType := strings.TrimSpace(cell(row, cols[colRoomType]))
		if roomType == "" {
			continue
		}
		staffRate, err := parseRate(cell(row, cols[colStaffRate]))
		if err != nil {
			return nil, fmt.Errorf("price list %s row %d: %s: %w", path, n+2, colStaffRate, err)
		}
		guestRate, err := parseRate(cell(row, cols[colGuestRate]))
		if err != nil {
			return nil, fmt.Errorf("price list %s row %d: %s: %w", path, n+2, colGuestRate, err)
		}
		table.add(roomType, Rate{StaffRate: staffRate, GuestRate: guestRate})
	}
	if len(table.order) == 0 {
		return nil, fmt.Errorf("price list %s has no room types", path)
	}
	return table, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseRate(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative rate %q", s)
	}
	return v, nil
}
