package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cenik.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "POKOJ,CENA_Z,CENA_N\nApartma,150,250\nPokoj 1,100,200\n")

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apartma", "Pokoj 1"}, table.RoomTypes())

	r, ok := table.Rate("Apartma")
	require.True(t, ok)
	assert.Equal(t, 150.0, r.StaffRate)
	assert.Equal(t, 250.0, r.GuestRate)
}

func TestLoadCSVCommaDecimals(t *testing.T) {
	path := writeCSV(t, "POKOJ,CENA_Z,CENA_N\nApartma,\"150,50\",\"250,75\"\n")

	table, err := LoadCSV(path)
	require.NoError(t, err)
	r, _ := table.Rate("Apartma")
	assert.Equal(t, 150.50, r.StaffRate)
	assert.Equal(t, 250.75, r.GuestRate)
}

func TestLoadCSVSkipsBlankRoomRows(t *testing.T) {
	path := writeCSV(t, "POKOJ,CENA_Z,CENA_N\nApartma,150,250\n,0,0\nPokoj 1,100,200\n")

	table, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apartma", "Pokoj 1"}, table.RoomTypes())
}

func TestLoadCSVErrors(t *testing.T) {
	t.Run("MissingColumn", func(t *testing.T) {
		path := writeCSV(t, "POKOJ,CENA_Z\nApartma,150\n")
		_, err := LoadCSV(path)
		assert.ErrorContains(t, err, "CENA_N")
	})

	t.Run("InvalidRate", func(t *testing.T) {
		path := writeCSV(t, "POKOJ,CENA_Z,CENA_N\nApartma,abc,250\n")
		_, err := LoadCSV(path)
		assert.ErrorContains(t, err, "invalid rate")
	})

	t.Run("NegativeRate", func(t *testing.T) {
		path := writeCSV(t, "POKOJ,CENA_Z,CENA_N\nApartma,-5,250\n")
		_, err := LoadCSV(path)
		assert.ErrorContains(t, err, "negative rate")
	})

	t.Run("NoRoomTypes", func(t *testing.T) {
		path := writeCSV(t, "POKOJ,CENA_Z,CENA_N\n")
		_, err := LoadCSV(path)
		assert.ErrorContains(t, err, "no room types")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cenik.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"POKOJ", "CENA_Z", "CENA_N"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Apartma", 150, 250}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Pokoj 1", 100, 200}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apartma", "Pokoj 1"}, table.RoomTypes())

	r, ok := table.Rate("Pokoj 1")
	require.True(t, ok)
	assert.Equal(t, 100.0, r.StaffRate)
}
