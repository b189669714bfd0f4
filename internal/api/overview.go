package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"penzion/internal/export"
	"penzion/internal/metrics"
	"penzion/internal/models"
)

// OverviewEntry is one reservation in the overview listing.
type OverviewEntry struct {
	ID         string  `json:"id"`
	GuestName  string  `json:"guest_name"`
	Arrival    string  `json:"arrival"`
	Departure  string  `json:"departure"`
	Nights     int     `json:"nights"`
	Mode       string  `json:"mode"`
	RoomCount  int     `json:"room_count"`
	TotalPrice float64 `json:"total_price"`
}

// handleOverview lists committed reservations.
// GET /api/overview
// GET /api/overview?format=xlsx downloads the spreadsheet instead.
func (s *HTTPServer) handleOverview(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("overview")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	site, ok := s.site(r.URL.Query().Get("site"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}

	rows, err := site.Booking.Overview(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		s.serveOverviewExport(w, r, site, rows)
		return
	}

	entries := make([]OverviewEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, OverviewEntry{
			ID:         row.ID,
			GuestName:  row.GuestName,
			Arrival:    row.Arrival.Format(models.DateFormatISO),
			Departure:  row.Departure.Format(models.DateFormatISO),
			Nights:     row.Nights,
			Mode:       row.Mode.String(),
			RoomCount:  row.RoomCount,
			TotalPrice: row.TotalPrice,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reservations": entries})
}

func (s *HTTPServer) serveOverviewExport(w http.ResponseWriter, r *http.Request, site *Site, rows []models.OverviewRow) {
	reservations := make([]*models.Reservation, 0, len(rows))
	for _, row := range rows {
		res, err := site.Booking.GetReservation(r.Context(), row.ID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		reservations = append(reservations, res)
	}

	dir, err := os.MkdirTemp("", "penzion-export")
	if err != nil {
		s.logger.Error().Err(err).Msg("Overview export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "overview.xlsx")
	if err := export.WriteOverview(path, site.Name, rows, reservations); err != nil {
		s.logger.Error().Err(err).Msg("Overview export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	filename := site.Name + "-overview-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}
