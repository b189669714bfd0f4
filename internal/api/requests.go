package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"penzion/internal/metrics"
	"penzion/internal/models"
)

// SubmitRequestBody is the request body for POST /api/requests.
type SubmitRequestBody struct {
	Site      string            `json:"site"`
	GuestName string            `json:"guest_name"`
	Contact   string            `json:"contact"`
	Arrival   string            `json:"arrival,omitempty"`   // Format: YYYY-MM-DD
	Departure string            `json:"departure,omitempty"` // Format: YYYY-MM-DD
	People    int               `json:"people,omitempty"`
	PerRoom   bool              `json:"per_room,omitempty"`
	Note      string            `json:"note,omitempty"`
	Rooms     []RoomLinePayload `json:"rooms"`
}

// RoomLinePayload is one requested room in a submission.
type RoomLinePayload struct {
	RoomType  string `json:"room_type"`
	Staff     int    `json:"staff"`
	Guests    int    `json:"guests"`
	Arrival   string `json:"arrival,omitempty"`
	Departure string `json:"departure,omitempty"`
}

// handleRequests serves the public request workflow.
// POST /api/requests submits a new stay request.
// GET /api/requests lists requests, optionally ?status=new.
func (s *HTTPServer) handleRequests(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("requests")

	switch r.Method {
	case http.MethodPost:
		s.submitRequest(w, r)
	case http.MethodGet:
		s.listRequests(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET or POST")
	}
}

func (s *HTTPServer) submitRequest(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r.RemoteAddr) {
		writeError(w, http.StatusTooManyRequests, "too many requests; try again later")
		return
	}

	var body SubmitRequestBody
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	site, ok := s.site(body.Site)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}

	req, problems := requestFromPayload(&body)
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "validation failed",
			"problems": problems,
		})
		return
	}

	reqID, err := site.Requests.SubmitRequest(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"req_id": reqID})
}

func (s *HTTPServer) listRequests(w http.ResponseWriter, r *http.Request) {
	site, ok := s.site(r.URL.Query().Get("site"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !models.KnownStatus(status) {
		writeError(w, http.StatusBadRequest, "unknown status "+status)
		return
	}

	requests, err := site.Requests.ListRequests(r.Context(), status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// PromoteBody is the request body for POST /api/requests/promote.
type PromoteBody struct {
	Site  string `json:"site"`
	ReqID string `json:"req_id"`
}

// handlePromote converts a pending request into a committed reservation.
// POST /api/requests/promote
func (s *HTTPServer) handlePromote(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("promote")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var body PromoteBody
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ReqID == "" {
		writeError(w, http.StatusBadRequest, "req_id is required")
		return
	}

	site, ok := s.site(body.Site)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}

	bookingID, err := site.Requests.PromoteRequest(r.Context(), body.ReqID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"req_id":     body.ReqID,
		"booking_id": bookingID,
	})
}

// writeServiceError maps the service error kinds onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "validation failed",
			"problems": validationErr.Problems,
		})
		return
	}

	var notFoundErr *models.NotFoundError
	if errors.As(err, &notFoundErr) {
		writeError(w, http.StatusNotFound, notFoundErr.Error())
		return
	}

	var conflictErr *models.ConflictError
	if errors.As(err, &conflictErr) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":     "rooms are not available",
			"conflicts": conflictErr.Conflicts,
		})
		return
	}

	var duplicateErr *models.DuplicateIDError
	if errors.As(err, &duplicateErr) {
		writeError(w, http.StatusConflict, duplicateErr.Error())
		return
	}

	s.logger.Error().Err(err).Msg("Request handling failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func requestFromPayload(body *SubmitRequestBody) (*models.Request, []string) {
	var problems []string

	req := &models.Request{
		GuestName: body.GuestName,
		Contact:   body.Contact,
		People:    body.People,
		PerRoom:   body.PerRoom,
		Note:      body.Note,
	}

	if body.Arrival != "" || body.Departure != "" {
		arrival, err := models.ParseISODate(body.Arrival)
		if err != nil {
			problems = append(problems, "invalid arrival date; expected YYYY-MM-DD")
		}
		departure, err := models.ParseISODate(body.Departure)
		if err != nil {
			problems = append(problems, "invalid departure date; expected YYYY-MM-DD")
		}
		req.Arrival = arrival
		req.Departure = departure
	}

	if len(body.Rooms) > models.MaxRooms {
		problems = append(problems, "too many rooms requested")
	}
	for i, line := range body.Rooms {
		roomLine := models.RoomLine{
			Index:    i,
			RoomType: line.RoomType,
			Staff:    line.Staff,
			Guests:   line.Guests,
		}
		if line.Arrival != "" || line.Departure != "" {
			arrival, errA := models.ParseISODate(line.Arrival)
			departure, errD := models.ParseISODate(line.Departure)
			if errA != nil || errD != nil {
				problems = append(problems, "room "+line.RoomType+": invalid dates; expected YYYY-MM-DD")
			} else {
				roomLine.Interval = models.StayInterval{Arrival: arrival, Departure: departure}
			}
		}
		req.Rooms = append(req.Rooms, roomLine)
	}

	return req, problems
}
