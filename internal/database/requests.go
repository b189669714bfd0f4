package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"penzion/internal/models"
)

// CreateRequest stores a new pending request with its room list as JSON.
func (db *DB) CreateRequest(ctx context.Context, req *models.Request) error {
	roomsJSON, err := json.Marshal(req.Rooms)
	if err != nil {
		return &models.StoreError{Op: "encode request rooms", Err: err}
	}

	var arrival, departure interface{}
	if !req.Arrival.IsZero() {
		arrival = req.Arrival.Format(models.DateFormatISO)
	}
	if !req.Departure.IsZero() {
		departure = req.Departure.Format(models.DateFormatISO)
	}
	perRoom := 0
	if req.PerRoom {
		perRoom = 1
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO requests(req_id, guest_name, contact, arrival, departure, nights, people, per_room, rooms_json, status, note, created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		req.ReqID, req.GuestName, req.Contact, arrival, departure,
		req.Nights, req.People, perRoom, string(roomsJSON), req.Status, req.Note, req.CreatedAt,
	)
	if err != nil {
		return &models.StoreError{Op: "insert request", Err: err}
	}

	db.logger.Info().Str("req_id", req.ReqID).Str("guest", req.GuestName).Msg("Request created")
	return nil
}

// GetRequest fetches one request with its decoded room list.
func (db *DB) GetRequest(ctx context.Context, reqID string) (*models.Request, error) {
	row := db.QueryRowContext(ctx, `
		SELECT req_id, guest_name, contact, arrival, departure, nights, people, per_room, rooms_json, status, note, created_at
		FROM requests WHERE req_id = ?`, reqID)

	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Kind: "request", ID: reqID}
	}
	if err != nil {
		return nil, &models.StoreError{Op: "fetch request", Err: err}
	}
	return req, nil
}

// ListRequests returns requests newest first, optionally filtered by status.
func (db *DB) ListRequests(ctx context.Context, status string) ([]models.Request, error) {
	query := `
		SELECT req_id, guest_name, contact, arrival, departure, nights, people, per_room, rooms_json, status, note, created_at
		FROM requests`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.StoreError{Op: "list requests", Err: err}
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, &models.StoreError{Op: "scan request", Err: err}
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StoreError{Op: "list requests", Err: err}
	}
	return requests, nil
}

// UpdateRequestStatus sets a request's status.
func (db *DB) UpdateRequestStatus(ctx context.Context, reqID, status string) error {
	result, err := db.ExecContext(ctx, "UPDATE requests SET status = ? WHERE req_id = ?", status, reqID)
	if err != nil {
		return &models.StoreError{Op: "update request status", Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return &models.StoreError{Op: "update request status", Err: err}
	}
	if affected == 0 {
		return &models.NotFoundError{Kind: "request", ID: reqID}
	}

	db.logger.Info().Str("req_id", reqID).Str("status", status).Msg("Request status updated")
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	var (
		req                          models.Request
		contact, arrival, depa, note sql.NullString
		perRoom                      int
		roomsJSON                    string
		createdAt                    time.Time
	)
	if err := row.Scan(&req.ReqID, &req.GuestName, &contact, &arrival, &depa,
		&req.Nights, &req.People, &perRoom, &roomsJSON, &req.Status, &note, &createdAt); err != nil {
		return nil, err
	}
	req.Contact = contact.String
	req.Note = note.String
	req.PerRoom = perRoom == 1
	req.CreatedAt = createdAt
	if arrival.Valid {
		if t, err := models.ParseISODate(arrival.String); err == nil {
			req.Arrival = t
		}
	}
	if depa.Valid {
		if t, err := models.ParseISODate(depa.String); err == nil {
			req.Departure = t
		}
	}
	// Decoding is best effort here; promotion decodes RoomsRaw strictly so
	// a corrupt payload fails promotion, not listing.
	req.RoomsRaw = json.RawMessage(roomsJSON)
	if err := json.Unmarshal(req.RoomsRaw, &req.Rooms); err != nil {
		req.Rooms = nil
	}
	return &req, nil
}
