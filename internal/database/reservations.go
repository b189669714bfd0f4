package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"penzion/internal/availability"
	"penzion/internal/models"
)

// ExistingStays returns every committed (reservation id, room type, interval)
// triple for conflict scanning and calendar views.
func (db *DB) ExistingStays(ctx context.Context) ([]models.ExistingStay, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, room_type, arrival, departure
		FROM reservation_rooms
		WHERE room_type <> ''`)
	if err != nil {
		return nil, &models.StoreError{Op: "existing stays", Err: err}
	}
	defer rows.Close()

	stays, err := scanStays(rows)
	if err != nil {
		return nil, &models.StoreError{Op: "existing stays", Err: err}
	}
	return stays, nil
}

func scanStays(rows *sql.Rows) ([]models.ExistingStay, error) {
	var stays []models.ExistingStay
	for rows.Next() {
		var (
			stay          models.ExistingStay
			arrival, depa string
		)
		if err := rows.Scan(&stay.ReservationID, &stay.RoomType, &arrival, &depa); err != nil {
			return nil, err
		}
		a, errA := models.ParseISODate(arrival)
		d, errD := models.ParseISODate(depa)
		if errA != nil || errD != nil {
			// Unparseable legacy rows cannot be conflict-checked; skip them.
			continue
		}
		stay.Interval = models.StayInterval{Arrival: a, Departure: d}
		stays = append(stays, stay)
	}
	return stays, rows.Err()
}

// ReservationExists reports whether a header row with the id exists.
func (db *DB) ReservationExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM reservations WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &models.StoreError{Op: "existence check", Err: err}
	}
	return true, nil
}

// GetReservation fetches a reservation with its room lines.
func (db *DB) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var (
		res              models.Reservation
		garr, gdep       sql.NullString
		gnights, perRoom int
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, guest_name, global_arrival, global_departure, global_nights, per_room
		FROM reservations WHERE id = ?`, id,
	).Scan(&res.Header.ID, &res.Header.GuestName, &garr, &gdep, &gnights, &perRoom)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Kind: "reservation", ID: id}
	}
	if err != nil {
		return nil, &models.StoreError{Op: "fetch reservation", Err: err}
	}

	if perRoom == 1 {
		res.Header.Mode = models.ModePerRoom
	} else {
		res.Header.Mode = models.ModeGlobal
		if garr.Valid && gdep.Valid {
			a, errA := models.ParseISODate(garr.String)
			d, errD := models.ParseISODate(gdep.String)
			if errA == nil && errD == nil {
				res.Header.GlobalInterval = models.StayInterval{Arrival: a, Departure: d}
			}
		}
	}

	rows, err := db.QueryContext(ctx, `
		SELECT room_idx, room_type, employees, guests, arrival, departure, price
		FROM reservation_rooms
		WHERE id = ?
		ORDER BY room_idx`, id)
	if err != nil {
		return nil, &models.StoreError{Op: "fetch reservation rooms", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line          models.RoomLine
			arrival, depa string
		)
		if err := rows.Scan(&line.Index, &line.RoomType, &line.Staff, &line.Guests, &arrival, &depa, &line.Price); err != nil {
			return nil, &models.StoreError{Op: "scan reservation room", Err: err}
		}
		a, errA := models.ParseISODate(arrival)
		d, errD := models.ParseISODate(depa)
		if errA == nil && errD == nil {
			line.Interval = models.StayInterval{Arrival: a, Departure: d}
		}
		res.Lines = append(res.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StoreError{Op: "fetch reservation rooms", Err: err}
	}
	return &res, nil
}

// CommitReservation atomically persists a validated reservation.
//
// Within one write transaction it re-checks room conflicts against the
// committed rows, checks id uniqueness (fresh create), deletes any prior
// rows for the id (overwrite) and inserts the new header and room lines.
// Sqlite serializes write transactions, so no other commit can interleave
// between the conflict check and the insert.
func (db *DB) CommitReservation(ctx context.Context, res *models.Reservation, overwrite bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &models.StoreError{Op: "begin tx", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	excludeID := ""
	if overwrite {
		excludeID = res.Header.ID
	}

	existing, err := existingStaysTx(ctx, tx)
	if err != nil {
		return &models.StoreError{Op: "conflict scan", Err: err}
	}
	lines := res.ActiveLines()
	if conflicts := availability.FindConflicts(availability.ProposedFromLines(lines), existing, excludeID); len(conflicts) > 0 {
		return &models.ConflictError{Conflicts: conflicts}
	}

	if !overwrite {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM reservations WHERE id = ?", res.Header.ID).Scan(&one)
		if err == nil {
			return &models.DuplicateIDError{ID: res.Header.ID}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return &models.StoreError{Op: "uniqueness check", Err: err}
		}
	} else {
		if _, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", res.Header.ID); err != nil {
			return &models.StoreError{Op: "delete prior header", Err: err}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM reservation_rooms WHERE id = ?", res.Header.ID); err != nil {
			return &models.StoreError{Op: "delete prior rooms", Err: err}
		}
	}

	var garr, gdep interface{}
	gnights := 0
	perRoom := 0
	if res.Header.Mode == models.ModePerRoom {
		perRoom = 1
	} else {
		garr = res.Header.GlobalInterval.Arrival.Format(models.DateFormatISO)
		gdep = res.Header.GlobalInterval.Departure.Format(models.DateFormatISO)
		gnights = res.Header.GlobalInterval.Nights()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reservations(id, guest_name, global_arrival, global_departure, global_nights, per_room)
		VALUES(?,?,?,?,?,?)`,
		res.Header.ID, res.Header.GuestName, garr, gdep, gnights, perRoom,
	); err != nil {
		return &models.StoreError{Op: "insert header", Err: err}
	}

	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reservation_rooms(id, room_idx, room_type, employees, guests, arrival, departure, nights, price)
			VALUES(?,?,?,?,?,?,?,?,?)`,
			res.Header.ID, l.Index, l.RoomType, l.Staff, l.Guests,
			l.Interval.Arrival.Format(models.DateFormatISO),
			l.Interval.Departure.Format(models.DateFormatISO),
			l.Interval.Nights(), l.Price,
		); err != nil {
			return &models.StoreError{Op: fmt.Sprintf("insert room %d", l.Index), Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &models.StoreError{Op: "commit", Err: err}
	}

	db.logger.Info().
		Str("id", res.Header.ID).
		Str("mode", res.Header.Mode.String()).
		Int("rooms", len(lines)).
		Bool("overwrite", overwrite).
		Msg("Reservation committed")
	return nil
}

func existingStaysTx(ctx context.Context, tx *sql.Tx) ([]models.ExistingStay, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, room_type, arrival, departure
		FROM reservation_rooms
		WHERE room_type <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStays(rows)
}

// DeleteReservation removes a reservation, its room lines and its
// participant breakdown in one transaction.
func (db *DB) DeleteReservation(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &models.StoreError{Op: "begin tx", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return &models.StoreError{Op: "delete header", Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return &models.StoreError{Op: "delete header", Err: err}
	}
	if affected == 0 {
		return &models.NotFoundError{Kind: "reservation", ID: id}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM reservation_rooms WHERE id = ?", id); err != nil {
		return &models.StoreError{Op: "delete rooms", Err: err}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", id); err != nil {
		return &models.StoreError{Op: "delete participants", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &models.StoreError{Op: "commit delete", Err: err}
	}

	db.logger.Info().Str("id", id).Msg("Reservation deleted")
	return nil
}

// Overview returns one summarized row per reservation, newest first.
func (db *DB) Overview(ctx context.Context) ([]models.OverviewRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.guest_name,
		       COALESCE(r.global_arrival, MIN(rr.arrival), '') AS arrival,
		       COALESCE(r.global_departure, MAX(rr.departure), '') AS departure,
		       r.global_nights, r.per_room,
		       COALESCE(SUM(rr.price), 0) AS total_price,
		       COUNT(rr.room_idx) AS room_count
		FROM reservations r
		LEFT JOIN reservation_rooms rr ON r.id = rr.id
		GROUP BY r.id, r.guest_name, r.global_arrival, r.global_departure, r.global_nights, r.per_room
		ORDER BY r.id DESC`)
	if err != nil {
		return nil, &models.StoreError{Op: "overview", Err: err}
	}
	defer rows.Close()

	var overview []models.OverviewRow
	for rows.Next() {
		var (
			row           models.OverviewRow
			arrival, depa string
			perRoom       int
		)
		if err := rows.Scan(&row.ID, &row.GuestName, &arrival, &depa, &row.Nights, &perRoom, &row.TotalPrice, &row.RoomCount); err != nil {
			return nil, &models.StoreError{Op: "scan overview", Err: err}
		}
		if perRoom == 1 {
			row.Mode = models.ModePerRoom
		}
		if t, err := models.ParseISODate(arrival); err == nil {
			row.Arrival = t
		}
		if t, err := models.ParseISODate(depa); err == nil {
			row.Departure = t
		}
		if row.Mode == models.ModePerRoom && !row.Arrival.IsZero() && !row.Departure.IsZero() {
			row.Nights = models.StayInterval{Arrival: row.Arrival, Departure: row.Departure}.Nights()
		}
		overview = append(overview, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StoreError{Op: "overview", Err: err}
	}
	return overview, nil
}
