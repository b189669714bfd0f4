package database

import (
	"context"

	"penzion/internal/models"
)

// ReplaceParticipants swaps a reservation's per-person breakdown in one
// transaction: delete all, then reinsert.
func (db *DB) ReplaceParticipants(ctx context.Context, reservationID string, participants []models.Participant) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &models.StoreError{Op: "begin tx", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", reservationID); err != nil {
		return &models.StoreError{Op: "delete participants", Err: err}
	}

	for _, p := range participants {
		isEmployee := 0
		if p.IsEmployee {
			isEmployee = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO participants(id, person_idx, name, is_employee, nights, room_type, price)
			VALUES(?,?,?,?,?,?,?)`,
			reservationID, p.PersonIndex, p.Name, isEmployee, p.Nights, p.RoomType, p.Price,
		); err != nil {
			return &models.StoreError{Op: "insert participant", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &models.StoreError{Op: "commit participants", Err: err}
	}

	db.logger.Info().Str("id", reservationID).Int("count", len(participants)).Msg("Participants replaced")
	return nil
}

// GetParticipants returns a reservation's breakdown ordered by person index.
func (db *DB) GetParticipants(ctx context.Context, reservationID string) ([]models.Participant, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT person_idx, name, is_employee, nights, room_type, price
		FROM participants
		WHERE id = ?
		ORDER BY person_idx`, reservationID)
	if err != nil {
		return nil, &models.StoreError{Op: "fetch participants", Err: err}
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var (
			p          models.Participant
			isEmployee int
		)
		if err := rows.Scan(&p.PersonIndex, &p.Name, &isEmployee, &p.Nights, &p.RoomType, &p.Price); err != nil {
			return nil, &models.StoreError{Op: "scan participant", Err: err}
		}
		p.IsEmployee = isEmployee == 1
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StoreError{Op: "fetch participants", Err: err}
	}
	return participants, nil
}
