package repository

import (
	"database/sql"
	"time"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
)

// EventRepository guarda el historial de notificaciones emitidas
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository crea un nuevo repositorio de eventos
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// SaveEvent registra un evento de rebalanceo o de configuración inválida
func (r *EventRepository) SaveEvent(event *models.RebalanceEvent) error {
	if event.ID == "" {
		event.ID = models.GenerateUUID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO rebalance_events (id, user_id, type, max_deviation, combined_target, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		event.ID,
		event.UserID,
		event.Type,
		event.MaxDeviation,
		event.CombinedTarget,
		event.CreatedAt,
	)
	return err
}

// GetEventsByUser devuelve los eventos más recientes del usuario
func (r *EventRepository) GetEventsByUser(userID string, limit int) ([]models.RebalanceEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, type, max_deviation, combined_target, created_at
		FROM rebalance_events
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.RebalanceEvent
	for rows.Next() {
		var e models.RebalanceEvent
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Type,
			&e.MaxDeviation,
			&e.CombinedTarget,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
