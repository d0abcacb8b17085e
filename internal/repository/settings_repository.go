package repository

import (
	"database/sql"
	"time"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
)

// SettingsRepository maneja la configuración (efectivo y umbral) de cada usuario
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository crea un nuevo repositorio de configuración
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSettings devuelve la configuración del usuario. Si todavía no tiene una
// fila guardada devuelve los valores por defecto (efectivo 0, umbral 12.0).
func (r *SettingsRepository) GetSettings(userID string) (*models.Settings, error) {
	settings := &models.Settings{}
	query := `SELECT user_id, cash, threshold, updated_at FROM settings WHERE user_id = ?`

	err := r.db.QueryRow(query, userID).Scan(
		&settings.UserID,
		&settings.Cash,
		&settings.Threshold,
		&settings.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return &models.Settings{
			UserID:    userID,
			Cash:      0,
			Threshold: models.DefaultThreshold,
		}, nil
	}

	return settings, err
}

// SaveSettings guarda la configuración del usuario (inserta o actualiza)
func (r *SettingsRepository) SaveSettings(settings *models.Settings) error {
	settings.UpdatedAt = time.Now()

	query := `
		INSERT INTO settings (user_id, cash, threshold, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET cash = excluded.cash, threshold = excluded.threshold, updated_at = excluded.updated_at`

	_, err := r.db.Exec(query, settings.UserID, settings.Cash, settings.Threshold, settings.UpdatedAt)
	return err
}
