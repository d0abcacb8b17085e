package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
)

// StockRepository maneja las operaciones de base de datos para las posiciones
type StockRepository struct {
	db *sql.DB
}

// NewStockRepository crea un nuevo repositorio de posiciones
func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

// CreateStock inserta una nueva posición. El ID se genera si no viene asignado
// y se conserva sin cambios durante toda la vida de la posición.
func (r *StockRepository) CreateStock(stock *models.Stock) error {
	if stock.ID == "" {
		stock.ID = models.GenerateUUID()
	}

	now := time.Now()
	stock.CreatedAt = now
	stock.UpdatedAt = now

	query := `
		INSERT INTO stocks (id, user_id, name, code, target_percentage, current_price, quantity, category, daily_variation, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		stock.ID,
		stock.UserID,
		stock.Name,
		stock.Code,
		stock.TargetPercentage,
		stock.CurrentPrice,
		stock.Quantity,
		stock.Category,
		stock.DailyVariation,
		stock.CreatedAt,
		stock.UpdatedAt,
	)
	return err
}

// GetStocksByUser devuelve todas las posiciones del usuario, agrupadas por
// categoría y ordenadas por código
func (r *StockRepository) GetStocksByUser(userID string) ([]models.Stock, error) {
	query := `
		SELECT id, user_id, name, code, target_percentage, current_price, quantity, category, daily_variation, created_at, updated_at
		FROM stocks
		WHERE user_id = ?
		ORDER BY category, code`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []models.Stock
	for rows.Next() {
		var s models.Stock
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Name,
			&s.Code,
			&s.TargetPercentage,
			&s.CurrentPrice,
			&s.Quantity,
			&s.Category,
			&s.DailyVariation,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// GetStockByID obtiene una posición verificando que pertenezca al usuario
func (r *StockRepository) GetStockByID(userID, id string) (*models.Stock, error) {
	s := &models.Stock{}
	query := `
		SELECT id, user_id, name, code, target_percentage, current_price, quantity, category, daily_variation, created_at, updated_at
		FROM stocks
		WHERE id = ? AND user_id = ?`

	err := r.db.QueryRow(query, id, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.Name,
		&s.Code,
		&s.TargetPercentage,
		&s.CurrentPrice,
		&s.Quantity,
		&s.Category,
		&s.DailyVariation,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.New("posición no encontrada")
	}

	return s, err
}

// UpdateStock actualiza los campos mutables de una posición. La identidad (id)
// y la fecha de creación nunca cambian.
func (r *StockRepository) UpdateStock(stock *models.Stock) error {
	stock.UpdatedAt = time.Now()

	query := `
		UPDATE stocks
		SET name = ?, code = ?, target_percentage = ?, current_price = ?, quantity = ?, category = ?, daily_variation = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	_, err := r.db.Exec(query,
		stock.Name,
		stock.Code,
		stock.TargetPercentage,
		stock.CurrentPrice,
		stock.Quantity,
		stock.Category,
		stock.DailyVariation,
		stock.UpdatedAt,
		stock.ID,
		stock.UserID,
	)
	return err
}

// DeleteStock elimina una posición del usuario
func (r *StockRepository) DeleteStock(userID, id string) error {
	query := `DELETE FROM stocks WHERE id = ? AND user_id = ?`

	_, err := r.db.Exec(query, id, userID)
	return err
}

// DeleteStocks elimina varias posiciones en una sola transacción
func (r *StockRepository) DeleteStocks(userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	for _, id := range ids {
		if _, err = tx.Exec(`DELETE FROM stocks WHERE id = ? AND user_id = ?`, id, userID); err != nil {
			return err
		}
	}

	return err
}

// UpdatePrices persiste los campos que refresca el ciclo de actualización
// (nombre, precio y variación diaria) para toda la lista en una sola
// transacción: o se guarda la foto completa o no se guarda nada
func (r *StockRepository) UpdatePrices(userID string, stocks []models.Stock) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	now := time.Now()
	for _, s := range stocks {
		_, err = tx.Exec(
			`UPDATE stocks SET name = ?, current_price = ?, daily_variation = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			s.Name, s.CurrentPrice, s.DailyVariation, now, s.ID, userID,
		)
		if err != nil {
			return err
		}
	}

	return err
}

// ApplyRebalance aplica las cantidades del plan y liquida el efectivo
// resultante en una sola transacción
func (r *StockRepository) ApplyRebalance(userID string, items []models.RebalanceItem, newCash float64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	now := time.Now()
	for _, item := range items {
		_, err = tx.Exec(
			`UPDATE stocks SET quantity = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
			item.DesiredQuantity, now, item.StockID, userID,
		)
		if err != nil {
			return err
		}
	}

	// El efectivo absorbe el residuo de redondeo del plan
	_, err = tx.Exec(
		`INSERT INTO settings (user_id, cash, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET cash = excluded.cash, updated_at = excluded.updated_at`,
		userID, newCash, now,
	)

	return err
}

// ResetStocks restaura el portafolio inicial del usuario: elimina sus
// posiciones, inserta el set por defecto y reinicia efectivo y umbral
func (r *StockRepository) ResetStocks(userID string) ([]models.Stock, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if _, err = tx.Exec(`DELETE FROM stocks WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	stocks := models.DefaultStocks(userID)
	for i := range stocks {
		stocks[i].CreatedAt = now
		stocks[i].UpdatedAt = now
		_, err = tx.Exec(
			`INSERT INTO stocks (id, user_id, name, code, target_percentage, current_price, quantity, category, daily_variation, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			stocks[i].ID, stocks[i].UserID, stocks[i].Name, stocks[i].Code, stocks[i].TargetPercentage,
			stocks[i].CurrentPrice, stocks[i].Quantity, stocks[i].Category, stocks[i].DailyVariation,
			stocks[i].CreatedAt, stocks[i].UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(
		`INSERT INTO settings (user_id, cash, threshold, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET cash = excluded.cash, threshold = excluded.threshold, updated_at = excluded.updated_at`,
		userID, models.DefaultResetCash, models.DefaultThreshold, now,
	)
	if err != nil {
		return nil, err
	}

	return stocks, err
}
