package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/AgusMolinaCode/Portfolio_Api.git/internal/models"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE stocks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT,
		code TEXT NOT NULL,
		target_percentage REAL NOT NULL DEFAULT 0,
		current_price INTEGER NOT NULL DEFAULT 0,
		quantity INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT 'equity',
		daily_variation REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE settings (
		user_id TEXT PRIMARY KEY,
		cash REAL NOT NULL DEFAULT 0,
		threshold REAL NOT NULL DEFAULT 12.0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE rebalance_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		max_deviation REAL NOT NULL DEFAULT 0,
		combined_target REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func newTestStock(userID, code string, target float64, price, quantity int64) *models.Stock {
	return &models.Stock{
		UserID:           userID,
		Name:             "Posición " + code,
		Code:             code,
		TargetPercentage: target,
		CurrentPrice:     price,
		Quantity:         quantity,
		Category:         models.CategoryEquity,
	}
}

func TestCreateStockGeneraYConservaID(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))

	stock := newTestStock("u1", "278530", 20, 10000, 5)
	require.NoError(t, repo.CreateStock(stock))
	assert.NotEmpty(t, stock.ID, "el ID se genera al crear")

	// El ID asignado por el cliente se respeta
	withID := newTestStock("u1", "003690", 10, 5000, 2)
	withID.ID = "id-propio"
	require.NoError(t, repo.CreateStock(withID))

	fetched, err := repo.GetStockByID("u1", "id-propio")
	require.NoError(t, err)
	assert.Equal(t, "id-propio", fetched.ID)
	assert.Equal(t, "003690", fetched.Code)
}

func TestGetStocksByUserAislaUsuarios(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))

	require.NoError(t, repo.CreateStock(newTestStock("u1", "278530", 20, 10000, 5)))
	require.NoError(t, repo.CreateStock(newTestStock("u2", "003690", 10, 5000, 2)))

	stocks, err := repo.GetStocksByUser("u1")
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, "278530", stocks[0].Code)

	empty, err := repo.GetStocksByUser("u3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateStockConservaIdentidad(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))

	stock := newTestStock("u1", "278530", 20, 10000, 5)
	require.NoError(t, repo.CreateStock(stock))

	originalID := stock.ID
	originalCreated := stock.CreatedAt

	stock.TargetPercentage = 25
	stock.Quantity = 8
	require.NoError(t, repo.UpdateStock(stock))

	fetched, err := repo.GetStockByID("u1", originalID)
	require.NoError(t, err)
	assert.Equal(t, originalID, fetched.ID)
	assert.Equal(t, 25.0, fetched.TargetPercentage)
	assert.Equal(t, int64(8), fetched.Quantity)
	assert.WithinDuration(t, originalCreated, fetched.CreatedAt, time.Second)
}

func TestDeleteStocks(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))

	a := newTestStock("u1", "278530", 20, 10000, 5)
	b := newTestStock("u1", "003690", 10, 5000, 2)
	c := newTestStock("u1", "088980", 16, 12000, 3)
	require.NoError(t, repo.CreateStock(a))
	require.NoError(t, repo.CreateStock(b))
	require.NoError(t, repo.CreateStock(c))

	require.NoError(t, repo.DeleteStocks("u1", []string{a.ID, c.ID}))

	remaining, err := repo.GetStocksByUser("u1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, b.ID, remaining[0].ID)

	// Lista vacía es no-op
	require.NoError(t, repo.DeleteStocks("u1", nil))
}

func TestUpdatePricesActualizaTodaLaFoto(t *testing.T) {
	repo := NewStockRepository(setupTestDB(t))

	a := newTestStock("u1", "278530", 20, 10000, 5)
	b := newTestStock("u1", "003690", 10, 5000, 2)
	require.NoError(t, repo.CreateStock(a))
	require.NoError(t, repo.CreateStock(b))

	a.CurrentPrice = 11000
	a.DailyVariation = 2.5
	a.Name = "Nombre actualizado"
	b.CurrentPrice = 4800
	b.DailyVariation = -1.0

	require.NoError(t, repo.UpdatePrices("u1", []models.Stock{*a, *b}))

	stocks, err := repo.GetStocksByUser("u1")
	require.NoError(t, err)
	require.Len(t, stocks, 2)

	byID := map[string]models.Stock{}
	for _, s := range stocks {
		byID[s.ID] = s
	}
	assert.Equal(t, int64(11000), byID[a.ID].CurrentPrice)
	assert.Equal(t, 2.5, byID[a.ID].DailyVariation)
	assert.Equal(t, "Nombre actualizado", byID[a.ID].Name)
	assert.Equal(t, int64(4800), byID[b.ID].CurrentPrice)
}

func TestApplyRebalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStockRepository(db)
	settingsRepo := NewSettingsRepository(db)

	a := newTestStock("u1", "278530", 50, 100, 10)
	b := newTestStock("u1", "003690", 50, 250, 20)
	require.NoError(t, repo.CreateStock(a))
	require.NoError(t, repo.CreateStock(b))

	items := []models.RebalanceItem{
		{StockID: a.ID, DesiredQuantity: 40},
		{StockID: b.ID, DesiredQuantity: 24},
	}

	require.NoError(t, repo.ApplyRebalance("u1", items, 1234.5))

	fetchedA, err := repo.GetStockByID("u1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), fetchedA.Quantity)

	fetchedB, err := repo.GetStockByID("u1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(24), fetchedB.Quantity)

	settings, err := settingsRepo.GetSettings("u1")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, settings.Cash)
}

func TestResetStocks(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStockRepository(db)
	settingsRepo := NewSettingsRepository(db)

	// Estado previo que el reset debe reemplazar por completo
	require.NoError(t, repo.CreateStock(newTestStock("u1", "999999", 100, 1, 1)))
	require.NoError(t, settingsRepo.SaveSettings(&models.Settings{UserID: "u1", Cash: 50, Threshold: 5}))

	stocks, err := repo.ResetStocks("u1")
	require.NoError(t, err)
	require.Len(t, stocks, 7)

	persisted, err := repo.GetStocksByUser("u1")
	require.NoError(t, err)
	require.Len(t, persisted, 7)

	combined := 0.0
	for _, s := range persisted {
		assert.NotEqual(t, "999999", s.Code)
		combined += s.TargetPercentage
	}
	assert.InDelta(t, 100.0, combined, 1e-9, "el set inicial suma 100%")

	settings, err := settingsRepo.GetSettings("u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultResetCash, settings.Cash)
	assert.Equal(t, models.DefaultThreshold, settings.Threshold)
}
