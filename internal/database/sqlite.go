package database

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

func InitDB() error {
	// Crear el directorio database si no existe
	if err := os.MkdirAll("database", 0755); err != nil {
		return err
	}

	var err error
	DB, err = sql.Open("sqlite3", filepath.Join("database", "portfolio.db"))
	if err != nil {
		return err
	}

	// Crear tabla de usuarios si no existe
	createUsersTableSQL := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err = DB.Exec(createUsersTableSQL)
	if err != nil {
		return err
	}

	// Crear tabla de posiciones del portafolio
	createStocksTableSQL := `
	CREATE TABLE IF NOT EXISTS stocks (
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
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	_, err = DB.Exec(createStocksTableSQL)
	if err != nil {
		return err
	}

	// Crear tabla de configuración (efectivo y umbral por usuario)
	createSettingsTableSQL := `
	CREATE TABLE IF NOT EXISTS settings (
		user_id TEXT PRIMARY KEY,
		cash REAL NOT NULL DEFAULT 0,
		threshold REAL NOT NULL DEFAULT 12.0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	_, err = DB.Exec(createSettingsTableSQL)
	if err != nil {
		return err
	}

	// Crear tabla de eventos de rebalanceo (historial de notificaciones)
	createEventsTableSQL := `
	CREATE TABLE IF NOT EXISTS rebalance_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		max_deviation REAL NOT NULL DEFAULT 0,
		combined_target REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	_, err = DB.Exec(createEventsTableSQL)
	if err != nil {
		return err
	}

	// Crear índices para búsqueda rápida por usuario
	createIndexesSQL := `
	CREATE INDEX IF NOT EXISTS idx_stocks_user ON stocks(user_id);
	CREATE INDEX IF NOT EXISTS idx_rebalance_events_user_date
	ON rebalance_events(user_id, created_at);`

	_, err = DB.Exec(createIndexesSQL)
	if err != nil {
		return err
	}

	// Ejecutar migraciones para actualizar el esquema
	err = RunMigrations()
	return err
}
