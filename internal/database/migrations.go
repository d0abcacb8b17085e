package database

import (
	"log"
)

// RunMigrations ejecuta las migraciones necesarias para actualizar el esquema de la base de datos
func RunMigrations() error {
	log.Println("Ejecutando migraciones de la base de datos...")

	// Migración para añadir el campo daily_variation a la tabla stocks
	// (instalaciones anteriores no guardaban la variación diaria)
	addDailyVariationColumnSQL := `
	ALTER TABLE stocks ADD COLUMN daily_variation REAL NOT NULL DEFAULT 0;
	`

	_, err := DB.Exec(addDailyVariationColumnSQL)
	if err != nil {
		// No retornamos error porque SQLite puede dar error si la columna ya existe
		// y queremos que la migración continúe
		log.Printf("Columna daily_variation ya existente o no aplicable: %v", err)
	} else {
		log.Println("Columna daily_variation añadida correctamente")
	}

	return nil
}
