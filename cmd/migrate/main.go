package main

import (
	"errors"
	"flag"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/stockerp/stockerp-api/pkg/config"
	"github.com/stockerp/stockerp-api/pkg/logger"
)

// Runner de migraciones de esquema. Uso:
//
//	migrate            aplica todas las migraciones pendientes
//	migrate -down 1    revierte la última migración
func main() {
	var down int
	var source string
	flag.IntVar(&down, "down", 0, "número de migraciones a revertir (0 = aplicar todas hacia arriba)")
	flag.StringVar(&source, "source", "file://migrations", "origen de las migraciones")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	m, err := migrate.New(source, cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir migraciones")
	}
	defer m.Close()

	if down > 0 {
		err = m.Steps(-down)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("ejecutar migraciones")
	}

	version, dirty, _ := m.Version()
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones al día")
}
