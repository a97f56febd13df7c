// Command migrate aplica o revierte las migraciones embebidas.
//
//	migrate up       aplica las pendientes
//	migrate down     revierte todas
//	migrate version  muestra la versión aplicada
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/Consignacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Consignacion-api/pkg/config"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Component("migrate")

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("preparar migraciones")
	}
	runErr := run(mg, cmd, log)
	if err := mg.Close(); err != nil {
		log.Error().Err(err).Msg("cerrar migrador")
	}
	if runErr != nil {
		log.Error().Err(runErr).Str("cmd", cmd).Msg("migración fallida")
		os.Exit(1)
	}
}

func run(mg *postgres.Migrator, cmd string, log *logger.Logger) error {
	switch cmd {
	case "up":
		if err := mg.Up(); err != nil {
			return err
		}
	case "down":
		if err := mg.Down(); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("comando desconocido %q (uso: migrate [up|down|version])", cmd)
	}
	v, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("leer versión: %w", err)
	}
	log.Info().Str("cmd", cmd).Uint("version", v).Bool("dirty", dirty).Msg("migraciones al día")
	return nil
}
