// seed prepara una base nueva: aplica migraciones, crea el usuario administrador y, opcionalmente,
// carga el catálogo de productos desde un CSV exportado de la planilla anterior.
//
// Uso: go run ./cmd/seed -email admin@ladespensa.cl -password secreto123 [-catalogo productos.csv] [-latin1]
// Sin -email se usan ADMIN_EMAIL y ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/ladespensa/despensa-api/internal/application/auth"
	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/usecase"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/infrastructure/postgres"
	"github.com/ladespensa/despensa-api/pkg/config"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	email := flag.String("email", cfg.App.AdminEmail, "email del administrador")
	password := flag.String("password", cfg.App.AdminPassword, "contraseña del administrador (mín. 8)")
	name := flag.String("nombre", "Administrador", "nombre del administrador")
	catalog := flag.String("catalogo", "", "CSV con productos a cargar")
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	flag.Parse()

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Named("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	st := postgres.NewStore(pool)

	authUC := auth.NewAuthUseCase(st.Users(), auth.JWTConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	if *email != "" {
		created, err := authUC.EnsureAdmin(ctx, *email, *password, *name)
		if err != nil {
			log.Fatal().Err(err).Str("email", *email).Msg("crear administrador")
		}
		log.Info().Str("email", *email).Bool("creado", created).Msg("administrador")
	}

	if *catalog == "" {
		return
	}
	f, err := os.Open(*catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir catálogo")
	}
	defer f.Close()
	items, err := parseCatalog(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Str("archivo", *catalog).Msg("catálogo inválido")
	}

	productUC := usecase.NewProductUseCase(st.TxRunner(), st.Products(), st.PriceChanges(), st.Movements(),
		nil, nil, cfg.Inventory.ExpiringSoonDays, cfg.Upload.MaxBytes)
	actor := dto.Actor{Name: "seed", Role: "admin"}
	if *email != "" {
		if u, err := st.Users().GetByEmail(ctx, *email); err == nil && u != nil {
			actor = dto.Actor{ID: u.ID, Name: u.Name, Role: u.Role}
		}
	}
	var created, skipped int
	for _, in := range items {
		_, err := productUC.Create(ctx, actor, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		default:
			log.Fatal().Err(err).Str("codigo_barras", in.Barcode).Msg("crear producto")
		}
	}
	log.Info().Int("creados", created).Int("existentes", skipped).Msg("catálogo cargado")
}
