package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"identity-service/internal/config"
	"identity-service/internal/handler"
	"identity-service/internal/migrations"
	"identity-service/internal/repository"
	"identity-service/internal/router"
	"identity-service/internal/service/mail"
	"identity-service/internal/service/verify"
	"identity-service/internal/usecase"
	"identity-service/pkg/id"
	"identity-service/pkg/jwtutil"
)

// Server bundles the HTTP server with the connections it owns.
type Server struct {
	HTTP *http.Server
	db   *pgxpool.Pool
	rdb  *redis.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Server, error) {
	if err := migrate(cfg.DBConnString); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db, err := pgxpool.New(ctx, cfg.DBConnString)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	sf, err := id.NewSnowflake(1)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("snowflake: %w", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	issuer := jwtutil.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenIssuer, cfg.SessionTokenTTL, cfg.SocialTokenTTL)
	gateway := verify.NewClient(cfg.Verify)
	mailer := mail.NewClient(cfg.Mail)

	uc := usecase.NewAuthUsecase(accountRepo, ticketRepo, gateway, mailer, issuer, sf, cfg)

	authHandler := handler.NewAuthHandler(uc)

	r := chi.NewRouter()
	router.SetupRoutes(r, authHandler, rdb, issuer)

	return &Server{
		HTTP: &http.Server{Addr: cfg.HTTPAddr, Handler: r},
		db:   db,
		rdb:  rdb,
	}, nil
}

// Close releases the database and Redis connections after the HTTP server
// has stopped accepting requests.
func (s *Server) Close() {
	if err := s.rdb.Close(); err != nil {
		log.Printf("[Server] closing redis: %v", err)
	}
	s.db.Close()
}

// migrate applies pending schema migrations over a short-lived database/sql
// connection; the pgx pool is opened afterwards.
func migrate(dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(sqlDB, ".")
}
