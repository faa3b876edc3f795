package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdlsagar677/Social-Media/internal/config"
	"github.com/pdlsagar677/Social-Media/internal/delivery"
	"github.com/pdlsagar677/Social-Media/internal/domain"
	"github.com/pdlsagar677/Social-Media/internal/httpserver"
	"github.com/pdlsagar677/Social-Media/internal/presence"
	"github.com/pdlsagar677/Social-Media/internal/security"
	"github.com/pdlsagar677/Social-Media/internal/service"
	"github.com/pdlsagar677/Social-Media/internal/store/mongodb"
	"github.com/pdlsagar677/Social-Media/internal/store/postgres"
	"github.com/pdlsagar677/Social-Media/internal/store/sqlite"
	"github.com/pdlsagar677/Social-Media/internal/ws"
)

// @title           Social Feed API
// @version         1.0
// @description     Direct messages, presence and notifications for the social feed.

// @host            localhost:8000
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// stores are the repositories selected by STORE_DRIVER.
type stores struct {
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	social        *mongodb.SocialRepo
	close         func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongodb.Open(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := mongodb.Migrate(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		s := mongodb.NewStores(db)
		return &stores{
			conversations: s.Conversations,
			messages:      s.Messages,
			social:        s.Social,
			close:         func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return sqlStores(db, postgres.NewConversationRepo(db), postgres.NewMessageRepo(db)), nil

	default:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return sqlStores(db, sqlite.NewConversationRepo(db), sqlite.NewMessageRepo(db)), nil
	}
}

func sqlStores(db *sql.DB, convs domain.ConversationRepository, msgs domain.MessageRepository) *stores {
	return &stores{
		conversations: convs,
		messages:      msgs,
		close:         func() { db.Close() },
	}
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if cfg.Debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	setupLogging(cfg)

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open store", "driver", cfg.StoreDriver, "err", err)
	}
	defer st.close()

	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)

	var cipher service.Cipher
	if cfg.EncryptKey != "" {
		enc, err := security.NewEncryptor([]byte(cfg.EncryptKey), cfg.LegacyEncryptKeys)
		if err != nil {
			log.Fatal("failed to initialize encryptor", "err", err)
		}
		cipher = enc
	}

	// Presence lives for the whole process; every connection and request shares it.
	registry := presence.NewRegistry()
	dispatcher := delivery.NewDispatcher(registry)

	msgSvc := service.NewMessageService(st.messages, cipher, cfg.MaxMessageLength)
	convSvc := service.NewConversationService(st.conversations, msgSvc)
	chatSvc := service.NewChatService(convSvc, msgSvc, dispatcher)

	var socialSvc *service.SocialService
	if st.social != nil {
		socialSvc = service.NewSocialService(st.social, st.social, st.social, dispatcher)
	}

	realtime := ws.NewServer(registry, dispatcher, tokenSvc, ws.Options{
		AllowedOrigins: cfg.CORSOrigins,
		CookieName:     cfg.AuthCookieName,
		SendBuffer:     cfg.WSSendBuffer,
	})

	router := httpserver.NewRouter(httpserver.Deps{
		AppName:        cfg.AppName,
		CORSOrigins:    cfg.CORSOrigins,
		AuthCookieName: cfg.AuthCookieName,
		Tokens:         tokenSvc,
		Chat:           chatSvc,
		Social:         socialSvc,
		Registry:       registry,
		Realtime:       realtime,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", "addr", cfg.HTTPAddr(), "store", cfg.StoreDriver, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", "err", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	if err := realtime.Shutdown(shutdownCtx); err != nil {
		log.Error("closing websocket connections", "err", err)
	}
}
