package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/brokercrm/crm-service/auth"
	"github.com/brokercrm/crm-service/bulk"
	"github.com/brokercrm/crm-service/migrate"
	"github.com/brokercrm/crm-service/seed"
	"github.com/brokercrm/crm-service/server"
	"github.com/brokercrm/crm-service/store"
)

func main() {
	cfg := server.LoadConfig()

	var logger *zap.Logger
	var err error
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := bulk.ValidateAllowLists(); err != nil {
		logger.Fatal("patch allow-lists out of sync with schema", zap.Error(err))
	}

	if err := migrate.RunFromEnv(); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	if err := seed.RunFromEnv(); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}

	dsn := cfg.DatabaseDSN()
	if dsn == "" {
		logger.Fatal("database DSN is not configured")
	}
	db, err := store.Open(dsn)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}

	var revoked auth.RevocationChecker
	if cfg.Valkey.Addr != "" {
		rs, err := auth.NewValkeyRevocationStore(cfg.Valkey.Addr, "crm:revoked:")
		if err != nil {
			logger.Fatal("connect valkey", zap.Error(err))
		}
		defer rs.Close()
		revoked = rs
	}

	srv := server.NewServer(cfg, logger, db, revoked)
	if rs, ok := revoked.(*auth.ValkeyRevocationStore); ok {
		srv.Revoker = rs
	}
	engine := server.NewGinEngine(srv)

	logger.Info("listening", zap.String("addr", cfg.Listen), zap.String("env", cfg.Env))
	if err := engine.Run(cfg.Listen); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
