package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/brokercrm/crm-service/migrate"
)

// TestMain runs DB migrations for the store tests that need a live
// database. Tests relying on getTestGormDB skip themselves when no DSN is
// configured; the sqlmock-based tests always run.
func TestMain(m *testing.M) {
	dsn := getTestDSN()
	if strings.TrimSpace(dsn) != "" {
		driver := "postgres"

		var ready bool
		for i := 0; i < 20; i++ {
			if db, err := sql.Open(driver, dsn); err == nil {
				if err = db.Ping(); err == nil {
					ready = true
					_ = db.Close()
					break
				}
				_ = db.Close()
			}
			time.Sleep(1 * time.Second)
		}
		if !ready {
			log.Printf("postgres is not ready: dsn=%s", dsn)
			os.Exit(1)
		}

		logger := log.New(os.Stdout, "[store-migrate] ", log.LstdFlags)
		if err := migrate.Run(migrate.Options{
			Driver:  driver,
			DSN:     dsn,
			Command: "up",
			Logger:  logger,
		}); err != nil {
			panic(fmt.Sprintf("store test migration failed: %v", err))
		}
	}

	os.Exit(m.Run())
}

func getTestGormDB() (*gorm.DB, error) {
	dsn := getTestDSN()
	if dsn == "" {
		return nil, fmt.Errorf("no test DSN available")
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

func getTestDSN() string {
	return os.Getenv("TEST_DATABASE_URL")
}
