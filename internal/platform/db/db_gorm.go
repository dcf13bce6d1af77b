// Package db bootstraps the GORM connection to the credential store.
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"gastronomy_backend/internal/feature/auth/adapters"
	"gastronomy_backend/internal/feature/auth/domain/entity"
)

// BuildDSN assembles the MySQL DSN from the process environment.
// INSTANCE_CONNECTION_NAME switches to a Cloud SQL unix socket.
func BuildDSN() string {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")

	if instance := os.Getenv("INSTANCE_CONNECTION_NAME"); instance != "" {
		return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			user, pass, instance, name)
	}
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		user, pass, host, port, name)
}

// OpenDB connects to the store, retrying for up to a minute so the server
// survives a database that is still starting. RUN_MIGRATIONS=true runs the
// automigration, which creates the unique index on users.email that the
// duplicate-signup guarantee depends on.
func OpenDB() *gorm.DB {
	dsn := BuildDSN()

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(gmysql.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := db.AutoMigrate(
			&entity.User{},
			&adapters.SessionModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
