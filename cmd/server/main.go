package main

import (
	"log"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"gastronomy_backend/internal/app/di"
	"gastronomy_backend/internal/app/router"
	"gastronomy_backend/internal/feature/auth/adapters"
	authhandler "gastronomy_backend/internal/feature/auth/transport/handler"
	authusecase "gastronomy_backend/internal/feature/auth/usecase"
	"gastronomy_backend/internal/platform/db"
	jwtmw "gastronomy_backend/internal/platform/jwt"
	"gastronomy_backend/internal/platform/password"
	platformredis "gastronomy_backend/internal/platform/redis"
)

// accessTokenTTL is the lifetime of an issued access token. Refresh tokens
// carry the longer TTL.
const accessTokenTTL = 15 * time.Minute

func main() {
	// The signing secret must come from the operator; there is no fallback.
	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		log.Fatalf("%s is not set. Refusing to start without a signing secret.", jwtmw.EnvKeyJWTSecret)
	}

	// db
	gormDB := db.OpenDB()

	// Redis (optional: sessions fall back to MySQL without it)
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Sessions will be stored in MySQL.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	userRepo := adapters.NewUserMySQL(gormDB)
	sessionRepo := di.NewSessionRepository(rdb, gormDB)

	// Usecase
	issuer := jwtmw.NewGenerator(secret, accessTokenTTL)
	hasher := password.NewHasher(0)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, issuer, hasher)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)

	r := router.NewRouter(authH)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
