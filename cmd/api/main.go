package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"clubelocal-backend/pkg/logger"
)

func main() {
	// .env is a development convenience; production relies on real
	// environment variables.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using system environment", nil)
	}

	env := getEnv("APP_ENV", "development")
	logger.Init(env)
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	Serve()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
