package config

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/deliverus/backend/internal/models"
	"github.com/deliverus/backend/pkg/db"
)

type Config struct {
	DB_HOST       string
	DB_PORT       string
	DB_USER       string
	DB_PASSWORD   string
	DB_NAME       string
	SERVER_PORT   string
	JWT_SECRET    string
	KAFKA_ADDRESS string
	LOG_LEVEL     string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:       os.Getenv("DB_HOST"),
		DB_PORT:       os.Getenv("DB_PORT"),
		DB_USER:       os.Getenv("DB_USER"),
		DB_PASSWORD:   os.Getenv("DB_PASSWORD"),
		DB_NAME:       os.Getenv("DB_NAME"),
		SERVER_PORT:   envDefault("SERVER_PORT", "8080"),
		JWT_SECRET:    os.Getenv("JWT_SECRET"),
		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		LOG_LEVEL:     envDefault("LOG_LEVEL", "info"),
	}

	return config, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
}

func InitDB(ctx context.Context, c *Config) (*gorm.DB, error) {
	database, err := db.Open(ctx, c.DSN())
	if err != nil {
		return nil, err
	}
	if err := Migrate(database); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return database, nil
}

func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.Restaurant{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
	)
}
