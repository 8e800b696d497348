package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/models"
	"github.com/farhanmaulana/eventgate/internal/services"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret     string
	WebhookSecret string
	PayloadSecret string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		PayloadSecret: os.Getenv("PAYLOAD_SECRET"),
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PayloadSecret == "" {
		cfg.PayloadSecret = cfg.JWTSecret
	}
	return cfg, nil
}

// LoadPricingConfig reads fee rates from the environment with the platform
// defaults: 5% service fee, 2.9% + $0.30 processing fee.
func LoadPricingConfig() services.PricingConfig {
	return services.PricingConfig{
		ServiceRate:     getDecimal("SERVICE_RATE", "0.05"),
		ProcessingRate:  getDecimal("PROCESSING_RATE", "0.029"),
		ProcessingFixed: getDecimal("PROCESSING_FIXED", "0.30"),
	}
}

func getDecimal(key, fallback string) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := enableUUIDExtension(db); err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Event{},
		&models.TicketType{},
		&models.Promotion{},
		&models.Order{},
		&models.OrderItem{},
		&models.Ticket{},
		&models.Attendance{},
	)
	if err != nil {
		return nil, err
	}

	seedRoles(db)

	return db, nil
}

func seedRoles(db *gorm.DB) {
	roles := []models.Role{
		{Name: "organizer"},
		{Name: "attendee"},
		{Name: "admin"},
	}

	for _, role := range roles {
		var existingRole models.Role
		result := db.Where("name = ?", role.Name).First(&existingRole)
		if result.Error != nil {
			db.Create(&role)
		}
	}
}
