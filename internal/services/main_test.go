package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// One in-memory database per test; a second pooled connection would
	// otherwise see an empty schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Event{},
		&models.TicketType{},
		&models.Promotion{},
		&models.Order{},
		&models.OrderItem{},
		&models.Ticket{},
		&models.Attendance{},
	))
	return db
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testPricingConfig() PricingConfig {
	return PricingConfig{
		ServiceRate:     decimal.RequireFromString("0.05"),
		ProcessingRate:  decimal.RequireFromString("0.029"),
		ProcessingFixed: decimal.RequireFromString("0.30"),
	}
}

func seedEvent(t *testing.T, db *gorm.DB) *models.Event {
	t.Helper()

	user := models.User{
		Name:     "Organizer",
		Email:    uuid.NewString() + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)

	event := models.Event{
		Title:     "Test Concert",
		StartTime: time.Now().Add(24 * time.Hour),
		EndTime:   time.Now().Add(26 * time.Hour),
		Venue:     "Test Arena",
		UserID:    user.ID,
	}
	require.NoError(t, db.Create(&event).Error)
	return &event
}

func seedTicketType(t *testing.T, db *gorm.DB, eventID uuid.UUID, price string, total int) *models.TicketType {
	t.Helper()

	tt := models.TicketType{
		Name:    "General Admission",
		Price:   decimal.RequireFromString(price),
		Total:   total,
		Visible: true,
		EventID: eventID,
	}
	require.NoError(t, db.Create(&tt).Error)
	return &tt
}

func seedPurchaser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := models.User{
		Name:     "Purchaser",
		Email:    uuid.NewString() + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

type recordingNotifier struct {
	receipts []Receipt
	fail     bool
}

func (n *recordingNotifier) OrderPaid(ctx context.Context, receipt Receipt) error {
	n.receipts = append(n.receipts, receipt)
	if n.fail {
		return context.DeadlineExceeded
	}
	return nil
}

type failingEncoder struct{}

func (failingEncoder) Encode(string) ([]byte, error) {
	return nil, context.DeadlineExceeded
}

func newTestOrderService(t *testing.T, db *gorm.DB, notifier Notifier, encoder PayloadEncoder) *OrderService {
	t.Helper()

	logger := newTestLogger()
	if notifier == nil {
		notifier = &recordingNotifier{}
	}
	if encoder == nil {
		encoder = NewQRPayloadEncoder()
	}
	return NewOrderService(OrderServiceProperty{
		DB:            db,
		Logger:        logger,
		Pricing:       testPricingConfig(),
		Ledger:        NewInventoryLedger(db, logger),
		Promotions:    NewPromotionValidator(db, logger),
		Encoder:       encoder,
		Notifier:      notifier,
		PayloadSecret: "test-secret",
	})
}
