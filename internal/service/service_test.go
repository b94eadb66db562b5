package service

import (
	"compliance-registry/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.Score{},
		&model.SubscriptionPlan{},
		&model.Subscription{},
		&model.Payment{},
		&model.Notification{},
		&model.OTPRateLimit{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{
		FirstName:      "Maha",
		LastName:       "Alqahtani",
		PhoneNumber:    "+966500000001",
		Email:          "maha@example.com",
		HashedPassword: "x",
		Role:           model.RoleUser,
		IsActive:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPlan(t *testing.T, db *gorm.DB, name string, price float64, durationDays int, active bool) *model.SubscriptionPlan {
	t.Helper()
	plan := &model.SubscriptionPlan{
		Name:         name,
		Description:  name + " plan",
		Price:        price,
		DurationDays: durationDays,
		IsActive:     active,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func seedCompany(t *testing.T, db *gorm.DB, userID uint, status string, rejectionReason *string) *model.Company {
	t.Helper()
	company := &model.Company{
		UserID:          userID,
		Name:            "Desert Metrics",
		Email:           "info@desertmetrics.example",
		PhoneNumber:     "+966112223344",
		CR:              "CR-1010",
		Status:          status,
		RejectionReason: rejectionReason,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

var testCtx = context.Background()
