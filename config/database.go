package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/e-course-backend/models"
)

var DB *gorm.DB

func InitDB(s Settings) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBTimeZone,
	)

	logLevel := logger.Warn
	if s.GinMode == "debug" {
		logLevel = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		Log.Fatal("cannot connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		Log.Fatal("cannot get sql.DB from gorm", zap.Error(err))
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		Log.Fatal("auto migrate failed", zap.Error(err))
	}

	DB = db
	Log.Info("postgres connected & migrated")
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Category{},
		&models.Course{},
		&models.Chapter{},
		&models.MuxData{},
		&models.Attachment{},
		&models.CleanupTask{},
	)
}
