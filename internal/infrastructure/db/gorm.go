package db

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm connects to MySQL and logs SQL through log (warnings and slow queries).
func OpenGorm(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	gdb, err := openGorm(mysql.Open(dsn), gormLogger(log))
	if err != nil {
		return nil, err
	}
	log.WithField("dialect", "mysql").Info("gorm: connected")
	return gdb, nil
}

// OpenGormWithDialector is OpenGorm for an arbitrary dialector, with gorm's default logger.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	return openGorm(dial, logger.Default.LogMode(logger.Warn))
}

func openGorm(dial gorm.Dialector, l logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:               l,
		NowFunc:              func() time.Time { return time.Now().UTC() },
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func gormLogger(log *logrus.Logger) logger.Interface {
	return logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
