package config

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to MySQL using the loaded configuration.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUsername,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBDatabase,
	)

	// In release mode, suppress SQL logs unless the caller flips the level
	// back to logger.Info to print SQL statements again.
	logLevel := logger.Info
	if strings.ToLower(cfg.GinMode) == "release" {
		logLevel = logger.Warn
	}

	gormConfig := &gorm.Config{
		// TranslateError lets duplicate-key races surface as
		// gorm.ErrDuplicatedKey instead of a raw driver error.
		TranslateError: true,
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	log.Println("Database connected successfully")
	return db, nil
}
