package gorm

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB struct
type DB struct {
	Postgres *gorm.DB
}

// ConnectToPostgreSQL func
func ConnectToPostgreSQL(host, port, username, pass, dbname string, sslmode bool) (*DB, error) {
	if host == "" && port == "" && dbname == "" {
		return nil, errors.New("cannot estabished the connection")
	}

	mode := "disable"
	if sslmode {
		mode = "require"
	}
	connectionStr := fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=%v connect_timeout=0", host, username, pass, dbname, port, mode)

	pg, err := gorm.Open(postgres.Open(connectionStr), &gorm.Config{
		DryRun: false,
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		logrus.Error(err)
		return nil, err
	}

	logrus.Infof("Connected to postgres: host=%v port=%v dbname=%v sslmode=%v", host, port, dbname, mode)
	return &DB{Postgres: pg}, nil
}

// Disconnect func - closes the pool behind a gorm handle
func Disconnect(db *gorm.DB) error {
	sqlDb, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDb.Close(); err != nil {
		logrus.Error(err)
		return err
	}
	logrus.Println("Database connection has closed")
	return nil
}
