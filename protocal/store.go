package protocal

import (
	"fmt"

	"perk-roulette/configs"
	fileStore "perk-roulette/internal/adapters/output/file"
	memoryStore "perk-roulette/internal/adapters/output/memory"
	redisStore "perk-roulette/internal/adapters/output/redis"
	"perk-roulette/internal/adapters/output/relational"
	"perk-roulette/internal/ports/output"
	"perk-roulette/pkg/database_driver/gorm"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	gormio "gorm.io/gorm"
)

// newConstraintStore opens the backend named by store.backend
func newConstraintStore(cfg *configs.Config) (output.ConstraintStore, error) {
	logrus.Infof("Constraint store backend: %s", cfg.Store.Backend)
	switch cfg.Store.Backend {
	case configs.StoreBackendFile, "":
		return fileStore.NewConstraintStore(cfg.Store.DataDir)
	case configs.StoreBackendMemory:
		return memoryStore.NewMemoryConstraintStore(), nil
	case configs.StoreBackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redisStore.NewConstraintStore(client, cfg.Redis.Prefix), nil
	case configs.StoreBackendPostgres:
		conn, err := gorm.ConnectToPostgreSQL(
			cfg.Postgres.Host,
			cfg.Postgres.Port,
			cfg.Postgres.Username,
			cfg.Postgres.Password,
			cfg.Postgres.DbName,
			cfg.Postgres.SSLMode,
		)
		if err != nil {
			return nil, err
		}
		return relationalStore(conn.Postgres)
	case configs.StoreBackendSQLite:
		db, err := gorm.ConnectToSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return relationalStore(db)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func relationalStore(db *gormio.DB) (output.ConstraintStore, error) {
	store, err := relational.NewConstraintStore(db)
	if err != nil {
		if cerr := gorm.Disconnect(db); cerr != nil {
			logrus.Errorln(cerr)
		}
		return nil, err
	}
	return store, nil
}
