package relational

import (
	"context"
	"fmt"
	"time"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/output"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var _ output.ConstraintStore = (*ConstraintStore)(nil)

// ConstraintStore struct - Secondary/Driven adapter for PostgreSQL and SQLite through gorm
type ConstraintStore struct {
	dbGorm *gorm.DB
}

// NewConstraintStore func - migrates the schema and returns the store
func NewConstraintStore(dbGorm *gorm.DB) (*ConstraintStore, error) {
	if err := domain.MigrateDatabase(dbGorm); err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	return &ConstraintStore{
		dbGorm: dbGorm,
	}, nil
}

// LoadBlacklist func
func (p *ConstraintStore) LoadBlacklist(ctx context.Context, userID string) ([]string, error) {
	perkIDs := make([]string, 0)
	err := p.dbGorm.WithContext(ctx).
		Model(&domain.BlacklistEntry{}).
		Where("user_id = ?", userID).
		Order("perk_id").
		Pluck("perk_id", &perkIDs).Error
	if err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	return perkIDs, nil
}

// SaveBlacklist func - replaces the user's rows in one transaction
func (p *ConstraintStore) SaveBlacklist(ctx context.Context, userID string, perkIDs []string) error {
	return p.dbGorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.BlacklistEntry{}).Error; err != nil {
			logrus.Errorln(err)
			return err
		}
		if len(perkIDs) == 0 {
			return nil
		}
		now := time.Now().UTC()
		entries := make([]domain.BlacklistEntry, len(perkIDs))
		for i, perkID := range perkIDs {
			entries[i] = domain.BlacklistEntry{UserID: userID, PerkID: perkID, CreatedAt: now}
		}
		if err := tx.Create(&entries).Error; err != nil {
			logrus.Errorln(err)
			return err
		}
		return nil
	})
}

// RecordOutcome func - inserts the match with its perk slots
func (p *ConstraintStore) RecordOutcome(ctx context.Context, outcome domain.MatchOutcome) error {
	record := domain.NewMatchRecord(outcome)
	if err := p.dbGorm.WithContext(ctx).Create(record).Error; err != nil {
		logrus.Errorln(err)
		return err
	}
	return nil
}

// QueryUsage func - aggregates per perk in SQL
func (p *ConstraintStore) QueryUsage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRow, error) {
	query := p.dbGorm.WithContext(ctx).
		Table("match_perks AS mp").
		Select("mp.perk_id AS perk_id, COUNT(*) AS games, "+
			"SUM(CASE WHEN m.outcome = ? THEN 1 ELSE 0 END) AS wins, "+
			"SUM(CASE WHEN m.outcome = ? THEN 1 ELSE 0 END) AS losses",
			domain.OutcomeWin, domain.OutcomeLoss).
		Joins("JOIN matches AS m ON m.id = mp.match_id")
	if filter.UserID != "" {
		query = query.Where("m.user_id = ?", filter.UserID)
	}
	if filter.Outcome != "" {
		query = query.Where("m.outcome = ?", filter.Outcome)
	}
	if !filter.Since.IsZero() {
		query = query.Where("m.match_date >= ?", filter.Since.UTC())
	}
	direction := "DESC"
	if filter.Order == domain.UsageOrderLeast {
		direction = "ASC"
	}
	query = query.Group("mp.perk_id").Order(fmt.Sprintf("games %s, perk_id ASC", direction))
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	rows := make([]domain.UsageRow, 0)
	if err := query.Scan(&rows).Error; err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	return rows, nil
}

// Ping func
func (p *ConstraintStore) Ping(ctx context.Context) error {
	sqlDB, err := p.dbGorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close func
func (p *ConstraintStore) Close() error {
	sqlDB, err := p.dbGorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
