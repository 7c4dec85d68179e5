package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BlacklistEntry struct - one blacklisted perk of a user
type BlacklistEntry struct {
	UserID    string    `gorm:"type:varchar(64);primaryKey"`
	PerkID    string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time `gorm:"type:timestamp"`
}

// TableName func
func (b *BlacklistEntry) TableName() string {
	return "blacklists"
}

// MatchRecord struct - a registered match result
type MatchRecord struct {
	ID        string      `gorm:"type:varchar(36);primaryKey"`
	UserID    string      `gorm:"type:varchar(64);not null;index"`
	Outcome   Outcome     `gorm:"type:varchar(8);not null;index"`
	MatchDate time.Time   `gorm:"type:timestamp;not null;index"`
	Perks     []MatchPerk `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"type:timestamp"`
}

// TableName func
func (m *MatchRecord) TableName() string {
	return "matches"
}

// BeforeCreate hook - generates UUID before creating
func (m *MatchRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID != "" {
		return nil
	}
	id, err := uuid.NewRandom() // v4
	if err != nil {
		return err
	}
	m.ID = id.String()
	return nil
}

// MatchPerk struct - one slot of the build a match was played with
type MatchPerk struct {
	MatchID string `gorm:"type:varchar(36);primaryKey"`
	Slot    int    `gorm:"primaryKey;autoIncrement:false"`
	PerkID  string `gorm:"type:varchar(64);not null;index"`
}

// TableName func
func (m *MatchPerk) TableName() string {
	return "match_perks"
}

// NewMatchRecord builds a record with ordered perk slots from an outcome
func NewMatchRecord(o MatchOutcome) *MatchRecord {
	record := &MatchRecord{
		UserID:    o.UserID,
		Outcome:   OutcomeOf(o.Won),
		MatchDate: o.PlayedAt.UTC(),
		Perks:     make([]MatchPerk, len(o.PerkIDs)),
	}
	for i, perkID := range o.PerkIDs {
		record.Perks[i] = MatchPerk{Slot: i, PerkID: perkID}
	}
	return record
}

// MigrateDatabase func - Auto-migrate database schema
func MigrateDatabase(db *gorm.DB) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	logrus.Info("Migrate database ...")
	return db.AutoMigrate(&BlacklistEntry{}, &MatchRecord{}, &MatchPerk{})
}
