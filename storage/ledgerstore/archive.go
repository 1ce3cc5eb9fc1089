package ledgerstore

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fanforge/native/commitment"
	"fanforge/native/payout"
	"fanforge/native/pitch"
)

// Archive is the append-only reporting store for terminal ledger records.
// The live balance ledger never reads from it; it exists so closed
// commitments, accepted payout requests and settled pledges remain queryable
// after the hot state moves on.
type Archive struct {
	db *gorm.DB
}

// CommitmentRecord is the persisted form of a closed commitment.
type CommitmentRecord struct {
	ID           string `gorm:"primaryKey"`
	Owner        string `gorm:"index"`
	Principal    string
	DurationDays uint32
	Status       string
	Bonus        string
	Penalty      string
	CreatedAt    int64
	ClosedAt     int64
}

// PayoutRecord is the persisted form of an accepted withdrawal request.
type PayoutRecord struct {
	ID           string `gorm:"primaryKey"`
	Owner        string `gorm:"index"`
	Amount       string
	Status       string
	RequestedAt  int64
	ScheduledFor int64
}

// PledgeRecord is the persisted form of a settled campaign pledge.
type PledgeRecord struct {
	RowID    uint   `gorm:"primaryKey;autoIncrement"`
	PitchID  string `gorm:"index"`
	Backer   string `gorm:"index"`
	Amount   string
	Outcome  string
	PledgeAt int64
}

// Open initialises the archive at the supplied sqlite path, migrating the
// schema when needed. Use ":memory:" for ephemeral stores in tests.
func Open(path string) (*Archive, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ledgerstore: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&CommitmentRecord{}, &PayoutRecord{}, &PledgeRecord{}); err != nil {
		return nil, fmt.Errorf("ledgerstore: migrate: %w", err)
	}
	return &Archive{db: db}, nil
}

// RecordCommitment archives a terminal commitment record.
func (a *Archive) RecordCommitment(record *commitment.Commitment) error {
	if a == nil || a.db == nil || record == nil {
		return nil
	}
	row := CommitmentRecord{
		ID:           record.ID,
		Owner:        record.Owner,
		Principal:    record.Principal.String(),
		DurationDays: record.DurationDays,
		Status:       record.Status.String(),
		CreatedAt:    record.CreatedAt,
		ClosedAt:     record.ClosedAt,
	}
	if record.Bonus != nil {
		row.Bonus = record.Bonus.String()
	}
	if record.Penalty != nil {
		row.Penalty = record.Penalty.String()
	}
	return a.db.Save(&row).Error
}

// RecordPayout archives an accepted withdrawal request.
func (a *Archive) RecordPayout(record *payout.Request) error {
	if a == nil || a.db == nil || record == nil {
		return nil
	}
	row := PayoutRecord{
		ID:           record.ID,
		Owner:        record.Owner,
		Amount:       record.Amount.String(),
		Status:       record.Status.String(),
		RequestedAt:  record.RequestedAt,
		ScheduledFor: record.ScheduledFor,
	}
	return a.db.Save(&row).Error
}

// RecordPitchOutcome archives every pledge of a settled campaign together
// with the outcome it settled under.
func (a *Archive) RecordPitchOutcome(record *pitch.Pitch) error {
	if a == nil || a.db == nil || record == nil {
		return nil
	}
	outcome := record.Status.String()
	for _, pledge := range record.Contributions {
		row := PledgeRecord{
			PitchID:  record.ID,
			Backer:   pledge.Backer,
			Amount:   pledge.Amount.String(),
			Outcome:  outcome,
			PledgeAt: pledge.PledgeAt,
		}
		if err := a.db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// CommitmentsByOwner lists archived commitments for one owner, newest first.
func (a *Archive) CommitmentsByOwner(owner string) ([]CommitmentRecord, error) {
	if a == nil || a.db == nil {
		return nil, fmt.Errorf("ledgerstore: archive not initialised")
	}
	var rows []CommitmentRecord
	err := a.db.Where("owner = ?", owner).Order("closed_at desc").Find(&rows).Error
	return rows, err
}

// PayoutsByOwner lists archived payout requests for one owner, newest first.
func (a *Archive) PayoutsByOwner(owner string) ([]PayoutRecord, error) {
	if a == nil || a.db == nil {
		return nil, fmt.Errorf("ledgerstore: archive not initialised")
	}
	var rows []PayoutRecord
	err := a.db.Where("owner = ?", owner).Order("requested_at desc").Find(&rows).Error
	return rows, err
}
