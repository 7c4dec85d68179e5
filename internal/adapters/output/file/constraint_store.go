package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/output"

	"github.com/sirupsen/logrus"
)

const (
	blacklistDir  = "blacklists"
	matchesFile   = "matches.csv"
	fixedColumns  = 3 // user_id, outcome, match_date
	filePerm      = 0o644
	directoryPerm = 0o755
)

var _ output.ConstraintStore = (*ConstraintStore)(nil)

// blacklistFile struct - on-disk blacklist of one user
type blacklistFile struct {
	UserID    string    `json:"user_id"`
	PerkIDs   []string  `json:"perk_ids"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConstraintStore struct - Output adapter persisting constraints under a data directory.
// Each user's blacklist is a JSON file replaced atomically; match results are
// appended to a single CSV log.
type ConstraintStore struct {
	dir       string
	matchesMu sync.Mutex
}

// NewConstraintStore func - Creates the data directory layout if needed
func NewConstraintStore(dir string) (*ConstraintStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, blacklistDir), directoryPerm); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	logrus.Infof("File constraint store ready: dir=%s", dir)
	return &ConstraintStore{dir: dir}, nil
}

// blacklistPath escapes the user id so it is always a single file name
func (s *ConstraintStore) blacklistPath(userID string) string {
	return filepath.Join(s.dir, blacklistDir, url.PathEscape(userID)+".json")
}

// LoadBlacklist func
func (s *ConstraintStore) LoadBlacklist(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.blacklistPath(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	var stored blacklistFile
	if err := json.Unmarshal(data, &stored); err != nil {
		logrus.Errorln(err)
		return nil, fmt.Errorf("decode blacklist of %s: %w", userID, err)
	}
	if stored.PerkIDs == nil {
		return []string{}, nil
	}
	return stored.PerkIDs, nil
}

// SaveBlacklist func - writes to a temp file and renames it over the old one
func (s *ConstraintStore) SaveBlacklist(ctx context.Context, userID string, perkIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sorted := append([]string{}, perkIDs...)
	sort.Strings(sorted)
	data, err := json.MarshalIndent(blacklistFile{
		UserID:    userID,
		PerkIDs:   sorted,
		UpdatedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}

	target := s.blacklistPath(userID)
	tmp, err := os.CreateTemp(filepath.Dir(target), ".blacklist-*")
	if err != nil {
		logrus.Errorln(err)
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		logrus.Errorln(err)
		return err
	}
	if err := tmp.Close(); err != nil {
		logrus.Errorln(err)
		return err
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		logrus.Errorln(err)
		return err
	}
	return nil
}

// RecordOutcome func - appends one CSV row per match
func (s *ConstraintStore) RecordOutcome(ctx context.Context, outcome domain.MatchOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.matchesMu.Lock()
	defer s.matchesMu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, matchesFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		logrus.Errorln(err)
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		header := []string{"user_id", "outcome", "match_date"}
		for i := range outcome.PerkIDs {
			header = append(header, fmt.Sprintf("perk_%d", i+1))
		}
		if err := w.Write(header); err != nil {
			return err
		}
	}
	row := []string{
		outcome.UserID,
		string(domain.OutcomeOf(outcome.Won)),
		outcome.PlayedAt.UTC().Format(domain.DatetimeLayout),
	}
	row = append(row, outcome.PerkIDs...)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logrus.Errorln(err)
		return err
	}
	return f.Sync()
}

// QueryUsage func - scans the match log and aggregates it in memory
func (s *ConstraintStore) QueryUsage(ctx context.Context, filter domain.UsageFilter) ([]domain.UsageRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outcomes, err := s.readOutcomes()
	if err != nil {
		logrus.Errorln(err)
		return nil, err
	}
	return domain.AggregateUsage(outcomes, filter), nil
}

func (s *ConstraintStore) readOutcomes() ([]domain.MatchOutcome, error) {
	s.matchesMu.Lock()
	defer s.matchesMu.Unlock()

	f, err := os.Open(filepath.Join(s.dir, matchesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	outcomes := make([]domain.MatchOutcome, 0)
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < fixedColumns {
			logrus.Warnf("Skipping short match row: line=%d", line)
			continue
		}
		playedAt, err := time.Parse(domain.DatetimeLayout, row[2])
		if err != nil {
			logrus.Warnf("Skipping match row with bad date: line=%d, err=%v", line, err)
			continue
		}
		outcomes = append(outcomes, domain.MatchOutcome{
			UserID:   row[0],
			Won:      domain.Outcome(row[1]) == domain.OutcomeWin,
			PerkIDs:  row[fixedColumns:],
			PlayedAt: playedAt,
		})
	}
	return outcomes, nil
}

// Ping func - checks the data directory is still there
func (s *ConstraintStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// Close func
func (s *ConstraintStore) Close() error {
	return nil
}
