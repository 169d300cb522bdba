// Package retention anonymizes borrower records older than the retention period.
package retention

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/common"
	"github.com/dmitrijs2005/kitlibrarian/internal/dbx"
	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/repomanager"
	"github.com/juju/clock"
)

const (
	batchLimit      = 500
	anonymizedPhone = "0000000000"
	suffixLength    = 6
)

// randomSuffix is a seam for tests.
var randomSuffix = common.RandomSuffix

// Recorder receives the number of anonymized borrowers.
type Recorder interface {
	AddAnonymized(n int)
}

// Result reports how many borrowers a run anonymized.
type Result struct {
	Updated int `json:"updated"`
}

type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	days        int
	clock       clock.Clock
	logger      logging.Logger
	recorder    Recorder
}

func NewService(db *sql.DB, rm repomanager.RepositoryManager, days int, clk clock.Clock, l logging.Logger, r Recorder) *Service {
	return &Service{
		db:          db,
		repomanager: rm,
		days:        days,
		clock:       clk,
		logger:      l.With("module", "retention"),
		recorder:    r,
	}
}

// Run anonymizes up to 500 borrowers created more than the retention period
// ago. Each borrower is updated in its own transaction; failures are logged
// and skipped. A non-positive retention period disables the job.
func (s *Service) Run(ctx context.Context) (Result, error) {
	if s.days <= 0 {
		s.logger.Warn(ctx, "retention disabled, skipping", "retention_days", s.days)
		return Result{}, nil
	}

	now := s.clock.Now()
	cutoff := now.Add(-time.Duration(s.days) * 24 * time.Hour)
	s.logger.Info(ctx, "running anonymization", "retention_days", s.days, "cutoff", cutoff)

	stale, err := s.repomanager.Borrowers(s.db).SelectStale(ctx, cutoff, batchLimit)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, b := range stale {
		if err := s.anonymize(ctx, b.ID, now); err != nil {
			s.logger.Warn(ctx, "failed to anonymize borrower", "borrower_id", b.ID, "error", err)
			continue
		}
		res.Updated++
	}

	if s.recorder != nil {
		s.recorder.AddAnonymized(res.Updated)
	}
	s.logger.Info(ctx, "borrowers anonymized", "updated", res.Updated)
	return res, nil
}

func (s *Service) anonymize(ctx context.Context, id string, at time.Time) error {
	suffix, err := randomSuffix(suffixLength)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Borrowers(tx).Anonymize(ctx, id, "Anonymized "+suffix, anonymizedPhone, at)
	})
}
