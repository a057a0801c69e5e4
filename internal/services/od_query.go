package services

import (
	"context"
	"errors"
	"fmt"
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/platform/obs"
	"mrt-od-service/internal/ports"
	"time"
)

// ErrQueryTimeout marks a store call that exceeded the configured timeout.
var ErrQueryTimeout = errors.New("store query timed out")

// ODService answers origin-destination queries against the fact table.
type ODService struct {
	Repo    ports.ODRepository
	Timeout time.Duration
}

func NewODService(repo ports.ODRepository, timeout time.Duration) *ODService {
	return &ODService{Repo: repo, Timeout: timeout}
}

// Query normalizes station names, selects the query branch and returns
// ranked rows.
//
// Branches, in precedence order:
//   - both stations set: total for the pair (zero or one row)
//   - only From: up to MaxODResults destinations
//   - only To: up to MaxODResults origins
//
// Neither station set yields domain.ErrMissingStation.
func (s *ODService) Query(ctx context.Context, q domain.ODQuery) (*domain.ODResultSet, error) {
	if s.Repo == nil {
		return nil, errors.New("query od: repository is nil")
	}

	q, mode, err := checkQuery(q)
	if err != nil {
		return nil, fmt.Errorf("query od: %w", err)
	}

	return s.run(ctx, q, mode)
}

// checkQuery normalizes q and reports its branch, or the client error that
// rejects it.
func checkQuery(q domain.ODQuery) (domain.ODQuery, domain.QueryMode, error) {
	q = q.Normalized()
	mode, err := q.Mode()
	if err != nil {
		return q, "", err
	}
	if err := q.Window.Validate(); err != nil {
		return q, "", err
	}
	return q, mode, nil
}

// run executes a checked query against the store. Only store calls are timed.
func (s *ODService) run(ctx context.Context, q domain.ODQuery, mode domain.QueryMode) (_ *domain.ODResultSet, err error) {
	defer obs.Time(ctx, "od.Query")(&err)

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	rs := &domain.ODResultSet{
		Mode:   mode,
		From:   q.From,
		To:     q.To,
		Window: q.Window,
		Rows:   []domain.ODRow{},
	}

	switch mode {
	case domain.QueryModePair:
		row, found, e := s.Repo.SumPair(ctx, q.From, q.To, q.Window)
		if e != nil {
			return nil, wrapStoreErr(ctx, "query od: sum pair", e)
		}
		if found {
			rs.Rows = append(rs.Rows, row)
		}

	case domain.QueryModeFrom:
		rows, e := s.Repo.TopDestinations(ctx, q.From, q.Window, domain.MaxODResults)
		if e != nil {
			return nil, wrapStoreErr(ctx, "query od: top destinations", e)
		}
		rs.Rows = capRows(rows)

	case domain.QueryModeTo:
		rows, e := s.Repo.TopOrigins(ctx, q.To, q.Window, domain.MaxODResults)
		if e != nil {
			return nil, wrapStoreErr(ctx, "query od: top origins", e)
		}
		rs.Rows = capRows(rows)
	}

	return rs, nil
}

// Guards the result cap even if an adapter ignores the limit.
func capRows(rows []domain.ODRow) []domain.ODRow {
	if rows == nil {
		return []domain.ODRow{}
	}
	if len(rows) > domain.MaxODResults {
		return rows[:domain.MaxODResults]
	}
	return rows
}

func wrapStoreErr(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrQueryTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
