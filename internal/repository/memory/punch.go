package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/google/uuid"
)

type punchRepository struct {
	s *Store
}

func (r *punchRepository) Create(_ context.Context, p punch.Punch) (punch.Punch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.IdempotencyKey != nil {
		for _, existing := range r.s.punches {
			if existing.EmployeeID == p.EmployeeID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *p.IdempotencyKey {
				return punch.Punch{}, punch.ErrDuplicateIdempotencyKey
			}
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return punch.Punch{}, err
	}
	r.s.nextSeq++
	p.ID = id.String()
	p.Seq = r.s.nextSeq
	p.CreatedAt = r.s.now()
	if p.ReviewStatus == "" {
		p.ReviewStatus = punch.ReviewStatusNone
	}
	r.s.punches = append(r.s.punches, p)
	return p, nil
}

func (r *punchRepository) GetByID(_ context.Context, id string, companyID string) (punch.Punch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.punches {
		if p.ID == id && p.CompanyID == companyID {
			return p, nil
		}
	}
	return punch.Punch{}, punch.ErrPunchNotFound
}

func (r *punchRepository) GetByIdempotencyKey(_ context.Context, employeeID string, key string) (punch.Punch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.punches {
		if p.EmployeeID == employeeID && p.IdempotencyKey != nil && *p.IdempotencyKey == key {
			return p, nil
		}
	}
	return punch.Punch{}, punch.ErrPunchNotFound
}

// LockEmployee is a no-op: WithinTransaction already serializes writers.
func (r *punchRepository) LockEmployee(context.Context, string) error {
	return nil
}

func (r *punchRepository) LastClockInBefore(_ context.Context, employeeID string, before time.Time) (punch.Punch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var last *punch.Punch
	for i := range r.s.punches {
		p := r.s.punches[i]
		if p.EmployeeID != employeeID || p.Type != punch.TypeClockIn || p.ReviewStatus == punch.ReviewStatusRejected {
			continue
		}
		if p.Timestamp.After(before) {
			continue
		}
		if last == nil || last.Before(p) {
			last = &p
		}
	}
	if last == nil {
		return punch.Punch{}, punch.ErrPunchNotFound
	}
	return *last, nil
}

func (r *punchRepository) LatestClockIns(_ context.Context, companyID string, at time.Time) ([]punch.Punch, error) {
	clockIns := r.filter(func(p punch.Punch) bool {
		return p.CompanyID == companyID && p.Type == punch.TypeClockIn &&
			p.ReviewStatus != punch.ReviewStatusRejected && !p.Timestamp.After(at)
	})

	latest := make(map[string]punch.Punch)
	for _, p := range clockIns {
		latest[p.EmployeeID] = p
	}
	result := make([]punch.Punch, 0, len(latest))
	for _, p := range latest {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

func (r *punchRepository) filter(keep func(p punch.Punch) bool) []punch.Punch {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]punch.Punch, 0)
	for _, p := range r.s.punches {
		if keep(p) {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result
}

func inRange(ts, from, to time.Time) bool {
	return !ts.Before(from) && !ts.After(to)
}

func (r *punchRepository) ListByEmployee(_ context.Context, employeeID string, from, to time.Time) ([]punch.Punch, error) {
	return r.filter(func(p punch.Punch) bool {
		return p.EmployeeID == employeeID && p.ReviewStatus != punch.ReviewStatusRejected && inRange(p.Timestamp, from, to)
	}), nil
}

func (r *punchRepository) ListByCompany(_ context.Context, companyID string, from, to time.Time) ([]punch.Punch, error) {
	return r.filter(func(p punch.Punch) bool {
		return p.CompanyID == companyID && p.ReviewStatus != punch.ReviewStatusRejected && inRange(p.Timestamp, from, to)
	}), nil
}

func (r *punchRepository) CountRejected(_ context.Context, employeeID string, from, to time.Time) (int, error) {
	rejected := r.filter(func(p punch.Punch) bool {
		return p.EmployeeID == employeeID && p.ReviewStatus == punch.ReviewStatusRejected &&
			!p.Timestamp.Before(from) && p.Timestamp.Before(to)
	})
	return len(rejected), nil
}

func (r *punchRepository) Adjacent(_ context.Context, target punch.Punch) (*punch.Punch, *punch.Punch, error) {
	others := r.filter(func(p punch.Punch) bool {
		return p.EmployeeID == target.EmployeeID && p.ID != target.ID && p.ReviewStatus != punch.ReviewStatusRejected
	})

	var prev, next *punch.Punch
	for i := range others {
		p := others[i]
		if p.Before(target) {
			prev = &p
		} else if next == nil {
			next = &p
		}
	}
	return prev, next, nil
}

func (r *punchRepository) ListForReview(_ context.Context, companyID string, since time.Time, statuses []punch.ReviewStatus) ([]punch.Punch, error) {
	result := r.filter(func(p punch.Punch) bool {
		return p.CompanyID == companyID && !p.Timestamp.Before(since) &&
			(len(statuses) == 0 || slices.Contains(statuses, p.ReviewStatus))
	})
	slices.Reverse(result)
	return result, nil
}

func (r *punchRepository) UpdateReview(_ context.Context, id string, expected punch.ReviewStatus, upd punch.ReviewUpdate) (punch.Punch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.punches {
		p := &r.s.punches[i]
		if p.ID != id {
			continue
		}
		if p.ReviewStatus != expected {
			return punch.Punch{}, punch.ErrPunchAlreadyReviewed
		}

		p.ReviewStatus = upd.Status
		if upd.FlagReason != nil {
			p.FlagReason = *upd.FlagReason
		}
		if upd.Timestamp != nil {
			p.Timestamp = *upd.Timestamp
		}
		if upd.OriginalTimestamp != nil && p.OriginalTimestamp == nil {
			original := *upd.OriginalTimestamp
			p.OriginalTimestamp = &original
		}
		if upd.Notes != nil {
			notes := *upd.Notes
			p.Notes = &notes
		}
		reviewer := upd.ReviewedBy
		reviewedAt := upd.ReviewedAt
		p.ReviewedBy = &reviewer
		p.ReviewedAt = &reviewedAt
		return *p, nil
	}
	return punch.Punch{}, punch.ErrPunchNotFound
}

func (r *punchRepository) ListActiveCompanyIDs(_ context.Context, since time.Time) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, p := range r.s.punches {
		if p.Timestamp.Before(since) {
			continue
		}
		if _, ok := seen[p.CompanyID]; !ok {
			seen[p.CompanyID] = struct{}{}
			ids = append(ids, p.CompanyID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
