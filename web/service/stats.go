package service

import (
	"fmt"
	"sort"

	"github.com/oplog/oplog/database/model"
	"github.com/oplog/oplog/logbook"
	"github.com/oplog/oplog/util/common"

	"gorm.io/gorm"
)

// Count is one group of an aggregation.
type Count struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// MonthCounts holds the per-category counts of one calendar month.
type MonthCounts struct {
	Month  int              `json:"month"`
	Counts map[string]int64 `json:"counts"`
}

// RankEntry is one row of the cross-user leaderboard.
type RankEntry struct {
	Owner      string           `json:"owner"`
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"byCategory"`
}

// CategoryProgress compares a year's count of one category to its target.
type CategoryProgress struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	Target   int     `json:"target"`
	Percent  float64 `json:"percent"`
	Display  string  `json:"display"`
}

// StatsService aggregates procedure records. An empty owner aggregates
// across all owners.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

func (s *StatsService) scoped(owner string) *gorm.DB {
	tx := s.DB.Model(&model.Procedure{})
	if owner != "" {
		tx = tx.Where("owner = ?", owner)
	}
	return tx
}

func (s *StatsService) groupCount(owner, column string) (map[string]int64, error) {
	var rows []struct {
		Name  string
		Count int64
	}
	err := s.scoped(owner).
		Select(column + " AS name, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Name] += r.Count
	}
	return out, nil
}

// ordered lists known keys first, zero-filled, then any other stored values
// in name order.
func ordered(known []string, counts map[string]int64) []Count {
	out := make([]Count, 0, len(known)+len(counts))
	seen := make(map[string]bool, len(known))
	for _, k := range known {
		out = append(out, Count{Key: k, Count: counts[k]})
		seen[k] = true
	}
	var extra []string
	for k := range counts {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, Count{Key: k, Count: counts[k]})
	}
	return out
}

// CountsByCategory counts records per category.
func (s *StatsService) CountsByCategory(owner string) ([]Count, error) {
	counts, err := s.groupCount(owner, "category")
	if err != nil {
		return nil, err
	}
	cats := logbook.Categories()
	known := make([]string, len(cats))
	for i, c := range cats {
		known[i] = string(c)
	}
	return ordered(known, counts), nil
}

// CountsByRole counts records per procedure role.
func (s *StatsService) CountsByRole(owner string) ([]Count, error) {
	counts, err := s.groupCount(owner, "role")
	if err != nil {
		return nil, err
	}
	roles := logbook.OpRoles()
	known := make([]string, len(roles))
	for i, r := range roles {
		known[i] = string(r)
	}
	return ordered(known, counts), nil
}

// MonthlyBreakdown returns twelve months of per-category counts for year.
// Months and categories without records report zero.
func (s *StatsService) MonthlyBreakdown(owner string, year int) ([]MonthCounts, error) {
	var rows []struct {
		Month    int
		Category string
		Count    int64
	}
	err := s.scoped(owner).
		Select("CAST(substr(date_sort, 6, 2) AS INTEGER) AS month, category, COUNT(*) AS count").
		Where("date_sort LIKE ?", fmt.Sprintf("%04d-%%", year)).
		Group("month, category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]MonthCounts, 12)
	for i := range out {
		out[i] = MonthCounts{Month: i + 1, Counts: map[string]int64{}}
		for _, c := range logbook.Categories() {
			out[i].Counts[string(c)] = 0
		}
	}
	for _, r := range rows {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		out[r.Month-1].Counts[r.Category] += r.Count
	}
	return out, nil
}

// Ranking lists every owner with records by total descending, ties by name.
func (s *StatsService) Ranking() ([]RankEntry, error) {
	var rows []struct {
		Owner    string
		Category string
		Count    int64
	}
	err := s.DB.Model(&model.Procedure{}).
		Select("owner, category, COUNT(*) AS count").
		Where("owner <> ''").
		Group("owner, category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byOwner := map[string]*RankEntry{}
	for _, r := range rows {
		e, ok := byOwner[r.Owner]
		if !ok {
			e = &RankEntry{Owner: r.Owner, ByCategory: map[string]int64{}}
			for _, c := range logbook.Categories() {
				e.ByCategory[string(c)] = 0
			}
			byOwner[r.Owner] = e
		}
		e.ByCategory[r.Category] += r.Count
		e.Total += r.Count
	}

	out := make([]RankEntry, 0, len(byOwner))
	for _, e := range byOwner {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Owner < out[j].Owner
	})
	return out, nil
}

// Progress compares the owner's counts in year against the annual targets.
func (s *StatsService) Progress(owner string, year int) ([]CategoryProgress, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	err := s.scoped(owner).
		Select("category, COUNT(*) AS count").
		Where("date_sort LIKE ?", fmt.Sprintf("%04d-%%", year)).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}

	out := make([]CategoryProgress, 0, len(logbook.Categories()))
	for _, c := range logbook.Categories() {
		n := counts[string(c)]
		target := logbook.AnnualTarget(c)
		out = append(out, CategoryProgress{
			Category: string(c),
			Count:    n,
			Target:   target,
			Percent:  common.Percent(n, target),
			Display:  common.FormatProgress(n, target),
		})
	}
	return out, nil
}
