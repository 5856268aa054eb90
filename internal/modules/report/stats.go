// README: Aggregate statistics and heatmap points over report windows.
package report

import (
	"context"
	"sort"
	"time"

	"kavach/internal/modules/location"
	"kavach/internal/types"
)

type StatsRange string

const (
	RangeWeek    StatsRange = "week"
	RangeMonth   StatsRange = "month"
	RangeQuarter StatsRange = "quarter"
	RangeYear    StatsRange = "year"
	RangeAll     StatsRange = "all"
)

const (
	statsFetchLimit   = 5000
	heatmapFetchLimit = 1000
	defaultHeatmapRes = 7
)

func rangeStart(r StatsRange, now time.Time) (time.Time, error) {
	switch r {
	case RangeWeek:
		return now.AddDate(0, 0, -7), nil
	case "", RangeMonth:
		return now.AddDate(0, -1, 0), nil
	case RangeQuarter:
		return now.AddDate(0, -3, 0), nil
	case RangeYear:
		return now.AddDate(-1, 0, 0), nil
	case RangeAll:
		return time.Time{}, nil
	}
	return time.Time{}, ErrBadRequest
}

type StatsQuery struct {
	Range     StatsRange
	District  string
	StationID types.ID
}

type Stats struct {
	TotalReports int            `json:"totalReports"`
	Urgent       int            `json:"urgent"`
	Unassigned   int            `json:"unassigned"`
	ByStatus     map[Status]int `json:"byStatus"`
	ByCrimeType  map[string]int `json:"byCrimeType"`
	ByDistrict   map[string]int `json:"byDistrict"`
	ByTimeOfDay  map[string]int `json:"byTimeOfDay"`
}

func (s *Service) Stats(ctx context.Context, q StatsQuery) (*Stats, error) {
	reports, err := s.window(ctx, q.Range, q.District, q.StationID, statsFetchLimit)
	if err != nil {
		return nil, err
	}
	st := computeStats(reports, s.tz)
	return &st, nil
}

func computeStats(reports []Report, tz *time.Location) Stats {
	st := Stats{
		ByStatus:    map[Status]int{},
		ByCrimeType: map[string]int{},
		ByDistrict:  map[string]int{},
		ByTimeOfDay: map[string]int{"morning": 0, "afternoon": 0, "evening": 0, "night": 0},
	}
	for _, s := range []Status{StatusPending, StatusInvestigating, StatusResolved, StatusClosed, StatusRejected} {
		st.ByStatus[s] = 0
	}
	for _, r := range reports {
		st.TotalReports++
		if r.IsUrgent {
			st.Urgent++
		}
		if r.StationID == nil {
			st.Unassigned++
		}
		st.ByStatus[r.Status]++
		st.ByCrimeType[orUnknown(r.CrimeType)]++
		st.ByDistrict[orUnknown(r.District)]++
		if !r.OccurredAt.IsZero() {
			st.ByTimeOfDay[timeOfDay(r.OccurredAt.In(tz).Hour())]++
		}
	}
	return st
}

func timeOfDay(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}

func orUnknown(v string) string {
	if v == "" {
		return location.UnknownDistrict
	}
	return v
}

type HeatmapQuery struct {
	Range    StatsRange
	District string
	// Resolution is the H3 resolution for aggregation; zero uses 7.
	Resolution int
}

type HeatPoint struct {
	Cell   string  `json:"cell"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight int     `json:"weight"`
}

type Heatmap struct {
	Points []HeatPoint `json:"points"`
	Stats  Stats       `json:"stats"`
}

// Heatmap buckets reports into H3 cells; urgent reports weigh 2, others 1.
func (s *Service) Heatmap(ctx context.Context, q HeatmapQuery) (*Heatmap, error) {
	res := q.Resolution
	if res == 0 {
		res = defaultHeatmapRes
	}
	if res < 0 || res > 15 {
		return nil, ErrBadRequest
	}
	reports, err := s.window(ctx, q.Range, q.District, "", heatmapFetchLimit)
	if err != nil {
		return nil, err
	}

	weights := map[location.Cell]int{}
	for _, r := range reports {
		cell, err := location.CellAt(r.Location, res)
		if err != nil {
			continue
		}
		w := 1
		if r.IsUrgent {
			w = 2
		}
		weights[cell] += w
	}

	points := make([]HeatPoint, 0, len(weights))
	for cell, w := range weights {
		center, err := location.CellCenter(cell)
		if err != nil {
			continue
		}
		points = append(points, HeatPoint{Cell: cell.String(), Lat: center.Lat, Lng: center.Lng, Weight: w})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Weight != points[j].Weight {
			return points[i].Weight > points[j].Weight
		}
		return points[i].Cell < points[j].Cell
	})
	return &Heatmap{Points: points, Stats: computeStats(reports, s.tz)}, nil
}

func (s *Service) window(ctx context.Context, r StatsRange, district string, stationID types.ID, limit int) ([]Report, error) {
	since, err := rangeStart(r, s.now())
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.repoCtx(ctx)
	defer cancel()
	return s.repo.List(ctx, ListFilter{Since: since, District: district, StationID: stationID, Limit: limit})
}
