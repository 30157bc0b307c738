package dashboard

import (
	"sort"

	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

const (
	topMovers  = 5
	topSectors = 6
)

type SectorCount struct {
	Sector string `json:"sector"`
	Count  int    `json:"count"`
}

type Metrics struct {
	Gainers []models.Quote `json:"gainers"`
	Losers  []models.Quote `json:"losers"`
	Sectors []SectorCount  `json:"sectors"`
}

// Metrics summarises the whole quote set, ignoring the table view.
func (d *Dashboard) Metrics() Metrics {
	return ComputeMetrics(d.Quotes())
}

// ComputeMetrics picks the biggest movers on each side of zero and the most common sectors.
func ComputeMetrics(quotes []models.Quote) Metrics {
	m := Metrics{
		Gainers: []models.Quote{},
		Losers:  []models.Quote{},
		Sectors: []SectorCount{},
	}
	for _, q := range quotes {
		if q.ChangePercent >= 0 {
			m.Gainers = append(m.Gainers, q)
		} else {
			m.Losers = append(m.Losers, q)
		}
	}
	sort.SliceStable(m.Gainers, func(i, j int) bool { return m.Gainers[i].ChangePercent > m.Gainers[j].ChangePercent })
	sort.SliceStable(m.Losers, func(i, j int) bool { return m.Losers[i].ChangePercent < m.Losers[j].ChangePercent })
	if len(m.Gainers) > topMovers {
		m.Gainers = m.Gainers[:topMovers]
	}
	if len(m.Losers) > topMovers {
		m.Losers = m.Losers[:topMovers]
	}

	counts := make(map[string]int)
	for _, q := range quotes {
		counts[q.Sector]++
	}
	for sector, n := range counts {
		m.Sectors = append(m.Sectors, SectorCount{Sector: sector, Count: n})
	}
	sort.Slice(m.Sectors, func(i, j int) bool {
		if m.Sectors[i].Count != m.Sectors[j].Count {
			return m.Sectors[i].Count > m.Sectors[j].Count
		}
		return m.Sectors[i].Sector < m.Sectors[j].Sector
	})
	if len(m.Sectors) > topSectors {
		m.Sectors = m.Sectors[:topSectors]
	}
	return m
}
