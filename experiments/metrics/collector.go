package metrics

import (
	"sync/atomic"
	"time"
)

// SearchMetric describes one forward search.
type SearchMetric struct {
	Goroutines   int
	Duration     time.Duration
	Episodes     int
	Cutoff       int
	FullPlayouts int
}

// TurnMetric describes one AI turn.
type TurnMetric struct {
	Turn      int
	Player    string
	Actions   int
	Rejected  int
	Immediate int // decisions per tier
	Heuristic int
	Strategic int
	Forced    bool // ended because no tier decided
	Duration  time.Duration
	Search    SearchMetric // summed over the turn's searches
}

// Add accumulates a search into the turn.
func (t *TurnMetric) Add(s SearchMetric) {
	t.Search.Goroutines = max(t.Search.Goroutines, s.Goroutines)
	t.Search.Cutoff = max(t.Search.Cutoff, s.Cutoff)
	t.Search.Duration += s.Duration
	t.Search.Episodes += s.Episodes
	t.Search.FullPlayouts += s.FullPlayouts
}

type GameMetric struct {
	StartingPlayer string
	Winner         string // empty when the turn limit was reached
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	Turns          int
	TotalActions   int
}

// Collector counts search work. Methods other than Start and Complete may be
// called from several goroutines.
type Collector interface {
	Start(goroutines, cutoff int)
	AddFullPlayout()
	AddEpisode()
	Complete() SearchMetric
}

type collector struct {
	goroutines   int
	cutoff       int
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(goroutines, cutoff int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.cutoff = cutoff
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:   m.goroutines,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Cutoff:       m.cutoff,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, cutoff int) {}
func (m *dummyCollector) AddFullPlayout()              {}
func (m *dummyCollector) AddEpisode()                  {}
func (m *dummyCollector) Complete() SearchMetric       { return SearchMetric{} }
