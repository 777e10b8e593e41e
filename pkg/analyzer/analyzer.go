package analyzer

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// MinAnomalyRecords is the smallest working set Anomalies inspects.
const MinAnomalyRecords = 10

// Analyzer computes analytics over a mutable working set of records. It is
// safe for concurrent use.
type Analyzer struct {
	config config.AnalyzerConfig
	logger *logging.Logger

	mu      sync.RWMutex
	records []*usage.UsageRecord
}

// New creates an analyzer. Zero config fields take their defaults.
func New(cfg config.AnalyzerConfig, logger *logging.Logger) *Analyzer {
	if cfg.ExpensiveModels == nil {
		cfg.ExpensiveModels = config.DefaultExpensiveModels()
	}
	if cfg.ExpensiveSavingsPercent == 0 {
		cfg.ExpensiveSavingsPercent = config.DefaultExpensiveSavingsPercent
	}
	if cfg.HighAverageCost == 0 {
		cfg.HighAverageCost = config.DefaultHighAverageCost
	}
	if cfg.HighAverageSavingsPercent == 0 {
		cfg.HighAverageSavingsPercent = config.DefaultHighAverageSavingsPercent
	}
	if cfg.AnomalyThreshold == 0 {
		cfg.AnomalyThreshold = config.DefaultAnomalyThreshold
	}
	if cfg.TopExpensivePrompts == 0 {
		cfg.TopExpensivePrompts = DefaultTopExpensivePrompts
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Analyzer{config: cfg, logger: logger.Named("analyzer")}
}

// Add appends records to the working set.
func (a *Analyzer) Add(records ...*usage.UsageRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, records...)
}

// SetRecords replaces the working set.
func (a *Analyzer) SetRecords(records []*usage.UsageRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append([]*usage.UsageRecord(nil), records...)
}

// Clear empties the working set.
func (a *Analyzer) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = nil
}

// Records returns a copy of the working set slice.
func (a *Analyzer) Records() []*usage.UsageRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*usage.UsageRecord(nil), a.records...)
}

// AnalyzeUsage analyzes the working set restricted to [start, end] and
// userID. Nil bounds and an empty userID do not filter.
func (a *Analyzer) AnalyzeUsage(start, end *time.Time, userID string) UsageAnalytics {
	filter := &usage.Filter{StartDate: start, EndDate: end, UserID: userID}
	records := filter.Apply(a.Records())
	return Analyze(records, a.config.TopExpensivePrompts)
}

// CostProjection extrapolates the working set over days. The daily volume
// is the configured assumed_daily_requests when positive, otherwise the
// observed records per day across the working set's time span (at least
// one day).
func (a *Analyzer) CostProjection(days int) Projection {
	records := a.Records()
	p := Projection{Days: days}
	if len(records) == 0 {
		return p
	}

	var total float64
	first, last := records[0].Timestamp, records[0].Timestamp
	for _, r := range records {
		total += r.EstimatedCost
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	p.AverageCostPerRequest = total / float64(len(records))

	if a.config.AssumedDailyRequests > 0 {
		p.DailyRequests = a.config.AssumedDailyRequests
	} else {
		spanDays := math.Max(last.Sub(first).Hours()/24, 1)
		p.DailyRequests = float64(len(records)) / spanDays
	}

	p.DailyCost = p.AverageCostPerRequest * p.DailyRequests
	p.ProjectedCost = p.DailyCost * float64(days)
	return p
}

// OptimizationOpportunities flags models in the working set.
func (a *Analyzer) OptimizationOpportunities() []Opportunity {
	return a.OpportunitiesFor(a.Records())
}

// OpportunitiesFor flags models in records. A model matching the expensive
// list gets the expensive savings percentage; otherwise a model whose
// average cost per request exceeds the high-average threshold gets the
// high-average percentage. Savings are a fixed share of the model's total
// cost.
func (a *Analyzer) OpportunitiesFor(records []*usage.UsageRecord) []Opportunity {
	out := make([]Opportunity, 0)
	for _, m := range ModelBreakdown(records) {
		if em, ok := a.matchExpensive(m.Provider, m.Model); ok {
			pct := a.config.ExpensiveSavingsPercent
			out = append(out, Opportunity{
				Provider:              m.Provider,
				Model:                 m.Model,
				Reason:                ReasonExpensiveModel,
				RequestCount:          m.RequestCount,
				TotalCost:             m.TotalCost,
				AverageCostPerRequest: m.AverageCostPerRequest,
				SavingsPercent:        pct,
				PotentialSavings:      m.TotalCost * pct / 100,
				Alternative:           em.Alternative,
				Description: fmt.Sprintf("%s is a premium model used for %d requests; consider %s for routine work",
					m.Model, m.RequestCount, alternativeOr(em.Alternative)),
			})
			continue
		}

		if m.AverageCostPerRequest > a.config.HighAverageCost {
			pct := a.config.HighAverageSavingsPercent
			out = append(out, Opportunity{
				Provider:              m.Provider,
				Model:                 m.Model,
				Reason:                ReasonHighAverageCost,
				RequestCount:          m.RequestCount,
				TotalCost:             m.TotalCost,
				AverageCostPerRequest: m.AverageCostPerRequest,
				SavingsPercent:        pct,
				PotentialSavings:      m.TotalCost * pct / 100,
				Description: fmt.Sprintf("%s averages $%.4f per request; shorten prompts or cap completion length",
					m.Model, m.AverageCostPerRequest),
			})
		}
	}
	return out
}

func (a *Analyzer) matchExpensive(provider usage.Provider, model string) (config.ExpensiveModelConfig, bool) {
	lower := strings.ToLower(model)
	for _, em := range a.config.ExpensiveModels {
		if string(provider) != em.Provider {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(em.Model)) {
			continue
		}
		if em.Exclude != "" && strings.Contains(lower, strings.ToLower(em.Exclude)) {
			continue
		}
		return em, true
	}
	return config.ExpensiveModelConfig{}, false
}

func alternativeOr(alt string) string {
	if alt == "" {
		return "a smaller model"
	}
	return alt
}

// Anomalies returns records whose cost differs from the working-set mean
// by more than threshold population standard deviations. A non-positive
// threshold uses the configured default. Fewer than MinAnomalyRecords
// records, or zero deviation, yields no anomalies.
func (a *Analyzer) Anomalies(threshold float64) []Anomaly {
	if threshold <= 0 {
		threshold = a.config.AnomalyThreshold
	}
	records := a.Records()
	out := make([]Anomaly, 0)
	if len(records) < MinAnomalyRecords {
		return out
	}

	var sum float64
	for _, r := range records {
		sum += r.EstimatedCost
	}
	mean := sum / float64(len(records))

	var sq float64
	for _, r := range records {
		d := r.EstimatedCost - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(records)))
	if stddev == 0 {
		return out
	}

	for _, r := range records {
		dev := math.Abs(r.EstimatedCost-mean) / stddev
		if dev > threshold {
			out = append(out, Anomaly{Record: r, Mean: mean, StdDev: stddev, Deviation: dev})
		}
	}

	if len(out) > 0 {
		a.logger.Debug("cost anomalies found", "count", len(out), "mean", mean, "stddev", stddev)
	}
	return out
}
