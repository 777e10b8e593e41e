package analyzer

import (
	"time"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

// UsageAnalytics is the aggregate view of a record set.
type UsageAnalytics struct {
	TotalCost               float64           `json:"totalCost"`
	TotalTokens             int               `json:"totalTokens"`
	TotalRequests           int               `json:"totalRequests"`
	AverageTokensPerRequest float64           `json:"averageTokensPerRequest"`
	AverageCostPerRequest   float64           `json:"averageCostPerRequest"`
	MostUsedModels          []ModelUsage      `json:"mostUsedModels"`
	CostByProvider          []ProviderCost    `json:"costByProvider"`
	UsageOverTime           []DailyUsage      `json:"usageOverTime"`
	TopExpensivePrompts     []ExpensivePrompt `json:"topExpensivePrompts"`
}

// ModelUsage aggregates one (provider, model) pair.
type ModelUsage struct {
	Provider              usage.Provider `json:"provider"`
	Model                 string         `json:"model"`
	RequestCount          int            `json:"requestCount"`
	TotalTokens           int            `json:"totalTokens"`
	TotalCost             float64        `json:"totalCost"`
	AverageCostPerRequest float64        `json:"averageCostPerRequest"`
}

// ProviderCost is one provider's share of the total cost.
type ProviderCost struct {
	Provider     usage.Provider `json:"provider"`
	Cost         float64        `json:"cost"`
	Percentage   float64        `json:"percentage"`
	RequestCount int            `json:"requestCount"`
}

// DailyUsage is one UTC calendar day.
type DailyUsage struct {
	Date     string  `json:"date"`
	Cost     float64 `json:"cost"`
	Tokens   int     `json:"tokens"`
	Requests int     `json:"requests"`
}

// ExpensivePrompt is a record ranked by cost.
type ExpensivePrompt struct {
	RecordID  string         `json:"recordId"`
	Prompt    string         `json:"prompt"`
	Provider  usage.Provider `json:"provider"`
	Model     string         `json:"model"`
	Cost      float64        `json:"cost"`
	Tokens    int            `json:"tokens"`
	UserID    string         `json:"userId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// OpportunityReason names the heuristic that flagged a model.
type OpportunityReason string

const (
	ReasonExpensiveModel  OpportunityReason = "expensive_model"
	ReasonHighAverageCost OpportunityReason = "high_average_cost"
)

// Opportunity is a model whose usage could be made cheaper.
type Opportunity struct {
	Provider              usage.Provider    `json:"provider"`
	Model                 string            `json:"model"`
	Reason                OpportunityReason `json:"reason"`
	RequestCount          int               `json:"requestCount"`
	TotalCost             float64           `json:"totalCost"`
	AverageCostPerRequest float64           `json:"averageCostPerRequest"`
	SavingsPercent        float64           `json:"savingsPercent"`
	PotentialSavings      float64           `json:"potentialSavings"`
	Alternative           string            `json:"alternative,omitempty"`
	Description           string            `json:"description"`
}

// Projection extrapolates spend over a number of days.
type Projection struct {
	Days                  int     `json:"days"`
	AverageCostPerRequest float64 `json:"averageCostPerRequest"`
	DailyRequests         float64 `json:"dailyRequests"`
	DailyCost             float64 `json:"dailyCost"`
	ProjectedCost         float64 `json:"projectedCost"`
}

// Anomaly is a record whose cost deviates from the mean.
type Anomaly struct {
	Record    *usage.UsageRecord `json:"record"`
	Mean      float64            `json:"mean"`
	StdDev    float64            `json:"stdDev"`
	Deviation float64            `json:"deviation"`
}

// EmptyAnalytics returns analytics for an empty record set.
func EmptyAnalytics() UsageAnalytics {
	return UsageAnalytics{
		MostUsedModels:      []ModelUsage{},
		CostByProvider:      []ProviderCost{},
		UsageOverTime:       []DailyUsage{},
		TopExpensivePrompts: []ExpensivePrompt{},
	}
}
