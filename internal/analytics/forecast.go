package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pocket-crm/analytics-api/internal/domain"
)

// StageWeights is a versioned table of win probabilities per open pipeline stage
type StageWeights struct {
	Version string
	Weights map[domain.LeadStatus]decimal.Decimal
}

// StageWeightsV1 are the win probabilities used since the first CRM release
var StageWeightsV1 = StageWeights{
	Version: "v1",
	Weights: map[domain.LeadStatus]decimal.Decimal{
		domain.LeadStatusNouveau:     decimal.RequireFromString("0.10"),
		domain.LeadStatusContacte:    decimal.RequireFromString("0.20"),
		domain.LeadStatusQualifie:    decimal.RequireFromString("0.40"),
		domain.LeadStatusProposition: decimal.RequireFromString("0.60"),
		domain.LeadStatusNegociation: decimal.RequireFromString("0.80"),
	},
}

var stageWeightTables = map[string]StageWeights{
	StageWeightsV1.Version: StageWeightsV1,
}

// LookupStageWeights returns a registered weight table by version
func LookupStageWeights(version string) (StageWeights, error) {
	w, ok := stageWeightTables[version]
	if !ok {
		return StageWeights{}, &ConfigurationError{Field: "stage_weights.version", Value: version, Reason: "unknown version"}
	}
	return w, w.Validate()
}

// Validate checks that every open stage has a weight in (0, 1]
func (w StageWeights) Validate() error {
	one := decimal.NewFromInt(1)
	for _, stage := range domain.OpenLeadStatuses {
		weight, ok := w.Weights[stage]
		if !ok {
			return &ConfigurationError{Field: "stage_weight", Value: string(stage), Reason: "missing entry in table " + w.Version}
		}
		if !weight.IsPositive() || weight.GreaterThan(one) {
			return &ConfigurationError{Field: "stage_weight", Value: string(stage), Reason: fmt.Sprintf("weight %s outside (0, 1]", weight)}
		}
	}
	return nil
}

// StageForecast is the forecast contribution of one pipeline stage
type StageForecast struct {
	Stage       domain.LeadStatus
	Count       int
	TotalAmount decimal.Decimal
	Weight      decimal.Decimal
	Weighted    decimal.Decimal
}

// ForecastResult is the probability-weighted value of the open pipeline
type ForecastResult struct {
	Version string
	Stages  []StageForecast
	Total   decimal.Decimal
}

// Forecast weights open leads by the win probability of their stage.
// Closed leads and off-canon statuses do not contribute.
func Forecast(leads []domain.Lead, weights StageWeights) (*ForecastResult, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	order := make([]string, len(domain.OpenLeadStatuses))
	for i, s := range domain.OpenLeadStatuses {
		order[i] = string(s)
	}
	breakdown := GroupByStatus(leads, order, LeadStatusKey, LeadValue)

	result := &ForecastResult{
		Version: weights.Version,
		Stages:  make([]StageForecast, 0, len(breakdown.Rows)),
		Total:   decimal.Zero,
	}
	for _, row := range breakdown.Rows {
		stage := domain.LeadStatus(row.Key)
		weight := weights.Weights[stage]
		weighted := row.Sum.Mul(weight)
		result.Stages = append(result.Stages, StageForecast{
			Stage:       stage,
			Count:       row.Count,
			TotalAmount: row.Sum,
			Weight:      weight,
			Weighted:    weighted,
		})
		result.Total = result.Total.Add(weighted)
	}
	return result, nil
}
