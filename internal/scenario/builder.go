package scenario

import "GasSentinel/internal/model"

const (
	DefaultOptimisticFactor  = 0.8
	DefaultPessimisticFactor = 1.2
)

// Build maps a rate set onto the five canonical scenarios. Rates are not
// clamped: a scenario may be flat or rising, and the projector reports it
// as unreachable.
func Build(rates model.RateSet, optimisticFactor, pessimisticFactor float64) []model.Scenario {
	return []model.Scenario{
		{Kind: model.ScenarioOptimistic, Factor: optimisticFactor, RatePctPerDay: rates.RateMin * optimisticFactor},
		{Kind: model.ScenarioSmallestWithdrawal, Factor: 1, RatePctPerDay: rates.RateMin},
		{Kind: model.ScenarioAverageWithdrawal, Factor: 1, RatePctPerDay: rates.RateAvg},
		{Kind: model.ScenarioLargestWithdrawal, Factor: 1, RatePctPerDay: rates.RateMax},
		{Kind: model.ScenarioPessimistic, Factor: pessimisticFactor, RatePctPerDay: rates.RateMax * pessimisticFactor},
	}
}
