package simd

import (
	"time"

	"github.com/GoSim-25-26J-441/contagion-core/internal/centrality"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
	"github.com/GoSim-25-26J-441/contagion-core/pkg/utils"
)

// The converters below only emit string, bool, int, float64, []any and
// map[string]any so the same values serve both JSON and structpb.

func convertRunToJSON(rec RunRecord) map[string]any {
	out := map[string]any{
		"id":           rec.ID,
		"status":       string(rec.Status),
		"seed":         rec.Seed,
		"round":        rec.Round,
		"total_rounds": rec.TotalRounds,
		"created_at":   formatTime(rec.Timing.CreatedAt),
	}
	if rec.Error != "" {
		out["error"] = rec.Error
	}
	if rec.Stage != "" {
		out["stage"] = string(rec.Stage)
	}
	if !rec.Timing.StartedAt.IsZero() {
		out["started_at"] = formatTime(rec.Timing.StartedAt)
	}
	if !rec.Timing.EndedAt.IsZero() {
		out["ended_at"] = formatTime(rec.Timing.EndedAt)
		out["duration_ms"] = rec.Timing.Duration().Milliseconds()
	}
	if rec.Result != nil {
		out["nodes"] = rec.Result.Nodes
		out["edges"] = rec.Result.Edges
		out["summary"] = convertSummaryToJSON(rec.Result.Summary)
		out["centrality"] = rec.Result.HasCentrality()
	}
	return out
}

func convertSummaryToJSON(s models.EpidemicSummary) map[string]any {
	return map[string]any{
		"peak_infected": s.PeakInfected,
		"peak_round":    s.PeakRound,
		"attack_rate":   s.AttackRate,
		"final":         convertCountsToJSON(s.Final),
	}
}

func convertCountsToJSON(c models.RoundCounts) map[string]any {
	return map[string]any{
		"round":       c.Round,
		"susceptible": c.Susceptible,
		"infected":    c.Infected,
		"recovered":   c.Recovered,
	}
}

func convertCurveToJSON(curve []models.RoundCounts) []any {
	out := make([]any, 0, len(curve))
	for _, c := range curve {
		out = append(out, convertCountsToJSON(c))
	}
	return out
}

func convertNodeToJSON(report NodeReport) map[string]any {
	out := map[string]any{
		"id":    report.Person.ID,
		"state": report.Person.State.String(),
	}
	if report.Scored {
		out["degree"] = report.Degree
		out["betweenness"] = report.Betweenness
	}
	return out
}

func convertRankedToJSON(ranked []centrality.Ranked) []any {
	out := make([]any, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, map[string]any{
			"node":  r.Node,
			"score": r.Score,
		})
	}
	return out
}

func convertStatsToJSON(s utils.Stats) map[string]any {
	return map[string]any{
		"count":  s.Count,
		"mean":   s.Mean,
		"stddev": s.StdDev,
		"min":    s.Min,
		"median": s.Median,
		"max":    s.Max,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
