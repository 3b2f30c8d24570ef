package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"GasSentinel/internal/model"
)

// Language selects the wording of the rendered summary.
type Language string

const (
	English Language = "en"
	German  Language = "de"
)

// SummaryOptions controls RenderSummary.
type SummaryOptions struct {
	Language Language
	Footer   []string
}

type wording struct {
	title       string
	level       string
	source      string
	heading     string
	notReached  string
	rateUnit    string
	daysToMin   string
	optimistic  string
	smallest    string
	average     string
	largest     string
	pessimistic string
	less, more  string
}

var wordings = map[Language]wording{
	English: {
		title:       "Projection German gas storage of %s",
		level:       "Fill level %s%% on %s (minimum %s%%)",
		source:      "Source data loaded from: %s",
		heading:     "Scenarios - minimum reached on:",
		notReached:  "not reached",
		rateUnit:    "%/day",
		daysToMin:   "days to minimum",
		optimistic:  "Optimistic (%s%% %s withdrawal)",
		smallest:    "Smallest withdrawal",
		average:     "Average withdrawal",
		largest:     "Largest withdrawal",
		pessimistic: "Pessimistic (%s%% %s withdrawal)",
		less:        "less",
		more:        "more",
	},
	German: {
		title:       "Projektion #Gasspeicher DE vom %s",
		level:       "Fuellstand %s%% am %s (Minimum %s%%)",
		source:      "Datenquelle wurde geladen aus: %s",
		heading:     "Szenarien - Minimum wird erreicht am:",
		notReached:  "nicht erreicht",
		rateUnit:    "%/Tag",
		daysToMin:   "Tage bis Minimum",
		optimistic:  "Optimistisch (%s%% %s Entnahme)",
		smallest:    "Kleinste Entnahme",
		average:     "Durchschnittliche Entnahme",
		largest:     "Groesste Entnahme",
		pessimistic: "Pessimistisch (%s%% %s Entnahme)",
		less:        "weniger",
		more:        "mehr",
	},
}

// Label returns the human readable name of a scenario, including the
// adjustment for the scaled scenarios.
func Label(s model.Scenario, lang Language) string {
	w := wordingFor(lang)
	switch s.Kind {
	case model.ScenarioOptimistic:
		return fmt.Sprintf(w.optimistic, adjustment(s.Factor), direction(w, s.Factor))
	case model.ScenarioSmallestWithdrawal:
		return w.smallest
	case model.ScenarioAverageWithdrawal:
		return w.average
	case model.ScenarioLargestWithdrawal:
		return w.largest
	case model.ScenarioPessimistic:
		return fmt.Sprintf(w.pessimistic, adjustment(s.Factor), direction(w, s.Factor))
	default:
		return s.Kind.Key()
	}
}

// RenderSummary renders the fixed-format text block for a run. The output
// depends only on the run and the options, so rendering the same run twice
// yields the same bytes.
func RenderSummary(run *model.ProjectionRun, opts SummaryOptions) string {
	w := wordingFor(opts.Language)
	var b strings.Builder

	fmt.Fprintf(&b, w.title+"\n", BerlinDate(run.RunAt))
	fmt.Fprintf(&b, w.level+"\n", fixed(run.CurrentPct, 2), run.AsOf.Format(model.DateLayout), fixed(run.MinimumPct, 2))
	if run.Source != "" {
		fmt.Fprintf(&b, w.source+"\n", run.Source)
	}
	b.WriteString("\n")
	b.WriteString(w.heading + "\n")

	for _, p := range run.Projections {
		target := w.notReached
		days := "-"
		if d, ok := p.Outcome.Target(); ok {
			target = d.Format(model.DateLayout)
		}
		if n, ok := p.Outcome.DaysToMin(); ok {
			days = fmt.Sprintf("%d", n)
		}
		fmt.Fprintf(&b, "- %s: %s | Rate %s%s | %s %s\n",
			Label(p.Scenario, opts.Language), target, fixed(p.Scenario.RatePctPerDay, 3), w.rateUnit, w.daysToMin, days)
	}

	if len(opts.Footer) > 0 {
		b.WriteString("\n")
		for _, line := range opts.Footer {
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func wordingFor(lang Language) wording {
	if w, ok := wordings[lang]; ok {
		return w
	}
	return wordings[English]
}

// fixed formats v with a '.' separator regardless of the process locale.
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func adjustment(factor float64) string {
	return decimal.NewFromFloat(math.Abs(1-factor) * 100).Round(1).String()
}

func direction(w wording, factor float64) string {
	if factor > 1 {
		return w.more
	}
	return w.less
}
