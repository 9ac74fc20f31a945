// Package aging calcula a urgência de um lead a partir do tempo sem contato,
// do follow-up agendado e da etapa do funil.
package aging

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xavierca1/imob-crm/internal/entity"
)

const day = 24 * time.Hour

type Input struct {
	LastInteractionAt time.Time
	FollowupAt        *time.Time
	Stage             entity.Stage
}

type Result struct {
	DaysDiff   int    `json:"days_diff"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
	Label      string `json:"label"`
	IsOverdue  bool   `json:"is_overdue"`
	Tier       Tier   `json:"tier"`
}

// stalenessSteps mapeia dias sem contato para o percentual de urgência.
// Deve ser não-decrescente.
var stalenessSteps = []struct {
	minDays    int
	percentage int
}{
	{14, 100},
	{7, 80},
	{3, 60},
	{1, 40},
	{0, 20},
}

// Compute é total: qualquer entrada produz um resultado.
func Compute(in Input, now time.Time) Result {
	last := in.LastInteractionAt
	if last.IsZero() {
		last = now
	}
	days := DaysBetween(last, now)

	if in.Stage.IsClosed() {
		return closedResult(days)
	}

	pct := StalenessPercentage(days)
	overdue := false

	if in.FollowupAt != nil && !in.FollowupAt.IsZero() {
		due := *in.FollowupAt
		if now.After(due) {
			overdue = true
			pct = 100
		} else if p := proximity(last, due, now); p > pct {
			pct = p
		}
	}

	tier := TierFor(pct)
	return Result{
		DaysDiff:   days,
		Percentage: pct,
		Color:      tier.Color(),
		Label:      tier.Label(),
		IsOverdue:  overdue,
		Tier:       tier,
	}
}

// ComputeLead lê o instante atual do relógio injetado.
func ComputeLead(lead *entity.Lead, clock clockwork.Clock) Result {
	if lead == nil {
		return Compute(Input{}, clock.Now())
	}
	return Compute(Input{
		LastInteractionAt: lead.AgingAnchor(),
		FollowupAt:        lead.FollowupAt,
		Stage:             lead.Stage,
	}, clock.Now())
}

// DaysBetween conta dias completos entre from e to, nunca negativo.
func DaysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / day)
}

func StalenessPercentage(days int) int {
	for _, step := range stalenessSteps {
		if days >= step.minDays {
			return step.percentage
		}
	}
	return stalenessSteps[len(stalenessSteps)-1].percentage
}

// proximity é a fração já decorrida da janela [start, due], em percentual.
func proximity(start, due, now time.Time) int {
	if start.After(now) {
		start = now
	}
	window := due.Sub(start)
	if window <= 0 {
		return 100
	}
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	pct := int(elapsed * 100 / window)
	if pct > 100 {
		return 100
	}
	return pct
}

func closedResult(days int) Result {
	return Result{
		DaysDiff:   days,
		Percentage: 0,
		Color:      closedColor,
		Label:      closedLabel,
		IsOverdue:  false,
		Tier:       TierClosed,
	}
}
