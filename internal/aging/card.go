package aging

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xavierca1/imob-crm/internal/entity"
)

const DefaultRefreshInterval = time.Minute

type FollowupChip struct {
	At        time.Time `json:"at"`
	Text      string    `json:"text"`
	Note      string    `json:"note,omitempty"`
	Highlight bool      `json:"highlight"`
}

// Card é o que o cartão do lead exibe: barra de progresso, selo e o chip do follow-up.
type Card struct {
	LeadID    string        `json:"lead_id"`
	LeadName  string        `json:"lead_name"`
	Stage     entity.Stage  `json:"stage"`
	FillWidth int           `json:"fill_width"`
	Color     string        `json:"color"`
	Label     string        `json:"label"`
	DaysDiff  int           `json:"days_diff"`
	IsOverdue bool          `json:"is_overdue"`
	Tier      Tier          `json:"tier"`
	Followup  *FollowupChip `json:"followup,omitempty"`
}

// Formatter exibe datas no fuso do usuário (dia/mês, 24h).
type Formatter struct {
	Location *time.Location
	Layout   string
}

func NewFormatter(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{Location: loc, Layout: "02/01 15:04"}
}

func (f Formatter) Format(t time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := f.Layout
	if layout == "" {
		layout = "02/01 15:04"
	}
	return t.In(loc).Format(layout)
}

func Render(lead *entity.Lead, res Result, f Formatter) Card {
	card := Card{
		FillWidth: res.Percentage,
		Color:     res.Color,
		Label:     res.Label,
		DaysDiff:  res.DaysDiff,
		IsOverdue: res.IsOverdue,
		Tier:      res.Tier,
	}
	if lead == nil {
		return card
	}
	card.LeadID = lead.ID
	card.LeadName = lead.Name
	card.Stage = lead.Stage
	if lead.HasFollowup() {
		card.Followup = &FollowupChip{
			At:        lead.FollowupAt.UTC(),
			Text:      f.Format(*lead.FollowupAt),
			Note:      lead.FollowupNote,
			Highlight: res.IsOverdue,
		}
	}
	return card
}

// Watch renderiza o cartão imediatamente e depois a cada interval, até ctx
// ser cancelado. source é relido a cada tick, então mudanças no lead aparecem
// no próximo ciclo.
func Watch(ctx context.Context, clock clockwork.Clock, interval time.Duration, f Formatter, source func() *entity.Lead, onRender func(Card)) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	render := func() {
		lead := source()
		onRender(Render(lead, ComputeLead(lead, clock), f))
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	render()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			render()
		}
	}
}
