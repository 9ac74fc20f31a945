package aging

type Tier string

const (
	TierClosed    Tier = "closed"
	TierRecent    Tier = "recent"
	TierAttention Tier = "attention"
	TierUrgent    Tier = "urgent"
	TierCritical  Tier = "critical"
)

const (
	closedColor = "#9ca3af"
	closedLabel = "Encerrado"
)

// tiers em ordem crescente de alarme; maxPct é inclusivo.
var tiers = []struct {
	tier   Tier
	maxPct int
	color  string
	label  string
}{
	{TierRecent, 20, "#22c55e", "Recente"},
	{TierAttention, 40, "#eab308", "Atenção"},
	{TierUrgent, 80, "#f97316", "Urgente"},
	{TierCritical, 100, "#ef4444", "Crítico"},
}

func TierFor(pct int) Tier {
	for _, t := range tiers {
		if pct <= t.maxPct {
			return t.tier
		}
	}
	return TierCritical
}

// Rank ordena as faixas por gravidade. TierClosed vale -1.
func (t Tier) Rank() int {
	for i, def := range tiers {
		if def.tier == t {
			return i
		}
	}
	return -1
}

func (t Tier) Color() string {
	for _, def := range tiers {
		if def.tier == t {
			return def.color
		}
	}
	return closedColor
}

func (t Tier) Label() string {
	for _, def := range tiers {
		if def.tier == t {
			return def.label
		}
	}
	return closedLabel
}
