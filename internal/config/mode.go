package config

import (
	"fmt"
	"strings"
)

// Mode define se o serviço fala com a infraestrutura real ou com dados de demonstração.
// É decidido uma vez na inicialização e injetado onde for necessário.
type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeLive, "":
		return ModeLive, nil
	case ModeDemo:
		return ModeDemo, nil
	default:
		return "", fmt.Errorf("APP_MODE inválido: %q (use live ou demo)", raw)
	}
}

func (m Mode) IsDemo() bool { return m == ModeDemo }
