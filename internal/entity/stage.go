package entity

import "strings"

type Stage string

const (
	StageNovo          Stage = "novo"
	StageEmEspera      Stage = "em espera"
	StageEmAtendimento Stage = "em atendimento"
	StageDocumentacao  Stage = "documentação"
	StageComprou       Stage = "comprou"
	StageRemovido      Stage = "removido"
)

var Stages = []Stage{
	StageNovo,
	StageEmEspera,
	StageEmAtendimento,
	StageDocumentacao,
	StageComprou,
	StageRemovido,
}

// IsClosed indica etapas terminais, onde o aging congela.
func (s Stage) IsClosed() bool {
	return s == StageComprou || s == StageRemovido
}

func (s Stage) IsValid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStage
	}
	return s, nil
}
