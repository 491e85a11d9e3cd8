package model

import (
	"sort"
	"strings"
)

type EvaluationVariant string

const (
	EvaluationGeneral EvaluationVariant = "geral"
	EvaluationN2      EvaluationVariant = "n2"
	EvaluationStock   EvaluationVariant = "estoque"
	EvaluationHR      EvaluationVariant = "rh"
)

func (v EvaluationVariant) Valid() bool {
	switch v {
	case EvaluationGeneral, EvaluationN2, EvaluationStock, EvaluationHR:
		return true
	}
	return false
}

// Evaluation is the form a screen collects before submission.
type Evaluation struct {
	Variant        EvaluationVariant
	CollaboratorID int
	Evaluator      string
	Date           string
	Note           string
	Flags          map[string]bool
}

// EvaluationPayload is what goes over the wire.
type EvaluationPayload struct {
	CollaboratorID int             `json:"id_colaborador"`
	Evaluator      string          `json:"avaliador"`
	Date           string          `json:"data"`
	Note           string          `json:"observacao"`
	Points         map[string]bool `json:"pontos"`
}

// DeltaFlags keeps only set "*_add" / "*_sub" flags.
func (e Evaluation) DeltaFlags() map[string]bool {
	out := make(map[string]bool)
	for name, set := range e.Flags {
		if set && (strings.HasSuffix(name, "_add") || strings.HasSuffix(name, "_sub")) {
			out[name] = true
		}
	}
	return out
}

func (e Evaluation) Payload() EvaluationPayload {
	return EvaluationPayload{
		CollaboratorID: e.CollaboratorID,
		Evaluator:      e.Evaluator,
		Date:           e.Date,
		Note:           e.Note,
		Points:         e.DeltaFlags(),
	}
}

// FlagNames lists submitted flags in a stable order.
func (p EvaluationPayload) FlagNames() []string {
	names := make([]string, 0, len(p.Points))
	for n := range p.Points {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReportRow is one line of the evaluation report exported to CSV.
type ReportRow struct {
	Colaborador string  `json:"colaborador"`
	Setor       string  `json:"setor"`
	Avaliador   string  `json:"avaliador"`
	Data        string  `json:"data"`
	Pontuacao   float64 `json:"pontuacao"`
	Observacao  string  `json:"observacao"`
}
