package service

import (
	"context"
	"strings"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"tecrank_admin/internal/platform/logger"

	"go.uber.org/zap"
)

type EvaluationService struct {
	evalRepo repository.EvaluationRepository
}

func NewEvaluationService(evalRepo repository.EvaluationRepository) *EvaluationService {
	return &EvaluationService{evalRepo: evalRepo}
}

func validateEvaluation(ev model.Evaluation) error {
	v := common.NewValidationError()
	if !ev.Variant.Valid() {
		v.Add("tipo", "Tipo de avaliação inválido.")
	}
	if ev.CollaboratorID <= 0 {
		v.Add("id_colaborador", "Selecione o colaborador avaliado.")
	}
	if blank(ev.Evaluator) {
		v.Add("avaliador", "Informe o avaliador.")
	}
	if !validDate(ev.Date) {
		v.Add("data", "Informe a data no formato AAAA-MM-DD.")
	}
	return v.OrNil()
}

// Submit sends one evaluation. Only the point flags that are set go over the wire.
func (s *EvaluationService) Submit(ctx context.Context, ev model.Evaluation) (*model.EvaluationPayload, error) {
	ev.Evaluator = strings.TrimSpace(ev.Evaluator)
	ev.Note = strings.TrimSpace(ev.Note)
	if err := validateEvaluation(ev); err != nil {
		return nil, err
	}
	payload := ev.Payload()
	if err := s.evalRepo.Submit(ctx, tokenFrom(ctx), ev.Variant, payload); err != nil {
		return nil, common.Errorf("submitting %s evaluation: %w", ev.Variant, err)
	}
	logger.Log.Info("evaluation submitted",
		zap.String("variant", string(ev.Variant)),
		zap.Int("collaborator", ev.CollaboratorID),
		zap.Strings("flags", payload.FlagNames()))
	return &payload, nil
}
