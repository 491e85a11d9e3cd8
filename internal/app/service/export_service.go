package service

import (
	"bytes"
	"context"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"tecrank_admin/internal/export"
)

type ExportService struct {
	evalRepo    repository.EvaluationRepository
	subjectRepo repository.SubjectRepository
}

func NewExportService(evalRepo repository.EvaluationRepository, subjectRepo repository.SubjectRepository) *ExportService {
	return &ExportService{evalRepo: evalRepo, subjectRepo: subjectRepo}
}

type Report struct {
	Filename string
	Rows     int
	Data     []byte
}

// Report builds the CSV of a subject's evaluations on date. The subject list and the
// report rows are fetched in parallel.
func (s *ExportService) Report(ctx context.Context, id int, date string) (*Report, error) {
	v := common.NewValidationError()
	if id <= 0 {
		v.Add("id_assunto", "Selecione o assunto.")
	}
	if !validDate(date) {
		v.Add("data", "Informe a data no formato AAAA-MM-DD.")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	var subjects []model.Subject
	var rows []model.ReportRow
	out := screen.Load(ctx,
		screen.Into(&subjects, func(ctx context.Context) ([]model.Subject, error) {
			return s.subjectRepo.List(ctx, tokenFrom(ctx))
		}),
		screen.Into(&rows, func(ctx context.Context) ([]model.ReportRow, error) {
			return s.evalRepo.Report(ctx, tokenFrom(ctx), id, date)
		}),
	)
	if !out.Ready() {
		return nil, out.Err
	}
	subject, ok := find(subjects, id, subjectID)
	if !ok {
		return nil, common.Errorf("subject %d: %w", id, common.ErrNotFound)
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, rows); err != nil {
		return nil, common.Errorf("writing report: %w", err)
	}
	return &Report{Filename: export.Filename(subject.Nome, date), Rows: len(rows), Data: buf.Bytes()}, nil
}
