// Package export writes the evaluation report as a spreadsheet-friendly CSV file:
// semicolon separated, UTF-8 with BOM, CRLF line endings.
package export

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"tecrank_admin/internal/domain/model"

	"github.com/gosimple/slug"
)

const (
	Delimiter   = ';'
	BOM         = "\ufeff"
	ContentType = "text/csv; charset=utf-8"
)

var ReportHeader = []string{"Colaborador", "Setor", "Avaliador", "Data", "Pontuação", "Observação"}

// Quote returns field as it appears in a line, quoted when it holds a delimiter, a
// comma, a quote or a line break.
func Quote(field string) string {
	if !strings.ContainsAny(field, ";,\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Line joins fields into one record without the line ending.
func Line(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = Quote(f)
	}
	return strings.Join(quoted, string(Delimiter))
}

// Writer writes records after a leading BOM.
type Writer struct {
	w           *bufio.Writer
	wroteHeader bool
	err         error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(fields []string) error {
	if w.err != nil {
		return w.err
	}
	if !w.wroteHeader {
		w.wroteHeader = true
		if _, w.err = w.w.WriteString(BOM); w.err != nil {
			return w.err
		}
	}
	if _, w.err = w.w.WriteString(Line(fields) + "\r\n"); w.err != nil {
		return w.err
	}
	return nil
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

// ReportRecord is the CSV record of one report row.
func ReportRecord(r model.ReportRow) []string {
	score := strings.Replace(strconv.FormatFloat(r.Pontuacao, 'f', -1, 64), ".", ",", 1)
	return []string{r.Colaborador, r.Setor, r.Avaliador, r.Data, score, r.Observacao}
}

// WriteReport writes the header and every row.
func WriteReport(dst io.Writer, rows []model.ReportRow) error {
	w := NewWriter(dst)
	if err := w.Write(ReportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(ReportRecord(r)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Filename is the download name for a subject's report on date.
func Filename(subject, date string) string {
	s := slug.Make(subject)
	if s == "" {
		s = "assunto"
	}
	return "avaliacoes-" + s + "-" + date + ".csv"
}

// Parse reads records back, honouring quoted fields. A leading BOM is ignored. A CRLF
// inside a quoted field comes back as a bare LF, as encoding/csv normalises it.
func Parse(data string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(data, BOM)))
	r.Comma = Delimiter
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// ParseLine reads a single record, which may span lines inside quotes.
func ParseLine(line string) ([]string, error) {
	records, err := Parse(line)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []string{}, nil
	}
	return records[0], nil
}
