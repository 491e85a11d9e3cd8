package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 8 << 20

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// bind decodes a JSON body into dst, or hands the parsed form to fromForm.
func bind(r *http.Request, dst any, fromForm func(get func(string) string)) error {
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			v := common.NewValidationError()
			v.Add("corpo", "Requisição inválida.")
			return v
		}
		return nil
	}
	if err := parseForm(r); err != nil {
		return err
	}
	fromForm(r.FormValue)
	return nil
}

func parseForm(r *http.Request) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxUploadBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		v := common.NewValidationError()
		v.Add("corpo", "Formulário inválido.")
		return v
	}
	return nil
}

// readUpload returns the file sent as field, or nil when none was sent.
func readUpload(r *http.Request, field string) (*model.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, common.Errorf("reading upload %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, common.Errorf("reading upload %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return &model.Upload{FieldName: field, FileName: hdr.Filename, ContentType: ct, Data: data}, nil
}

func atoi(v string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return n
}

// pathID reads a positive integer URL parameter.
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	return id, err == nil && id > 0
}

func badID(w http.ResponseWriter) {
	common.RespondWithError(w, http.StatusBadRequest, "Identificador inválido.")
}

// confirmationOf reads the confirmation token of a delete, from a form or a JSON body.
func confirmationOf(r *http.Request) (string, error) {
	var body struct {
		Confirmacao string `json:"confirmacao"`
	}
	err := bind(r, &body, func(get func(string) string) { body.Confirmacao = get("confirmacao") })
	return body.Confirmacao, err
}

// confirmPage is the delete prompt. Action is where the confirming form posts.
type confirmPage struct {
	Confirmation screen.Confirmation `json:"confirmacao"`
	Action       string              `json:"acao"`
	Back         string              `json:"voltar"`
}

// confirmDelete shows the prompt in front of a delete. action receives the confirmed post.
func (rd *Renderer) confirmDelete(w http.ResponseWriter, r *http.Request, c screen.Confirmation, err error, action, back string) {
	if err != nil {
		rd.fail(w, r, err)
		return
	}
	rd.respond(w, r, "confirm", "Confirmar exclusão", confirmPage{Confirmation: c, Action: action, Back: back})
}

// resultOf turns a plain call error into a mutation result.
func resultOf(err error) screen.Result {
	if err == nil {
		return screen.Result{State: screen.StateReady}
	}
	return screen.Result{State: screen.StateSubmitError, Notice: common.UserMessage(err), AuthExpired: common.IsAuth(err), Err: err}
}
