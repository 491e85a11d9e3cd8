package repository

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/platform/backend"
)

// apiBase holds what every backend-backed repository shares.
type apiBase struct {
	client *backend.Client
}

func (b apiBase) list(ctx context.Context, token, path string, query url.Values) ([]byte, error) {
	resp, err := b.client.Do(ctx, backend.Request{Method: http.MethodGet, Path: path, Query: query, Token: token})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (b apiBase) post(ctx context.Context, token, path string, body any, form *backend.MultipartForm) ([]byte, error) {
	resp, err := b.client.Do(ctx, backend.Request{Method: http.MethodPost, Path: path, JSON: body, Form: form, Token: token})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// deleteByID is the one delete convention: POST <path>/delete {"id": N}.
func (b apiBase) deleteByID(ctx context.Context, token, path string, id int) error {
	_, err := b.post(ctx, token, path+"/delete", map[string]int{"id": id}, nil)
	return err
}

// decodeSaved unwraps a create/update answer; an empty body yields nil, nil.
func decodeSaved[T any](body []byte) (*T, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	return backend.DecodeOne[T](body)
}

func attachUpload(form *backend.MultipartForm, u *model.Upload, defaultField string) {
	if u == nil || len(u.Data) == 0 {
		return
	}
	field := u.FieldName
	if field == "" {
		field = defaultField
	}
	form.Files = append(form.Files, backend.File{
		FieldName:   field,
		FileName:    u.FileName,
		ContentType: u.ContentType,
		Data:        u.Data,
	})
}

func itoa(n int) string { return strconv.Itoa(n) }
