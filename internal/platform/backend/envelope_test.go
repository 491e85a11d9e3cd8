package backend

import (
	"tecrank_admin/internal/common"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sector struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

func TestDecodeList(t *testing.T) {
	items, err := DecodeList[sector]([]byte(`{"registros":[{"id":1,"nome":"Suporte"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []sector{{ID: 1, Nome: "Suporte"}}, items)

	items, err = DecodeList[sector]([]byte(`{"registros":[]}`))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDecodeListRejectsMalformedEnvelopes(t *testing.T) {
	for name, body := range map[string]string{
		"not an array":  `{"registros":"not an array"}`,
		"null":          `{"registros":null}`,
		"missing":       `{"dados":[]}`,
		"bare array":    `[{"id":1}]`,
		"object inside": `{"registros":{"id":1}}`,
		"not json":      `<html>`,
	} {
		t.Run(name, func(t *testing.T) {
			items, err := DecodeList[sector]([]byte(body))
			assert.Nil(t, items)
			assert.Equal(t, common.KindMalformed, common.KindOf(err))
		})
	}
}

func TestDecodeOne(t *testing.T) {
	got, err := DecodeOne[sector]([]byte(`{"registro":{"id":2,"nome":"NOC"}}`))
	require.NoError(t, err)
	assert.Equal(t, sector{ID: 2, Nome: "NOC"}, *got)

	got, err = DecodeOne[sector]([]byte(`{"id":3,"nome":"Estoque"}`))
	require.NoError(t, err)
	assert.Equal(t, sector{ID: 3, Nome: "Estoque"}, *got)

	_, err = DecodeOne[sector]([]byte(`{"registro":[1,2]}`))
	assert.Equal(t, common.KindMalformed, common.KindOf(err))

	_, err = DecodeOne[sector]([]byte(`"text"`))
	assert.Equal(t, common.KindMalformed, common.KindOf(err))
}
