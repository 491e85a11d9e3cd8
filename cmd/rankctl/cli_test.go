package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type api struct {
	expired atomic.Bool
}

func (a *api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/login" && (a.expired.Load() || r.Header.Get("Authorization") != "Bearer cli-tok") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch r.Method + " " + r.URL.Path {
	case "POST /login":
		w.Write([]byte(`{"access_token":"cli-tok","email":"bia@example.com","nome":"Bia","role":"admin"}`))
	case "GET /colaboradores":
		w.Write([]byte(`{"registros":[{"id":1,"nome":"Ana Souza","id_setor":7},{"id":2,"nome":"Carlos","id_setor":8}]}`))
	case "GET /setores":
		w.Write([]byte(`{"registros":[{"id":7,"nome":"Produção"},{"id":8,"nome":"Suporte"}]}`))
	case "GET /ranking/diario":
		if r.URL.Query().Get("data") != "2024-05-02" {
			w.Write([]byte(`{"registros":[]}`))
			return
		}
		w.Write([]byte(`{"registros":[{"nome":"Ana Souza","colocacao":1,"media":9.25,"setores":[]}]}`))
	case "GET /assuntos":
		w.Write([]byte(`{"registros":[{"id":3,"nome":"Instalação"}]}`))
	case "GET /avaliacoes/relatorio":
		w.Write([]byte(`{"registros":[{"colaborador":"Ana Souza","setor":"Produção","avaliador":"Bia","data":"2024-05-02","pontuacao":7}]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type cli struct {
	t       *testing.T
	backend string
	file    string
}

func newCLI(t *testing.T) (*cli, *api) {
	t.Helper()
	fake := &api{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	t.Setenv("RANKCTL_SENHA", "")
	return &cli{t: t, backend: srv.URL, file: filepath.Join(t.TempDir(), "session.yaml")}, fake
}

// run executes one command line against a fresh flag state.
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	loginEmail, loginPassword = "", ""
	listTerm, listSector, listSort = "", 0, ""
	rankingDate, rankingMonth = "", ""
	exportSubject, exportDate, exportOutput = 0, "", ""
	backendURL, sessionFile = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--backend", c.backend, "--session-file", c.file}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	c, _ := newCLI(t)

	out, err := c.run("login", "--email", "bia@example.com", "--senha", "segredo1")
	require.NoError(t, err)
	assert.Contains(t, out, "Bem-vindo, Bia.")

	raw, err := os.ReadFile(c.file)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "cli-tok")

	out, err = c.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "bia@example.com")
	assert.Contains(t, out, "admin")

	out, err = c.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Sessão encerrada.")

	_, err = c.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginAgainReplacesSession(t *testing.T) {
	c, _ := newCLI(t)
	for i := 0; i < 3; i++ {
		_, err := c.run("login", "--email", "bia@example.com", "--senha", "segredo1")
		require.NoError(t, err)
	}

	raw, err := os.ReadFile(c.file)
	require.NoError(t, err)
	stored := map[string]map[string]string{}
	require.NoError(t, yaml.Unmarshal(raw, &stored))
	assert.Len(t, stored, 2, "the pointer entry and the current session only")
	current := stored[pointerSID][currentKey]
	assert.Contains(t, stored, current)

	out, err := c.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "bia@example.com")
}

func TestLoginRejectsWeakPasswordLocally(t *testing.T) {
	c, _ := newCLI(t)
	_, err := c.run("login", "--email", "bia@example.com", "--senha", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A senha deve ter ao menos 6 caracteres")
}

func TestCollaboratorsAndRanking(t *testing.T) {
	c, _ := newCLI(t)
	_, err := c.run("login", "--email", "bia@example.com", "--senha", "segredo1")
	require.NoError(t, err)

	out, err := c.run("colaboradores", "--busca", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Souza")
	assert.Contains(t, out, "Produção")
	assert.NotContains(t, out, "Carlos")
	assert.Contains(t, out, "1 de 2 colaboradores")

	out, err = c.run("ranking", "diario", "--data", "2024-05-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Ranking 2024-05-02")
	assert.Contains(t, out, "9.25")

	out, err = c.run("ranking", "diario", "--data", "2024-05-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhum registro cadastrado.")
}

func TestExportWritesCSV(t *testing.T) {
	c, _ := newCLI(t)
	_, err := c.run("login", "--email", "bia@example.com", "--senha", "segredo1")
	require.NoError(t, err)

	dir := t.TempDir()
	out, err := c.run("exportar", "--assunto", "3", "--data", "2024-05-02", "--saida", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 avaliações exportadas")

	data, err := os.ReadFile(filepath.Join(dir, "avaliacoes-instalacao-2024-05-02.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\ufeff"))
	assert.Contains(t, string(data), "Ana Souza;Produção;Bia;2024-05-02;7")
}

func TestExpiredSessionAsksForLogin(t *testing.T) {
	c, fake := newCLI(t)
	_, err := c.run("login", "--email", "bia@example.com", "--senha", "segredo1")
	require.NoError(t, err)

	fake.expired.Store(true)
	_, err = c.run("colaboradores")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessão expirada")

	fake.expired.Store(false)
	_, err = c.run("colaboradores")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestThemeToggle(t *testing.T) {
	c, _ := newCLI(t)
	_, err := c.run("login", "--email", "bia@example.com", "--senha", "segredo1")
	require.NoError(t, err)

	out, err := c.run("tema", "escuro")
	require.NoError(t, err)
	assert.Contains(t, out, "Tema: escuro")

	out, err = c.run("tema")
	require.NoError(t, err)
	assert.Contains(t, out, "Tema: claro")

	_, err = c.run("tema", "azul")
	assert.Error(t, err)
}
