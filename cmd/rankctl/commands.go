package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/common"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	listTerm   string
	listSector int
	listSort   string

	rankingDate  string
	rankingMonth string

	exportSubject int
	exportDate    string
	exportOutput  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Entra na API e salva a sessão",
	Long: `Entra na API com e-mail e senha.

A senha pode vir de --senha ou da variável RANKCTL_SENHA.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Encerra a sessão salva",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Mostra o usuário da sessão",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var collaboratorsCmd = &cobra.Command{
	Use:     "colaboradores",
	Aliases: []string{"col"},
	Short:   "Lista colaboradores com setor",
	Args:    cobra.NoArgs,
	RunE:    runCollaborators,
}

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Mostra o ranking diário ou mensal",
}

var rankingDailyCmd = &cobra.Command{
	Use:   "diario",
	Short: "Ranking de uma data (padrão: última data escolhida, senão hoje)",
	Args:  cobra.NoArgs,
	RunE:  runRankingDaily,
}

var rankingMonthlyCmd = &cobra.Command{
	Use:   "mensal",
	Short: "Ranking de um mês (padrão: mês atual)",
	Args:  cobra.NoArgs,
	RunE:  runRankingMonthly,
}

var exportCmd = &cobra.Command{
	Use:   "exportar",
	Short: "Exporta as avaliações de um assunto em uma data para CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var themeCmd = &cobra.Command{
	Use:       "tema [escuro|claro]",
	Short:     "Alterna ou define o tema do painel",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"escuro", "claro"},
	RunE:      runTheme,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "E-mail de acesso")
	loginCmd.Flags().StringVar(&loginPassword, "senha", "", "Senha de acesso")
	loginCmd.MarkFlagRequired("email")

	collaboratorsCmd.Flags().StringVar(&listTerm, "busca", "", "Filtra pelo nome")
	collaboratorsCmd.Flags().IntVar(&listSector, "setor", 0, "Filtra pelo id do setor")
	collaboratorsCmd.Flags().StringVar(&listSort, "ordem", "", "Ordena por nome ou setor")

	rankingDailyCmd.Flags().StringVar(&rankingDate, "data", "", "Data AAAA-MM-DD")
	rankingMonthlyCmd.Flags().StringVar(&rankingMonth, "mes", "", "Mês AAAA-MM")
	rankingCmd.PersistentFlags().StringVar(&listTerm, "busca", "", "Filtra pelo nome")
	rankingCmd.AddCommand(rankingDailyCmd, rankingMonthlyCmd)

	exportCmd.Flags().IntVar(&exportSubject, "assunto", 0, "Id do assunto")
	exportCmd.Flags().StringVar(&exportDate, "data", "", "Data AAAA-MM-DD")
	exportCmd.Flags().StringVar(&exportOutput, "saida", "", "Arquivo ou diretório de saída (padrão: nome sugerido no diretório atual)")
	exportCmd.MarkFlagRequired("assunto")
	exportCmd.MarkFlagRequired("data")
}

// failure turns a service error into the message the terminal shows.
func failure(err error) error {
	if common.IsAuth(err) {
		return errors.New("sessão expirada; execute rankctl login")
	}
	return errors.New(common.UserMessage(err))
}

func loadFailure(out screen.Outcome) error {
	if out.AuthExpired {
		return failure(common.NewAuthError(401))
	}
	return errors.New(out.Message)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	password := loginPassword
	if password == "" {
		password = os.Getenv("RANKCTL_SENHA")
	}
	// A session still active in the file is replaced by the new one.
	if prev, _, err := app.current(ctx); err == nil {
		ctx = prev
	}
	res, err := app.auth.Login(ctx, service.LoginRequest{Email: loginEmail, Password: password})
	if err != nil {
		return failure(err)
	}
	if err := app.store.Set(ctx, pointerSID, map[string]string{currentKey: res.Session.ID()}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Bem-vindo, %s.\n", res.User.UserName)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ctx, sess, err := app.current(ctx)
	if errors.Is(err, errNotLoggedIn) {
		fmt.Fprintln(cmd.OutOrStdout(), "Nenhuma sessão ativa.")
		return app.store.Clear(ctx, pointerSID)
	}
	if err != nil {
		return err
	}
	if err := app.auth.Logout(ctx, sess); err != nil {
		return err
	}
	if err := app.store.Clear(ctx, pointerSID); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Sessão encerrada.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ctx, sess, err := app.current(ctx)
	if err != nil {
		return err
	}
	user, err := sess.User(ctx)
	if err != nil {
		return err
	}
	prefs, err := sess.Preferences(ctx)
	if err != nil {
		return err
	}
	theme := "claro"
	if prefs.DarkMode {
		theme = "escuro"
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Nome\t%s\n", user.UserName)
	fmt.Fprintf(w, "E-mail\t%s\n", user.Email)
	fmt.Fprintf(w, "Papel\t%s\n", user.Role)
	fmt.Fprintf(w, "Tema\t%s\n", theme)
	return w.Flush()
}

func runCollaborators(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ctx, _, err := app.current(ctx)
	if err != nil {
		return err
	}
	q := screen.Query{Term: listTerm, SortKey: listSort}
	if listSector > 0 {
		q.Status = strconv.Itoa(listSector)
	}
	res := app.collaborators.List(ctx, q)
	if !res.Outcome.Ready() {
		return loadFailure(res.Outcome)
	}
	out := cmd.OutOrStdout()
	if res.View.Empty != "" {
		fmt.Fprintln(out, res.View.Empty)
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOME\tSETOR")
	for _, c := range res.View.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Nome, c.Setor)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d de %d colaboradores\n", len(res.View.Items), res.View.Total)
	return nil
}

func printRanking(cmd *cobra.Command, res service.RankingScreen) error {
	if !res.Outcome.Ready() {
		return loadFailure(res.Outcome)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ranking %s\n", res.Period)
	if res.View.Empty != "" {
		fmt.Fprintln(out, res.View.Empty)
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNOME\tMÉDIA")
	for _, e := range res.View.Items {
		fmt.Fprintf(w, "%d\t%s\t%.2f\n", e.Colocacao, e.Nome, e.Media)
	}
	return w.Flush()
}

func runRankingDaily(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ctx, _, err := app.current(ctx)
	if err != nil {
		return err
	}
	return printRanking(cmd, app.ranking.Daily(ctx, rankingDate, screen.Query{Term: listTerm}))
}

func runRankingMonthly(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ctx, _, err := app.current(ctx)
	if err != nil {
		return err
	}
	return printRanking(cmd, app.ranking.Monthly(ctx, rankingMonth, screen.Query{Term: listTerm}))
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ctx, _, err := app.current(ctx)
	if err != nil {
		return err
	}
	report, err := app.exports.Report(ctx, exportSubject, exportDate)
	if err != nil {
		return failure(err)
	}

	path := report.Filename
	if exportOutput != "" {
		path = exportOutput
		if info, err := os.Stat(exportOutput); err == nil && info.IsDir() {
			path = filepath.Join(exportOutput, report.Filename)
		}
	}
	if err := os.WriteFile(path, report.Data, 0o644); err != nil {
		return fmt.Errorf("gravando %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d avaliações exportadas para %s\n", report.Rows, path)
	return nil
}

func runTheme(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ctx, sess, err := app.current(ctx)
	if err != nil {
		return err
	}
	var dark bool
	if len(args) == 0 {
		if dark, err = sess.ToggleDarkMode(ctx); err != nil {
			return err
		}
	} else {
		switch args[0] {
		case "escuro":
			dark = true
		case "claro":
		default:
			return fmt.Errorf("tema desconhecido %q: use escuro ou claro", args[0])
		}
		if err := sess.SetDarkMode(ctx, dark); err != nil {
			return err
		}
	}
	if dark {
		fmt.Fprintln(cmd.OutOrStdout(), "Tema: escuro")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Tema: claro")
	}
	return nil
}
