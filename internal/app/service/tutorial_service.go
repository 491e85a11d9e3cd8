package service

import (
	"context"
	"regexp"
	"strings"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/common"
	"tecrank_admin/internal/domain/model"
	"tecrank_admin/internal/domain/repository"
	"time"
)

const (
	KindTutorial   = "o tutorial"
	MsgInvalidLink = "Use um link do Google Drive (drive.google.com/file/d/... ou drive.google.com/uc?id=...)."
)

var driveURL = regexp.MustCompile(`^https://drive\.google\.com/(file/d/[A-Za-z0-9_-]+(/(view|preview))?(\?[^\s]*)?|uc\?([^\s]*&)?id=[A-Za-z0-9_-]+(&[^\s]*)?)$`)

// ValidDriveURL reports whether v has the Google Drive file shape tutorials link to.
func ValidDriveURL(v string) bool { return driveURL.MatchString(v) }

type TutorialService struct {
	tutorialRepo repository.TutorialRepository
	screens      *screen.Registry[screen.Collection[model.Tutorial]]
}

func NewTutorialService(tutorialRepo repository.TutorialRepository) *TutorialService {
	s := &TutorialService{tutorialRepo: tutorialRepo}
	s.screens = screen.NewRegistry(func() *screen.Collection[model.Tutorial] {
		return screen.NewCollection(tutorialID, func(ctx context.Context) ([]model.Tutorial, error) {
			return s.tutorialRepo.List(ctx, tokenFrom(ctx))
		})
	})
	return s
}

func tutorialID(t model.Tutorial) int { return t.ID }

var tutorialSpec = screen.Spec[model.Tutorial]{
	Fields: []func(model.Tutorial) string{
		func(t model.Tutorial) string { return t.Titulo },
		func(t model.Tutorial) string { return t.Autor },
	},
	Status: func(t model.Tutorial) string { return t.Icone },
	SortKeys: map[string]func(a, b model.Tutorial) int{
		"titulo": screen.ByString(func(t model.Tutorial) string { return t.Titulo }),
		"autor":  screen.ByString(func(t model.Tutorial) string { return t.Autor }),
		"data":   screen.By(func(t model.Tutorial) string { return t.DataCriacao }),
	},
	DefaultSort: "titulo",
}

type TutorialScreen struct {
	Outcome screen.Outcome              `json:"-"`
	View    screen.View[model.Tutorial] `json:"tutoriais"`
}

// List searches by title or author; q.Status filters by icon tag.
func (s *TutorialService) List(ctx context.Context, q screen.Query) TutorialScreen {
	col := s.screens.For(sessionID(ctx))
	out := screen.Load(ctx, col.Fetcher())
	res := TutorialScreen{Outcome: out}
	if out.Ready() {
		res.View = screen.Project(col.Items(), q, tutorialSpec)
	}
	return res
}

func validateTutorial(in model.TutorialInput) error {
	v := common.NewValidationError()
	if blank(in.Titulo) {
		v.Add("titulo", "Informe o título.")
	}
	if blank(in.Autor) {
		v.Add("autor", "Informe o autor.")
	}
	if !ValidDriveURL(in.URLView) {
		v.Add("url_visualizacao", MsgInvalidLink)
	}
	if !ValidDriveURL(in.URLDownload) {
		v.Add("url_download", MsgInvalidLink)
	}
	return v.OrNil()
}

// Save refetches the list: the backend answers without the stored record.
func (s *TutorialService) Save(ctx context.Context, in model.TutorialInput) screen.Result {
	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Autor = strings.TrimSpace(in.Autor)
	in.URLView = strings.TrimSpace(in.URLView)
	in.URLDownload = strings.TrimSpace(in.URLDownload)
	if err := validateTutorial(in); err != nil {
		return rejected(err)
	}
	col := s.screens.For(sessionID(ctx))
	return col.Apply(ctx, screen.Mutation[model.Tutorial]{
		Policy: screen.PolicyRefetch,
		Do: func(ctx context.Context) (*model.Tutorial, error) {
			return nil, s.tutorialRepo.Save(ctx, tokenFrom(ctx), in)
		},
	})
}

func (s *TutorialService) ConfirmDelete(ctx context.Context, id int) (screen.Confirmation, error) {
	col := s.screens.For(sessionID(ctx))
	if _, ok := find(col.Items(), id, tutorialID); !ok {
		if out := screen.Load(ctx, col.Fetcher()); !out.Ready() {
			return screen.Confirmation{}, out.Err
		}
	}
	t, ok := find(col.Items(), id, tutorialID)
	if !ok {
		return screen.Confirmation{}, common.Errorf("tutorial %d: %w", id, common.ErrNotFound)
	}
	return screen.Confirm(sessionID(ctx), KindTutorial, id, t.Titulo), nil
}

func (s *TutorialService) Delete(ctx context.Context, id int, confirmation string) screen.Result {
	if err := requireConfirmed(ctx, KindTutorial, id, confirmation); err != nil {
		return rejected(err)
	}
	col := s.screens.For(sessionID(ctx))
	return col.Apply(ctx, screen.Mutation[model.Tutorial]{
		Policy:  screen.PolicySplice,
		Removes: id,
		Do: func(ctx context.Context) (*model.Tutorial, error) {
			return nil, s.tutorialRepo.Delete(ctx, tokenFrom(ctx), id)
		},
	})
}

func (s *TutorialService) Items(ctx context.Context) []model.Tutorial {
	return s.screens.For(sessionID(ctx)).Items()
}

func (s *TutorialService) Forget(sid string) { s.screens.Drop(sid) }

// ForgetIdle releases the screen state of sessions unused for d.
func (s *TutorialService) ForgetIdle(d time.Duration) { s.screens.SetIdleTTL(d) }
