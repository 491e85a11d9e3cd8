package model

const (
	FieldTypeBoolean = "boolean"
	FieldTypeText    = "texto"
)

type Subject struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

// ChecklistField belongs to a Subject.
type ChecklistField struct {
	ID        int     `json:"id"`
	SubjectID int     `json:"id_assunto"`
	Label     string  `json:"label"`
	Tipo      string  `json:"tipo"`
	MaxScore  float64 `json:"pontuacao_maxima"`
}

type SubjectInput struct {
	ID   int
	Nome string
	Icon *Upload
}

type ChecklistFieldInput struct {
	ID        int
	SubjectID int
	Label     string
	Tipo      string
	MaxScore  float64
}

type Tutorial struct {
	ID          int    `json:"id"`
	Titulo      string `json:"titulo"`
	Descricao   string `json:"descricao"`
	URLView     string `json:"url_visualizacao"`
	URLDownload string `json:"url_download"`
	Autor       string `json:"autor"`
	DataCriacao string `json:"data_criacao"`
	Icone       string `json:"icone"`
}

type TutorialInput struct {
	ID          int
	Titulo      string
	Descricao   string
	URLView     string
	URLDownload string
	Autor       string
	Icone       string
	Thumbnail   *Upload
}
