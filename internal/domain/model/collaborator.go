package model

type Collaborator struct {
	ID       int    `json:"id"`
	Nome     string `json:"nome"`
	SectorID int    `json:"id_setor"`
	Setor    string `json:"setor,omitempty"`
	Imagem   string `json:"imagem,omitempty"`
}

type Sector struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

// CollaboratorInput is the create/update form; ID zero means create.
type CollaboratorInput struct {
	ID       int
	Nome     string
	SectorID int
	Image    *Upload
}

// Upload is a file received from the browser and forwarded to the backend.
type Upload struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

// HistoryEntry is one past evaluation of a collaborator.
type HistoryEntry struct {
	ID         int     `json:"id"`
	Data       string  `json:"data"`
	Tipo       string  `json:"tipo"`
	Avaliador  string  `json:"avaliador"`
	Pontuacao  float64 `json:"pontuacao"`
	Observacao string  `json:"observacao,omitempty"`
}

// CollaboratorDetail is the detail screen: the record and, fetched after it, its history.
type CollaboratorDetail struct {
	Collaborator Collaborator   `json:"colaborador"`
	History      []HistoryEntry `json:"historico"`
}
