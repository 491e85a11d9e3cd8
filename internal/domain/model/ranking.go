package model

// RankingEntry is display data for the daily and monthly rankings.
type RankingEntry struct {
	Nome      string        `json:"nome"`
	Colocacao int           `json:"colocacao"`
	Media     float64       `json:"media"`
	Setores   []SectorScore `json:"setores"`
}

type SectorScore struct {
	Setor      string  `json:"setor"`
	Media      float64 `json:"media"`
	Avaliacoes int     `json:"avaliacoes"`
}

// SectorTotal is one bar of the per-sector chart.
type SectorTotal struct {
	Setor      string  `json:"setor"`
	Avaliacoes int     `json:"avaliacoes"`
	Soma       float64 `json:"soma"`
}
