package model

const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleViewer     = "viewer"
)

// Identity is what the session store holds for a logged-in user.
type Identity struct {
	Token    string `json:"-"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	SectorID int    `json:"sectorId"`
	IDIxc    string `json:"idIxc,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the backend's answer to POST /login.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	Email       string     `json:"email"`
	Nome        string     `json:"nome"`
	IDIxc       FlexString `json:"id_ixc"`
	Role        string     `json:"role,omitempty"`
	SectorID    int        `json:"id_setor,omitempty"`
}

// Preferences are the display settings kept next to the identity.
type Preferences struct {
	DarkMode     bool   `json:"darkMode"`
	SelectedDate string `json:"selectedDate,omitempty"`
}
