package models

// Editor is the single account allowed to change grids.
type Editor struct {
	Email        string
	PasswordHash []byte
}

type TokenMeta struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

const RoleEditor = "editor"
