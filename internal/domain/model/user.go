package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Role string

const (
	RolePO     Role = "PO"
	RoleHunter Role = "HUNTER"
)

// ParseRole accepts both the marketplace's ROLE_PO / ROLE_HUNTER spelling and
// the bare names. Anything else is the anonymous role "".
func ParseRole(s string) Role {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_") {
	case "PO":
		return RolePO
	case "HUNTER":
		return RoleHunter
	}
	return ""
}

func (r Role) Label() string {
	switch r {
	case RolePO:
		return "Product Owner"
	case RoleHunter:
		return "Hunter"
	}
	return ""
}

// ID is a marketplace identifier. The API has used both UUID strings and
// numeric ids; both decode into the same string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// LoginResult is the body of POST /users/login.
type LoginResult struct {
	Token string `json:"token"`
	ID    ID     `json:"id"`
	Role  string `json:"role"`
}

// HunterSignup is the body of POST /hunters.
type HunterSignup struct {
	CPF      string `json:"cpf"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}
