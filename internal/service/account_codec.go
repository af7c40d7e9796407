package service

import (
	"encoding/json"

	"github.com/tipbase-server/internal/models"
	"github.com/tipbase-server/internal/types"
)

// decodeAccountBook parses the stored auth blob. Three shapes are accepted:
// the current account book, the legacy single-user object, and garbage.
// Legacy blobs are converted (legacy=true so the caller can rewrite them);
// garbage decodes as an empty book, never an error.
func decodeAccountBook(raw string, defaultTokens int) (book *models.AccountBook, legacy bool) {
	book = models.NewAccountBook()

	var current models.AccountBook
	if err := json.Unmarshal([]byte(raw), &current); err == nil && current.Accounts != nil {
		return &current, false
	}

	var single legacyUser
	if err := json.Unmarshal([]byte(raw), &single); err != nil || single.Email == "" {
		return book, false
	}

	user := &models.User{
		Email: single.Email,
		Name:  single.Name,
		Role:  single.Role,
	}
	if single.Tokens != nil {
		user.Tokens = *single.Tokens
	} else {
		user.Tokens = defaultTokens
	}

	book.Put(types.NormalizeEmail(single.Email), user)
	return book, true
}

// legacyUser is the pre-account-book single-slot shape. Tokens is a pointer
// so records written before the token economy can be told apart from a zero
// balance and given the default.
type legacyUser struct {
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Tokens *int       `json:"tokens"`
	Role   types.Role `json:"role"`
}
