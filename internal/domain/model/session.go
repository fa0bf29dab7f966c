package model

// Credential identifies the logged-in user to the backend.
type Credential struct {
	Token    string
	Username string
}

// Valid reports whether the credential carries a token.
func (c Credential) Valid() bool { return c.Token != "" }
