package member

import "fmt"

// Credentials are the site login for the member account. They are read once
// at startup and never mutated.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// String keeps the password out of logs and error messages.
func (c Credentials) String() string {
	return fmt.Sprintf("member(%s)", c.Username)
}

func (c Credentials) GoString() string { return c.String() }
