package member

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentials(t *testing.T) {
	c := Credentials{Username: "ada@example.com", Password: "s3cret"}
	assert.True(t, c.Complete())
	assert.False(t, Credentials{Username: "ada@example.com"}.Complete())
	assert.False(t, Credentials{Password: "s3cret"}.Complete())

	for _, out := range []string{c.String(), fmt.Sprintf("%v", c), fmt.Sprintf("%+v", c), fmt.Sprintf("%#v", c)} {
		assert.NotContains(t, out, "s3cret")
		assert.Contains(t, out, "ada@example.com")
	}
}
