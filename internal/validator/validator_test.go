package validator

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

func TestRequestValidator(t *testing.T) {
	v := New()

	t.Run("valid payload passes", func(t *testing.T) {
		err := v.Validate(samplePayload{Email: "a@x.com", Password: "secret123"})
		assert.NoError(t, err)
	})

	t.Run("invalid payload maps to a 400 with a stable message", func(t *testing.T) {
		err := v.Validate(samplePayload{Email: "nope", Password: "short"})
		require.Error(t, err)

		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "Invalid fields", httpErr.Message)
	})
}
