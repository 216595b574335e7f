package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ovation-labs/ovation/internal/validator"
	"github.com/ovation-labs/ovation/models"
	"github.com/ovation-labs/ovation/services/apps"
	"github.com/ovation-labs/ovation/testutils"
	"gorm.io/gorm"
)

func newAppsHandlerTest(t *testing.T) (*AppsHandler, *apps.Service, *echo.Echo, *gorm.DB) {
	db := testutils.SetupTestDB(t, &models.User{}, &models.App{}, &models.APIKey{}, &models.Testimonial{})
	service := apps.NewService(db, nil)

	e := echo.New()
	e.Validator = validator.New()

	return NewAppsHandler(service, nil), service, e, db
}

func TestAppsHandler_SubmitTestimonial(t *testing.T) {
	ctx := context.Background()

	type fixture struct {
		handler *AppsHandler
		service *apps.Service
		e       *echo.Echo
		apiKey  string
		ownerID uuid.UUID
		appID   uuid.UUID
	}

	setup := func(t *testing.T) fixture {
		handler, service, e, db := newAppsHandlerTest(t)

		owner := &models.User{Email: "owner@x.com"}
		require.NoError(t, db.Create(owner).Error)
		app, err := service.CreateApp(ctx, owner.ID, "My SaaS")
		require.NoError(t, err)
		apiKey, err := service.CreateAPIKey(ctx, owner.ID, app.ID)
		require.NoError(t, err)

		return fixture{handler, service, e, apiKey, owner.ID, app.ID}
	}

	submit := func(t *testing.T, e *echo.Echo, handler *AppsHandler, apiKey, body string) (*httptest.ResponseRecorder, map[string]any) {
		req := httptest.NewRequest(http.MethodPost, "/public/testimonials", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if apiKey != "" {
			req.Header.Set(apiKeyHeader, apiKey)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler.SubmitTestimonial(c))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
		return rec, decoded
	}

	t.Run("valid key stores the testimonial against its app", func(t *testing.T) {
		f := setup(t)

		rec, body := submit(t, f.e, f.handler, f.apiKey,
			`{"author":"Jamie","content":"Great product","rating":5}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Testimonial submitted", body["success"])

		list, err := f.service.ListTestimonials(ctx, f.ownerID, f.appID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Jamie", list[0].Author)
	})

	t.Run("missing key", func(t *testing.T) {
		f := setup(t)

		rec, body := submit(t, f.e, f.handler, "",
			`{"author":"Jamie","content":"Great product","rating":5}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Missing API key", body["error"])
	})

	t.Run("unknown key", func(t *testing.T) {
		f := setup(t)

		rec, body := submit(t, f.e, f.handler, "ov_deadbeef",
			`{"author":"Jamie","content":"Great product","rating":5}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid API key", body["error"])
	})

	t.Run("rating outside 1 to 5", func(t *testing.T) {
		f := setup(t)

		rec, body := submit(t, f.e, f.handler, f.apiKey,
			`{"author":"Jamie","content":"Great product","rating":6}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid fields", body["error"])
	})
}
