package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
)

type quotePayload struct {
	DurationMonths int    `json:"durationMonths" validate:"required,gte=1"`
	Email          string `json:"email" validate:"omitempty,email"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"durationMonths":3}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"durationMonths":3,"extra":1}`, wantErr: true},
		{name: "trailing object", body: `{"durationMonths":3}{"durationMonths":4}`, wantErr: true},
		{name: "failed tag", body: `{"durationMonths":0}`, wantErr: true},
		{name: "bad email", body: `{"durationMonths":3,"email":"nope"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest quotePayload
			err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestValidationDetailsUseJSONNames(t *testing.T) {
	err := ValidateStruct(&quotePayload{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "is required", details["durationMonths"])
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10&bad=x&big=500", nil)

	v, err := ParseQueryInt(req, "limit", 25, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 10, v)

	v, err = ParseQueryInt(req, "missing", 25, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 25, v)

	_, err = ParseQueryInt(req, "bad", 25, 1, 100)
	require.Error(t, err)

	_, err = ParseQueryInt(req, "big", 25, 1, 100)
	require.Error(t, err)
}

func TestParsePaginationRejectsGarbageCursor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?cursor=notacursor", nil)
	_, err := ParsePagination(req)
	require.Error(t, err)

	req = httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	params, err := ParsePagination(req)
	require.NoError(t, err)
	require.Equal(t, 5, params.Limit)
	require.Empty(t, params.Cursor)
}

func TestParseUUIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("id", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	id, err := ParseUUIDParam(withParam("5b0c6c9e-0d3a-4a57-9f0e-1a1f6e6c0001"), "id")
	require.NoError(t, err)
	require.Equal(t, "5b0c6c9e-0d3a-4a57-9f0e-1a1f6e6c0001", id.String())

	_, err = ParseUUIDParam(withParam("not-a-uuid"), "id")
	require.Error(t, err)

	_, err = ParseUUIDParam(withParam("00000000-0000-0000-0000-000000000000"), "id")
	require.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "abc", SanitizeString("  abc  ", 0))
	require.Equal(t, "ab", SanitizeString("abc", 2))
	require.Equal(t, "Asha Rao", SanitizeString(" Asha\t\n  Rao\x00 ", 0))
	require.Equal(t, "Zoë", SanitizeString("Zoë Kruger", 3))
	require.Equal(t, "Zoë", SanitizeString("Zoë Kruger", 4))
}
