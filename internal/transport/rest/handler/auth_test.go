package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizfund/internal/service"
)

func TestLoginHandler(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService("host", "pass", "test-key"))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid credentials", body: `{"username":"host","password":"pass"}`, wantStatus: http.StatusOK},
		{name: "wrong password", body: `{"username":"host","password":"nope"}`, wantStatus: http.StatusUnauthorized},
		{name: "malformed body", body: `{"username":`, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			h.Login(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp["token"])
				assert.NotEmpty(t, resp["hostId"])
			}
		})
	}
}
