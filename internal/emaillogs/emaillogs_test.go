package emaillogs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/certdesk/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRepository_NewestFirstPerSeminar(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx,
		models.CertificateEmail{ID: "1", SeminarID: "seminar-1"},
		models.CertificateEmail{ID: "2", SeminarID: "seminar-2"},
	))
	require.NoError(t, repo.Append(ctx, models.CertificateEmail{ID: "3", SeminarID: "seminar-1"}))

	rows, err := repo.ListBySeminar(ctx, "seminar-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[0].ID)
	assert.Equal(t, "1", rows[1].ID)

	rows, err = repo.ListBySeminar(ctx, "seminar-9")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestHandler_ListBySeminar(t *testing.T) {
	repo := NewRepository()
	require.NoError(t, repo.Append(context.Background(), models.CertificateEmail{
		ID: "1", SeminarID: "seminar-1", RecipientEmail: "benito.carlos@gov.ph", Status: models.CertificateEmailSent,
	}))
	r := gin.New()
	r.GET("/seminars/:id/certificates/emails", NewHandler(repo).ListBySeminar)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/seminars/seminar-1/certificates/emails", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data []models.CertificateEmail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "benito.carlos@gov.ph", env.Data[0].RecipientEmail)
}
