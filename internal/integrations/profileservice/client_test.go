package profileservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

func TestClient_GetPractitioner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/practitioners/5":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":5,"name":"Ana","price":150.5,"specialties":["cbt"],"timezone":"America/Sao_Paulo"}`))
		case "/internal/practitioners/6":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())

	profile, err := client.GetPractitioner(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, profile.Price)
	assert.Equal(t, 150.5, *profile.Price)
	assert.Equal(t, []string{"cbt"}, profile.Specialties)
	assert.Empty(t, profile.MissingForBooking(true))

	_, err = client.GetPractitioner(context.Background(), 6)
	assert.ErrorIs(t, err, ErrPractitionerNotFound)

	_, err = client.GetPractitioner(context.Background(), 7)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
