package cluster

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	c, err := CreateCoordinator(&NodeOptions{CoordinatorHost: "127.0.0.1", NumWorkers: 3, DashboardPort: 9797})
	require.Nil(t, err)
	require.Equal(t, "http://127.0.0.1:9797/status", c.DashboardURL())
	handler := c.dashboardHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st clusterStatus
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.Equal(t, 3, st.Expected)
	require.Empty(t, st.Workers)
	require.Empty(t, st.Datasets)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "skyshade_workers_registered"))
}
