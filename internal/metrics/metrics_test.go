package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()

	m.SessionsCreated.Inc()
	m.ActionsApplied.WithLabelValues("ADD_PERSON", "ok").Inc()
	m.ActionsApplied.WithLabelValues("ADD_PERSON", "ok").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActionsApplied.WithLabelValues("ADD_PERSON", "ok")))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "receiptsplit_sessions_created_total 1"))
}
