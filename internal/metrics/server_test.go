package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreExported(t *testing.T) {
	before := testutil.ToFloat64(RecognitionCalls.WithLabelValues("text"))
	RecognitionCalls.WithLabelValues("text").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RecognitionCalls.WithLabelValues("text")))

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "subextract_recognition_calls_total")
}
