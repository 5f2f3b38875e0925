package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KaramelBytes/bikedash/internal/config"
	"github.com/KaramelBytes/bikedash/internal/dataset"
	"github.com/KaramelBytes/bikedash/internal/dataset/datasettest"
	"github.com/KaramelBytes/bikedash/internal/views"
)

func sampleLoader(t *testing.T) views.Loader {
	t.Helper()
	p := datasettest.WriteSample(t, t.TempDir(), "hour.csv")
	return dataset.NewCache(p).Get
}

func newTestServer(t *testing.T, load views.Loader, mutate ...func(*config.Global)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimitRPS = 0
	cfg.ChartWidthIn, cfg.ChartHeightIn = 3, 2
	for _, m := range mutate {
		m(cfg)
	}
	ts := httptest.NewServer(New(cfg, load, zap.NewNop()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestRootRedirectsToAbout(t *testing.T) {
	ts := newTestServer(t, sampleLoader(t))
	resp, _ := get(t, ts, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/views/about", resp.Header.Get("Location"))
}

func TestPages(t *testing.T) {
	ts := newTestServer(t, sampleLoader(t))
	cases := map[string][]string{
		"/views/about":         {"About Dataset", "freemeteo.com", `class="active"`},
		"/views/overview":      {"Data Overview", "Descriptive statistics", "/views/overview/tables/describe.xlsx"},
		"/views/visualization": {"/views/visualization/charts/weekday_hour.png", "/views/visualization/charts/box_cnt.png", "Cloudy"},
		"/views/RFM":           {"RFM &amp; Clustering Analysis", "2011-01-02", "/views/rfm/charts/hour_bucket.png"},
	}
	for path, wants := range cases {
		resp, body := get(t, ts, path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		for _, w := range wants {
			assert.Contains(t, string(body), w, path)
		}
	}
}

func TestUnknownViewIs404(t *testing.T) {
	ts := newTestServer(t, sampleLoader(t))
	resp, _ := get(t, ts, "/views/clusters")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := get(t, ts, "/api/views/clusters")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var e APIError
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "unknown_view", e.ErrorCode)
}

func TestLoadErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: open df_hour_cleaned.csv", dataset.ErrDataUnavailable), http.StatusServiceUnavailable, "data_unavailable"},
		{fmt.Errorf("%w: missing column \"cnt\"", dataset.ErrSchemaMismatch), http.StatusUnprocessableEntity, "schema_mismatch"},
	}
	for _, tc := range cases {
		ts := newTestServer(t, func() (*dataset.Dataset, error) { return nil, tc.err })

		resp, body := get(t, ts, "/api/views/overview")
		assert.Equal(t, tc.status, resp.StatusCode)
		var e APIError
		require.NoError(t, json.Unmarshal(body, &e))
		assert.Equal(t, tc.code, e.ErrorCode)
		assert.NotEmpty(t, e.RequestID)

		resp, _ = get(t, ts, "/views/rfm")
		assert.Equal(t, tc.status, resp.StatusCode)

		resp, _ = get(t, ts, "/views/about")
		assert.Equal(t, http.StatusOK, resp.StatusCode, "about does not need data")

		resp, body = get(t, ts, "/healthz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"status":"degraded"`)
	}
}

func TestAPI(t *testing.T) {
	ts := newTestServer(t, sampleLoader(t))

	resp, body := get(t, ts, "/api/views")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var links []viewLink
	require.NoError(t, json.Unmarshal(body, &links))
	require.Len(t, links, 4)
	assert.Equal(t, "/api/views/visualization", links[2].Href)

	resp, body = get(t, ts, "/api/views/rfm")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Slug     string `json:"slug"`
		Sections []struct {
			Table *struct {
				ID   string     `json:"id"`
				Rows [][]string `json:"rows"`
			} `json:"table"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, "rfm", page.Slug)
	require.NotNil(t, page.Sections[1].Table)
	assert.Equal(t, []string{"2011-01-02", "0", "2", "100"}, page.Sections[1].Table.Rows[1])
}

func TestCharts(t *testing.T) {
	ts := newTestServer(t, sampleLoader(t))
	for _, path := range []string{
		"/views/rfm/charts/hour_bucket.png",
		"/views/visualization/charts/hour_mean.png",
		"/views/visualization/charts/box_hum.png",
		"/views/visualization/charts/weekday_hour.png",
	} {
		resp, body := get(t, ts, path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.True(t, strings.HasPrefix(string(body), "\x89PNG"), path)
	}
	resp, _ := get(t, ts, "/views/rfm/charts/nope.png")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTables(t *testing.T) {
	ts := newTestServer(t, sampleLoader(t))

	resp, body := get(t, ts, "/views/rfm/tables/hour_bucket.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hour_category,records,mean_cnt\nNormal,1,30\nOff-Peak,1,10\nPeak,2,60\n", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="hour_bucket.csv"`)

	resp, body = get(t, ts, "/views/overview/tables/describe.xlsx")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.True(t, strings.HasPrefix(string(body), "PK"))

	resp, body = get(t, ts, "/views/visualization/tables/weather_mean.parquet")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "PAR1"))

	resp, _ = get(t, ts, "/views/rfm/tables/rfm.pdf")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = get(t, ts, "/views/rfm/tables/nope.csv")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, sampleLoader(t))

	resp, body := get(t, ts, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st healthStatus
	require.NoError(t, json.Unmarshal(body, &st))
	require.NotNil(t, st.LoadedAt)
	assert.False(t, st.LoadedAt.IsZero())
	st.LoadedAt = nil
	assert.Equal(t, healthStatus{Status: "ok", DatasetLoaded: true, Rows: 4}, st)

	get(t, ts, "/api/views/overview")
	_, body = get(t, ts, "/metrics")
	assert.Contains(t, string(body), `bikedash_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
	assert.Contains(t, string(body), `bikedash_view_build_duration_seconds_count{outcome="ok",view="overview"} 1`)
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, sampleLoader(t))
	resp, _ := get(t, ts, "/healthz")
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, sampleLoader(t), func(c *config.Global) {
		c.RateLimitRPS = 0.001
		c.RateLimitBurst = 1
	})
	resp, _ := get(t, ts, "/views/about")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := get(t, ts, "/views/about")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(body), "rate_limited")

	resp, _ = get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health is not rate limited")
}
