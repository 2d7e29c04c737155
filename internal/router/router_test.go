package router_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-log/internal/apidocs"
	"pet-health-log/internal/metrics"
	"pet-health-log/internal/router"
)

func newServer(t *testing.T, opts router.Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(opts))
	t.Cleanup(ts.Close)
	return ts
}

func doReq(t *testing.T, baseURL, method, path string, headers map[string]string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out
}

func createID(t *testing.T, baseURL, path string, body any) string {
	t.Helper()
	st, raw := doReq(t, baseURL, http.MethodPost, path, nil, body)
	require.Equal(t, http.StatusCreated, st, "POST %s body=%s", path, raw)

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.ID)
	return out.ID
}

type dueFeed struct {
	Birthdays []struct {
		PetID string    `json:"pet_id"`
		At    time.Time `json:"at"`
		Turns int       `json:"turns"`
	} `json:"birthdays"`
	Vaccines []struct {
		ID    string `json:"id"`
		PetID string `json:"pet_id"`
	} `json:"vaccines"`
	Glycemia []struct {
		SessionID string `json:"session_id"`
		Idx       int    `json:"idx"`
	} `json:"glycemia"`
	Treatments []struct {
		ID string `json:"id"`
	} `json:"treatments"`
	Errors map[string]string `json:"errors"`
}

func getAlerts(t *testing.T, baseURL, query string) dueFeed {
	t.Helper()
	st, raw := doReq(t, baseURL, http.MethodGet, "/alerts/due?"+query, nil, nil)
	require.Equal(t, http.StatusOK, st, "body=%s", raw)

	var feed dueFeed
	require.NoError(t, json.Unmarshal(raw, &feed))
	return feed
}

func TestHTTP_EndToEnd_AlertsFeed(t *testing.T) {
	ts := newServer(t, router.Options{})
	now := time.Now().UTC()

	// 1) mascota nacida el 2020-01-01
	petID := createID(t, ts.URL, "/pets", map[string]any{
		"name":      "Luna",
		"species":   "dog",
		"birthDate": "2020-01-01",
	})

	// 2) cumpleaños dentro de 10 años de horizonte
	{
		feed := getAlerts(t, ts.URL, "days=3650&petId="+petID)
		require.Len(t, feed.Birthdays, 1)
		b := feed.Birthdays[0]
		assert.Equal(t, petID, b.PetID)
		assert.Equal(t, b.At.Year()-2020, b.Turns)
		assert.False(t, b.At.Before(now))
	}

	// 3) vacuna con próxima dosis en dos días
	typeID := createID(t, ts.URL, "/vaccines/types", map[string]any{
		"name":       "V10",
		"species":    "dog",
		"totalDoses": 3,
	})
	appID := createID(t, ts.URL, "/vaccines/applications", map[string]any{
		"petId":          petID,
		"vaccineTypeId":  typeID,
		"doseNumber":     1,
		"administeredAt": now.AddDate(0, 0, -28).Format("2006-01-02"),
		"nextDoseAt":     now.Add(48 * time.Hour).Format(time.RFC3339),
	})
	{
		feed := getAlerts(t, ts.URL, "days=7&kinds=vaccines")
		require.Len(t, feed.Vaccines, 1)
		assert.Equal(t, appID, feed.Vaccines[0].ID)
		assert.Empty(t, feed.Birthdays)
	}

	// 4) curva de hoy con el primer control en 8 minutos
	points := make([]map[string]any, 0, 5)
	for i := 0; i < 5; i++ {
		at := now.Add(8*time.Minute + time.Duration(i)*2*time.Hour)
		points = append(points, map[string]any{"expectedAt": at.Format(time.RFC3339)})
	}
	sessionID := createID(t, ts.URL, "/glycemia/sessions", map[string]any{
		"petId":             petID,
		"sessionDate":       now.Format("2006-01-02"),
		"points":            points,
		"warnMinutesBefore": 10,
	})
	{
		feed := getAlerts(t, ts.URL, "minutes=15&kinds=glycemia")
		require.Len(t, feed.Glycemia, 1)
		assert.Equal(t, sessionID, feed.Glycemia[0].SessionID)
		assert.Equal(t, 1, feed.Glycemia[0].Idx)
	}

	// 5) la sesión quedó con exactamente cinco puntos
	{
		st, raw := doReq(t, ts.URL, http.MethodGet, "/glycemia/sessions/"+sessionID, nil, nil)
		require.Equal(t, http.StatusOK, st)
		var detail struct {
			Points []struct {
				Idx    int    `json:"idx"`
				Status string `json:"status"`
			} `json:"points"`
		}
		require.NoError(t, json.Unmarshal(raw, &detail))
		require.Len(t, detail.Points, 5)
		assert.Equal(t, "PENDING", detail.Points[0].Status)
	}

	// 6) leer dos veces devuelve lo mismo
	{
		_, first := doReq(t, ts.URL, http.MethodGet, "/alerts/due?days=3650&minutes=15", nil, nil)
		_, second := doReq(t, ts.URL, http.MethodGet, "/alerts/due?days=3650&minutes=15", nil, nil)
		assert.JSONEq(t, string(first), string(second))
	}

	// 7) borrar la mascota limpia todo su historial
	{
		st, _ := doReq(t, ts.URL, http.MethodDelete, "/pets/"+petID, nil, nil)
		require.Equal(t, http.StatusOK, st)

		feed := getAlerts(t, ts.URL, "days=3650&minutes=15")
		assert.Empty(t, feed.Birthdays)
		assert.Empty(t, feed.Vaccines)
		assert.Empty(t, feed.Glycemia)

		st, _ = doReq(t, ts.URL, http.MethodGet, "/glycemia/sessions/"+sessionID, nil, nil)
		assert.Equal(t, http.StatusNotFound, st)
	}
}

func TestHTTP_AlertsRejectsBadQuery(t *testing.T) {
	ts := newServer(t, router.Options{})

	for _, q := range []string{"days=0", "minutes=0", "days=3651", "minutes=abc", "kinds=birthdays,nope", "petId=not-a-uuid", "offsetMinutes=900"} {
		st, raw := doReq(t, ts.URL, http.MethodGet, "/alerts/due?"+q, nil, nil)
		assert.Equal(t, http.StatusBadRequest, st, "query %s body=%s", q, raw)
	}
}

func TestHTTP_APIKeyGuardsWrites(t *testing.T) {
	ts := newServer(t, router.Options{APIKey: "s3cret"})

	st, raw := doReq(t, ts.URL, http.MethodPost, "/pets", nil, map[string]any{"name": "Milo", "species": "cat"})
	assert.Equal(t, http.StatusUnauthorized, st)
	assert.JSONEq(t, `{"error":"unauthorized"}`, string(raw))

	st, _ = doReq(t, ts.URL, http.MethodPost, "/pets", map[string]string{"x-api-key": "s3cret"}, map[string]any{"name": "Milo", "species": "cat"})
	assert.Equal(t, http.StatusCreated, st)

	st, _ = doReq(t, ts.URL, http.MethodGet, "/pets", nil, nil)
	assert.Equal(t, http.StatusOK, st)
}

func TestHTTP_NotFoundAndDuplicates(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, raw := doReq(t, ts.URL, http.MethodGet, "/pets/00000000-0000-0000-0000-000000000000", nil, nil)
	assert.Equal(t, http.StatusNotFound, st)
	assert.Contains(t, string(raw), "not_found")

	st, _ = doReq(t, ts.URL, http.MethodPost, "/vaccines/applications", nil, map[string]any{
		"petId":          "00000000-0000-0000-0000-000000000000",
		"vaccineTypeId":  "00000000-0000-0000-0000-000000000001",
		"doseNumber":     1,
		"administeredAt": "2025-05-01",
	})
	assert.Equal(t, http.StatusNotFound, st)

	body := map[string]any{"name": "V10", "species": "dog", "totalDoses": 2, "brand": "Zoetis"}
	createID(t, ts.URL, "/vaccines/types", body)
	st, raw = doReq(t, ts.URL, http.MethodPost, "/vaccines/types", nil, map[string]any{"name": "v10", "species": "dog", "totalDoses": 2, "brand": "ZOETIS"})
	assert.Equal(t, http.StatusConflict, st)
	assert.Contains(t, string(raw), "duplicate_name_brand")

	petID := createID(t, ts.URL, "/pets", map[string]any{"name": "Milo", "species": "cat"})
	createID(t, ts.URL, "/pets/"+petID+"/weights", map[string]any{"measuredAt": "2025-05-01", "weightKg": 4.2})
	st, _ = doReq(t, ts.URL, http.MethodPost, "/pets/"+petID+"/weights", nil, map[string]any{"measuredAt": "2025-05-01", "weightKg": 4.3})
	assert.Equal(t, http.StatusConflict, st)
}

func TestHTTP_PlatformEndpoints(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, raw := doReq(t, ts.URL, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, st)
	var health map[string]any
	require.NoError(t, json.Unmarshal(raw, &health))
	assert.Equal(t, true, health["ok"])

	st, raw = doReq(t, ts.URL, http.MethodGet, "/openapi.json", nil, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(raw), "/alerts/due")

	st, raw = doReq(t, ts.URL, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(raw), "api_requests_total")

	st, _ = doReq(t, ts.URL, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, st)
}

func TestHTTP_RateLimit(t *testing.T) {
	ts := newServer(t, router.Options{RateLimit: router.RateLimit{Requests: 2, Window: time.Minute}})

	for i := 0; i < 2; i++ {
		st, _ := doReq(t, ts.URL, http.MethodGet, "/health", nil, nil)
		require.Equal(t, http.StatusOK, st)
	}
	before := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("/pets/{petID}"))
	st, raw := doReq(t, ts.URL, http.MethodGet, "/pets/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, st)
	assert.JSONEq(t, `{"error":"rate_limited"}`, string(raw))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("/pets/{petID}")))
}

func TestHTTP_ServesInjectedDocs(t *testing.T) {
	doc, err := apidocs.New()
	require.NoError(t, err)
	ts := newServer(t, router.Options{Docs: doc})

	st, raw := doReq(t, ts.URL, http.MethodGet, "/openapi.json", nil, nil)
	require.Equal(t, http.StatusOK, st)
	assert.JSONEq(t, doc.ReadDoc(), string(raw))
}
