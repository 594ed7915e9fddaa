package runs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	h.limiter = newPollLimiter(time.Nanosecond, nil)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))
	return router, h
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Run-Token", token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	parsed := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("response not JSON: %v: %s", err, rec.Body.String())
		}
	}
	return rec, parsed
}

func TestCreateRunEndpoint(t *testing.T) {
	svc := newTestService(okFetcher())
	router, _ := newTestRouter(svc)

	rec, body := doJSON(t, router, http.MethodPost, "/api/runs", `{"url": "acme-hvac.com", "scope": "local"}`, "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if body["runId"] == "" || body["accessToken"] == "" {
		t.Errorf("body = %v", body)
	}
	if body["status"] != StatusPending {
		t.Errorf("status = %v", body["status"])
	}
}

func TestCreateRunEndpointValidation(t *testing.T) {
	svc := newTestService(okFetcher())
	router, _ := newTestRouter(svc)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/runs", `{}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/runs", `{"url": "nonsense"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad url status = %d", rec.Code)
	}
}

func TestGetRunRequiresToken(t *testing.T) {
	svc := newTestService(okFetcher())
	router, _ := newTestRouter(svc)

	_, created := doJSON(t, router, http.MethodPost, "/api/runs", `{"url": "acme-hvac.com"}`, "")
	runID := created["runId"].(string)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/runs/"+runID, "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing token status = %d", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodGet, "/api/runs/"+runID, "", "wrong-token")
	if rec.Code != http.StatusNotFound {
		t.Errorf("wrong token status = %d", rec.Code)
	}
}

func TestGetRunQueryToken(t *testing.T) {
	svc := newTestService(okFetcher())
	router, _ := newTestRouter(svc)

	_, created := doJSON(t, router, http.MethodPost, "/api/runs", `{"url": "acme-hvac.com"}`, "")
	runID := created["runId"].(string)
	token := created["accessToken"].(string)

	rec, body := doJSON(t, router, http.MethodGet, "/api/runs/"+runID+"?token="+token, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["id"] != runID {
		t.Errorf("body = %v", body)
	}
}

func TestSelectAndPollToCompletion(t *testing.T) {
	svc := newTestService(okFetcher())
	router, _ := newTestRouter(svc)

	_, created := doJSON(t, router, http.MethodPost, "/api/runs", `{"url": "acme-hvac.com"}`, "")
	runID := created["runId"].(string)
	token := created["accessToken"].(string)

	run := waitForStatus(t, svc, runID, token, StatusSelecting)

	rec, body := doJSON(t, router, http.MethodGet, "/api/runs/"+runID+"/candidates", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("candidates status = %d", rec.Code)
	}
	if cands, ok := body["candidates"].([]any); !ok || len(cands) == 0 {
		t.Fatalf("candidates body = %v", body)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/runs/"+runID+"/select",
		`{"domain": "`+run.Candidates[0].Domain+`"}`, token)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("select status = %d body = %s", rec.Code, rec.Body.String())
	}

	waitForStatus(t, svc, runID, token, StatusComplete)
	rec, body = doJSON(t, router, http.MethodGet, "/api/runs/"+runID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != StatusComplete {
		t.Errorf("status = %v", body["status"])
	}
	if _, ok := body["result"]; !ok {
		t.Error("complete response missing result")
	}
}

func TestSelectUnofferedCompetitorEndpoint(t *testing.T) {
	svc := newTestService(okFetcher())
	router, _ := newTestRouter(svc)

	_, created := doJSON(t, router, http.MethodPost, "/api/runs", `{"url": "acme-hvac.com"}`, "")
	runID := created["runId"].(string)
	token := created["accessToken"].(string)
	waitForStatus(t, svc, runID, token, StatusSelecting)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/runs/"+runID+"/select", `{"domain": "evil-rival.com"}`, token)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPollRateLimit(t *testing.T) {
	svc := newTestService(okFetcher())
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))

	_, created := doJSON(t, router, http.MethodPost, "/api/runs", `{"url": "acme-hvac.com"}`, "")
	runID := created["runId"].(string)
	token := created["accessToken"].(string)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/runs/"+runID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("first poll status = %d", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodGet, "/api/runs/"+runID, "", token)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second poll status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestListRunsByLeadRef(t *testing.T) {
	svc := newTestService(okFetcher())
	router, _ := newTestRouter(svc)

	_, created := doJSON(t, router, http.MethodPost, "/api/runs", `{"url": "acme-hvac.com", "leadRef": "lead-9"}`, "")
	runID := created["runId"].(string)
	token := created["accessToken"].(string)
	waitForStatus(t, svc, runID, token, StatusSelecting)

	rec, body := doJSON(t, router, http.MethodGet, "/api/leads/lead-9/runs", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	listed, ok := body["runs"].([]any)
	if !ok || len(listed) != 1 {
		t.Fatalf("runs = %v", body["runs"])
	}
}
