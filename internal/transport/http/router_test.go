package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"tryout-service/internal/app"
	"tryout-service/internal/domain"
	"tryout-service/internal/infra/memory"
	"tryout-service/internal/metrics"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	log := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	store := memory.NewTryOutStore()
	tryouts := app.NewTryOutService(store, log, m)
	analytics := app.NewAnalyticsService(store, store, app.NewFeed(), log)
	attempts := app.NewAttemptService(store, store, analytics, log, m)
	catalog := app.NewCatalogService(memory.NewCatalogStore(), log)

	router := NewRouter(
		RouterConfig{JWTSecret: secret},
		NewTryOutHandler(tryouts, attempts, analytics, log),
		NewCatalogHandler(catalog, log),
		NewWSHandler(analytics, log),
		reg, m, log,
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func sampleDraft() domain.TryOutDraft {
	return domain.TryOutDraft{
		Title:       "UTBK Practice",
		Description: "Warm-up",
		Duration:    30,
		Questions: []domain.Question{
			{Prompt: "2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
			{Prompt: "Capital of Indonesia?", Options: []string{"Bandung", "Jakarta"}, CorrectAnswer: "Jakarta"},
		},
	}
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeData[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Data
}

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestTryOutLifecycle(t *testing.T) {
	server := newTestServer(t, "")
	base := server.URL + "/api/v1"

	resp := do(t, http.MethodPost, base+"/tryouts", "", sampleDraft())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decodeData[domain.TryOut](t, resp)
	if created.ID == "" {
		t.Fatalf("expected id to be assigned")
	}

	resp = do(t, http.MethodGet, base+"/analytics/tryout/"+created.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if stats := decodeData[domain.Stats](t, resp); !stats.Empty() || stats.Participants == nil {
		t.Fatalf("expected empty stats with participants list, got %+v", stats)
	}

	for _, sub := range []domain.Submission{
		{ParticipantID: "u1", ParticipantName: "Alice", Answers: []string{"4", "Bandung"}},
		{ParticipantID: "u2", ParticipantName: "Bob", Answers: []string{"4", "Jakarta"}},
	} {
		resp = do(t, http.MethodPost, base+"/tryouts/"+created.ID+"/attempts", "", sub)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201 for attempt, got %d", resp.StatusCode)
		}
	}

	resp = do(t, http.MethodGet, base+"/analytics/tryout/"+created.ID, "", nil)
	stats := decodeData[domain.Stats](t, resp)
	if stats.ParticipantCount != 2 || stats.AverageScore != 75 || stats.HighestScore != 100 || stats.LowestScore != 50 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Participants[0].Name != "Bob" || stats.Participants[0].Rank != 1 {
		t.Fatalf("expected Bob to lead, got %+v", stats.Participants)
	}

	resp = do(t, http.MethodDelete, base+"/tryouts/"+created.ID, "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, base+"/analytics/tryout/"+created.ID, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestCreateReportsFailingQuestion(t *testing.T) {
	server := newTestServer(t, "")

	draft := sampleDraft()
	draft.Questions[1].CorrectAnswer = "Surabaya"
	resp := do(t, http.MethodPost, server.URL+"/api/v1/tryouts", "", draft)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var payload errorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Index == nil || *payload.Index != 1 {
		t.Fatalf("expected failing index 1, got %+v", payload)
	}
	if len(payload.Fields) == 0 || payload.Fields[0].Field != "correctAnswer" {
		t.Fatalf("expected correctAnswer field, got %+v", payload.Fields)
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	server := newTestServer(t, "")

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/v1/tryouts", strings.NewReader("{"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCatalogRoutes(t *testing.T) {
	server := newTestServer(t, "")
	base := server.URL + "/api/v1"

	resp := do(t, http.MethodPost, base+"/subjects", "", domain.Subject{Title: "Math"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	subject := decodeData[domain.Subject](t, resp)

	resp = do(t, http.MethodPost, base+"/chapters", "", domain.Chapter{SubjectID: "missing", Title: "Algebra"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown subject, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, base+"/chapters", "", domain.Chapter{SubjectID: subject.ID, Title: "Algebra"})
	chapter := decodeData[domain.Chapter](t, resp)

	question := domain.BankQuestion{
		ChapterID: chapter.ID,
		Question:  domain.Question{Prompt: "x + 1 = 2", Options: []string{"1", "2"}, CorrectAnswer: "1"},
	}
	resp = do(t, http.MethodPost, base+"/quizzes", "", question)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for question, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, base+"/quizzes/for-chapter/"+chapter.ID, "", nil)
	if bank := decodeData[[]domain.BankQuestion](t, resp); len(bank) != 1 || bank[0].CorrectAnswer != "1" {
		t.Fatalf("unexpected bank %+v", bank)
	}

	resp = do(t, http.MethodGet, base+"/chapters/for-subject/"+subject.ID, "", nil)
	if chapters := decodeData[[]domain.Chapter](t, resp); len(chapters) != 1 {
		t.Fatalf("expected one chapter, got %+v", chapters)
	}
}

func TestAuthGuardsAPI(t *testing.T) {
	server := newTestServer(t, testSecret)

	resp := do(t, http.MethodGet, server.URL+"/api/v1/tryouts", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, server.URL+"/api/v1/tryouts", signedToken(t, "other-secret"), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign token, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, server.URL+"/api/v1/tryouts", signedToken(t, testSecret), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, server.URL+"/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected open healthz, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	server := newTestServer(t, "")
	do(t, http.MethodGet, server.URL+"/api/v1/tryouts", "", nil)

	resp := do(t, http.MethodGet, server.URL+"/metrics", "", nil)
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(buf.String(), `route="/api/v1/tryouts"`) {
		t.Fatalf("expected route label in metrics output")
	}
}
