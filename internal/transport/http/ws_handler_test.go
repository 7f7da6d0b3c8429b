package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tryout-service/internal/domain"
)

func TestWebSocketStreamsStats(t *testing.T) {
	server := newTestServer(t, "")
	base := server.URL + "/api/v1"

	created := decodeData[domain.TryOut](t, do(t, http.MethodPost, base+"/tryouts", "", sampleDraft()))

	u := "ws" + server.URL[len("http"):] + "/ws/analytics?tryoutId=" + created.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The current summary arrives first.
	if stats := readStats(t, conn); !stats.Empty() {
		t.Fatalf("expected empty initial stats, got %+v", stats)
	}

	sub := domain.Submission{ParticipantID: "u1", ParticipantName: "Alice", Answers: []string{"4", "Jakarta"}}
	if resp := do(t, http.MethodPost, base+"/tryouts/"+created.ID+"/attempts", "", sub); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	stats := readStats(t, conn)
	if stats.ParticipantCount != 1 || stats.HighestScore != 100 {
		t.Fatalf("expected updated stats, got %+v", stats)
	}
}

func TestWebSocketRejectsUnknownTryOut(t *testing.T) {
	server := newTestServer(t, "")

	u := "ws" + server.URL[len("http"):] + "/ws/analytics?tryoutId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}

func readStats(t *testing.T, conn *websocket.Conn) domain.Stats {
	t.Helper()
	var msg struct {
		Type    string       `json:"type"`
		Payload domain.Stats `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "stats" {
		t.Fatalf("expected stats message, got %s", msg.Type)
	}
	return msg.Payload
}
