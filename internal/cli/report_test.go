package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"tryout-service/internal/app"
	"tryout-service/internal/domain"
	"tryout-service/internal/infra/memory"
)

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	tryout := domain.TryOut{ID: "t1", Title: "UTBK Practice"}
	if err := writeReport(&buf, tryout, domain.Stats{TryOutID: "t1", Participants: []domain.RankedParticipant{}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "no participants yet") {
		t.Fatalf("expected empty marker, got %q", buf.String())
	}
}

func TestWriteReportLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	stats := domain.Stats{
		TryOutID:         "t1",
		ParticipantCount: 2,
		AverageScore:     200.0 / 3,
		HighestScore:     100,
		LowestScore:      100.0 / 3,
		Participants: []domain.RankedParticipant{
			{Rank: 1, ID: "u2", Name: "Bob", Score: 100},
			{Rank: 2, ID: "u1", Name: "Alice", Score: 100.0 / 3},
		},
	}
	if err := writeReport(&buf, domain.TryOut{ID: "t1", Title: "UTBK Practice"}, stats); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"average: 66.67", "lowest: 33.33", "Bob", "100.00", "Alice"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
	if strings.Index(out, "Bob") > strings.Index(out, "Alice") {
		t.Fatalf("expected Bob ranked above Alice:\n%s", out)
	}
}

func TestReportLoadsTryOutOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTryOutStore()
	created, err := store.CreateTryOut(ctx, domain.TryOut{Title: "UTBK Practice", Questions: []domain.Question{
		{Prompt: "2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.SaveAttempt(ctx, domain.Attempt{TryOutID: created.ID, ParticipantID: "u1", ParticipantName: "Alice", Score: 100}); err != nil {
		t.Fatalf("save attempt: %v", err)
	}

	reader := &countingReader{TryOutReader: store}
	tryouts := &rememberedTryOut{TryOutReader: reader}
	stats, err := app.NewAnalyticsService(tryouts, store, app.NewFeed(), zap.NewNop()).Summary(ctx, created.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if reader.gets != 1 {
		t.Fatalf("expected one lookup, got %d", reader.gets)
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, tryouts.last, stats); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "UTBK Practice") || !strings.Contains(out, "1  ") {
		t.Fatalf("expected title and rank in report:\n%s", out)
	}
}

type countingReader struct {
	app.TryOutReader
	gets int
}

func (r *countingReader) GetTryOut(ctx context.Context, id string) (domain.TryOut, error) {
	r.gets++
	return r.TryOutReader.GetTryOut(ctx, id)
}
