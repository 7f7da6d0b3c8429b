package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tryout-service/internal/app"
	"tryout-service/internal/config"
	"tryout-service/internal/domain"
	"tryout-service/internal/infra/postgres"
)

// NewReportCmd prints the analytics of a stored try-out.
func NewReportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report <tryoutId>",
		Short: "Print statistics and the leaderboard of a try-out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errNoPostgres
			}
			ctx := cmd.Context()
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := postgres.NewTryOutStore(pool)
			tryouts := &rememberedTryOut{TryOutReader: store}
			stats, err := app.NewAnalyticsService(tryouts, store, app.NewFeed(), zap.NewNop()).Summary(ctx, args[0])
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), tryouts.last, stats)
		},
	}
}

// rememberedTryOut keeps the document Summary loaded so the header needs no
// second query.
type rememberedTryOut struct {
	app.TryOutReader
	last domain.TryOut
}

func (r *rememberedTryOut) GetTryOut(ctx context.Context, id string) (domain.TryOut, error) {
	t, err := r.TryOutReader.GetTryOut(ctx, id)
	if err == nil {
		r.last = t
	}
	return t, err
}

func writeReport(out io.Writer, tryout domain.TryOut, stats domain.Stats) error {
	fmt.Fprintf(out, "%s (%s)\n", tryout.Title, tryout.ID)
	if stats.Empty() {
		_, err := fmt.Fprintln(out, "no participants yet")
		return err
	}

	fmt.Fprintf(out, "participants: %d\n", stats.ParticipantCount)
	fmt.Fprintf(out, "average: %s  highest: %s  lowest: %s\n\n",
		domain.FormatScore(stats.AverageScore),
		domain.FormatScore(stats.HighestScore),
		domain.FormatScore(stats.LowestScore))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tSCORE")
	for _, p := range stats.Participants {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.Rank, p.Name, domain.FormatScore(p.Score))
	}
	return tw.Flush()
}
