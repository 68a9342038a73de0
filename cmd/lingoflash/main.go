package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/models"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "lingoflash",
		Short:         "Listening flashcards built from transcribed audio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the study state (overrides DATA_DIR)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newDueCmd(opts))
	root.AddCommand(newReviewCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newSourcesCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newSettingsCmd(opts))
	root.AddCommand(newAnalyzeCmd(opts))
	return root
}

// withApp loads the app for one command run and closes it afterwards.
func withApp(opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := loadApp(context.Background(), opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a.baseContext(), a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDueCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show the next batch of cards to study",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				cards, err := a.reviews.GetDueItems(ctx, limit)
				if err != nil {
					return err
				}
				if len(cards) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
					return nil
				}
				for _, c := range cards {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.1fs-%.1fs\t%s\n", c.ID, c.StartTime, c.EndTime, c.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "batch size (defaults to cards_per_session)")
	return cmd
}

func newReviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "review <card-id> <again|hard|good|easy>",
		Short: "Grade a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := flashcard.ParseResponse(args[1])
			if err != nil {
				return err
			}
			return withApp(opts, func(ctx context.Context, a *app) error {
				card, err := a.reviews.ProcessReview(ctx, args[0], response)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "next review %s (interval %.2f days, ease %.2f)\n",
					card.NextReview.Local().Format("2006-01-02 15:04"), card.Interval, card.Ease)
				return nil
			})
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "import <audio-file | podcast-url>",
		Short: "Transcribe a source and add its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				settings, err := a.settings.Get(ctx)
				if err != nil {
					return err
				}
				var res models.MediaResult
				if isURL(args[0]) {
					res, err = a.pipeline.ProcessPodcastEpisode(ctx, args[0], title, settings.LearningLanguage)
				} else {
					res, err = a.pipeline.ProcessUpload(ctx, args[0], settings.LearningLanguage)
				}
				if err != nil {
					return err
				}
				added, err := a.cards.AddSource(ctx, res.SourceInfo, res.Segments)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %d cards from %s\n", added.Added, res.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "episode", "episode title for podcast URLs")
	return cmd
}

func isURL(s string) bool {
	return len(s) > 8 && (s[:7] == "http://" || s[:8] == "https://")
}

func newSourcesCmd(opts *rootOptions) *cobra.Command {
	sources := &cobra.Command{Use: "sources", Short: "Manage imported sources"}

	sources.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sources with their progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				list, err := a.cards.Sources(ctx)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sources")
					return nil
				}
				for _, s := range list {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d/%d reviewed\t%s\n",
						s.Type, s.Title, s.ReviewedCount, s.CardCount, s.AudioPath)
				}
				return nil
			})
		},
	})

	sources.AddCommand(&cobra.Command{
		Use:   "segments <audio-path>",
		Short: "Show the cards of one source in playback order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				segs, err := a.cards.SourceSegments(ctx, args[0])
				if err != nil {
					return err
				}
				for _, s := range segs {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%7.1f %7.1f  %s\n", s.Start, s.End, s.Text)
				}
				return nil
			})
		},
	})

	sources.AddCommand(&cobra.Command{
		Use:   "delete <audio-path>",
		Short: "Delete a source, its cards and its media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				res, err := a.cards.DeleteSource(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	})
	return sources
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show study statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				if detailed {
					out, err := a.stats.GetDetailedStats(ctx)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), out)
				}
				out, err := a.stats.GetStats(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "due %d, new %d, total %d\n", out.Due, out.New, out.Total)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "print the full statistics as JSON")
	return cmd
}

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Show or change study settings"}

	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				current, err := a.settings.Get(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), current)
			})
		},
	})

	var (
		dailyNew, perSession, dailyLimit int
		learning, native                 string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings; omitted flags keep their value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				current, err := a.settings.Get(ctx)
				if err != nil {
					return err
				}
				update := models.SettingsUpdate{
					DailyNewCards:   current.DailyNewCards,
					CardsPerSession: current.CardsPerSession,
				}
				flags := cmd.Flags()
				if flags.Changed("daily-new-cards") {
					update.DailyNewCards = dailyNew
				}
				if flags.Changed("cards-per-session") {
					update.CardsPerSession = perSession
				}
				if flags.Changed("daily-limit") {
					update.DailyLimit = &dailyLimit
				}
				if flags.Changed("learning-language") {
					update.LearningLanguage = &learning
				}
				if flags.Changed("native-language") {
					update.NativeLanguage = &native
				}
				updated, err := a.settings.Update(ctx, update)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), updated)
			})
		},
	}
	set.Flags().IntVar(&dailyNew, "daily-new-cards", 0, "new cards introduced per day")
	set.Flags().IntVar(&perSession, "cards-per-session", 0, "cards per study batch")
	set.Flags().IntVar(&dailyLimit, "daily-limit", 0, "soft daily review limit")
	set.Flags().StringVar(&learning, "learning-language", "", "language being learned")
	set.Flags().StringVar(&native, "native-language", "", "language used for translations")
	settings.AddCommand(set)
	return settings
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var regenerate bool
	cmd := &cobra.Command{
		Use:   "analyze <card-id>",
		Short: "Print the translation and breakdown of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(ctx context.Context, a *app) error {
				key, err := a.analysis.KeyForCard(ctx, args[0])
				if err != nil {
					return err
				}
				var out models.Analysis
				if regenerate {
					out, err = a.analysis.Regenerate(ctx, key)
				} else {
					out, err = a.analysis.Get(ctx, key)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "ignore the cached analysis")
	return cmd
}
