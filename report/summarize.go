package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tangerg/graphrag/community"
	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/graph"
	"github.com/tangerg/graphrag/model"
	"github.com/tangerg/graphrag/prompts"
	"github.com/tangerg/graphrag/xstrings"
)

// Summarizer produces a CommunityReport per community.Community, calling
// an LLM bounded by maxInFlight and falling back to a deterministic
// summary when no client is configured or the call fails, per §4.11.
type Summarizer struct {
	cfg    config.CommunityReports
	client model.ChatClient
	log    *slog.Logger
}

// NewSummarizer builds a Summarizer. client may be nil, in which case
// every community gets the fallback summary.
func NewSummarizer(cfg config.CommunityReports, client model.ChatClient, log *slog.Logger) *Summarizer {
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{cfg: cfg, client: client, log: log}
}

// Summarize produces one CommunityReport per community, in input order.
// Results are collected into an index-ordered buffer under bounded
// parallel fan-out, then finalized sequentially; ordering of the calls
// themselves has no effect on the output since each community's report
// depends only on its own members.
func (s *Summarizer) Summarize(ctx context.Context, communities []community.Community, entities []graph.Entity, relationships []graph.Relationship, maxInFlight int) ([]CommunityReport, error) {
	entityByID := make(map[string]graph.Entity, len(entities))
	for _, e := range entities {
		entityByID[e.ID] = e
	}
	relationshipByID := make(map[string]graph.Relationship, len(relationships))
	for _, r := range relationships {
		relationshipByID[r.ID] = r
	}

	reports := make([]CommunityReport, len(communities))

	g, gctx := errgroup.WithContext(ctx)
	if maxInFlight > 0 {
		g.SetLimit(maxInFlight)
	}
	for i, c := range communities {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = s.summarizeOne(gctx, c, entityByID, relationshipByID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *Summarizer) summarizeOne(ctx context.Context, c community.Community, entityByID map[string]graph.Entity, relationshipByID map[string]graph.Relationship) CommunityReport {
	titles := make([]string, 0, len(c.EntityIds))
	var relationshipLines []string
	for _, id := range c.EntityIds {
		if e, ok := entityByID[id]; ok {
			titles = append(titles, e.Title)
		}
	}
	for _, id := range c.RelationshipIds {
		if r, ok := relationshipByID[id]; ok {
			relationshipLines = append(relationshipLines, fmt.Sprintf("%s -> %s: %s", r.Source, r.Target, r.Description))
		}
	}

	summary := s.callModel(ctx, titles, relationshipLines)
	if summary == "" {
		summary = fallbackSummary(titles)
	}

	return CommunityReport{
		CommunityID:  "community_" + strconv.Itoa(c.ID),
		Level:        c.Level,
		EntityTitles: titles,
		Summary:      summary,
		Keywords:     ExtractKeywords(summary),
	}
}

func (s *Summarizer) callModel(ctx context.Context, titles, relationshipLines []string) string {
	if s.client == nil {
		return ""
	}
	system := prompts.ResolveSummarySystem(s.cfg.SystemPrompt)
	user, err := prompts.ResolveSummaryUser(s.cfg.UserPrompt, prompts.SummaryAttrs{
		EntityNames:       titles,
		RelationshipLines: relationshipLines,
		MaxLength:         s.cfg.MaxLength,
	})
	if err != nil {
		s.log.Warn("community summary prompt render failed", "error", err)
		return ""
	}
	result, err := s.client.Chat(ctx, []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: user},
	})
	if err != nil {
		s.log.Warn("community summary model call failed", "error", err)
		return ""
	}
	return strings.TrimSpace(result.Content)
}

// fallbackSummary is emitted when no model is configured or the model
// call fails or returns nothing.
func fallbackSummary(titles []string) string {
	return fmt.Sprintf("Community containing: %s. Relationships indicate shared context across the documents.", strings.Join(titles, ", "))
}

// ExtractKeywords tokenizes text, keeps lowercase tokens longer than two
// characters, and returns the top 10 by (count desc, token asc).
func ExtractKeywords(text string) []string {
	counts := map[string]int{}
	for _, token := range xstrings.SplitWords(text) {
		token = strings.ToLower(token)
		if len(token) <= 2 {
			continue
		}
		counts[token]++
	}

	type counted struct {
		token string
		count int
	}
	all := make([]counted, 0, len(counts))
	for token, count := range counts {
		all = append(all, counted{token, count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].token < all[j].token
	})

	n := 10
	if len(all) < n {
		n = len(all)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].token
	}
	return out
}
