package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/godilite/voting-tool/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Ranking reads every submission of the voting and aggregates it. Concurrent
// calls for the same voting share one read as long as no write to the voting
// completed in between; nothing is kept afterwards.
func (s *VotingService) Ranking(ctx context.Context, voting string) ([]RankingEntry, error) {
	voting, err := domain.NormalizeVotingName(voting)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s\x00%d", voting, s.writes.current(voting))

	// The shared read must not fail when the caller that started it goes
	// away. Submissions bounds it with storeTimeout.
	readCtx := context.WithoutCancel(ctx)
	ch := s.sfGroup.DoChan(key, func() (any, error) {
		subs, err := s.Submissions(readCtx, voting)
		if err != nil {
			return nil, err
		}
		return Aggregate(subs), nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	entries := res.Val.([]RankingEntry)
	s.logger.Info("ranking computed",
		zap.String("voting", voting),
		zap.Int("items", len(entries)),
		zap.Bool("shared", res.Shared))

	return entries, nil
}

// Aggregate sums position points per item label. The label is matched
// exactly after trimming. Entries are ordered by total score, highest first;
// equal scores keep the order in which the items were first seen.
func Aggregate(submissions []domain.Submission) []RankingEntry {
	entries := make([]RankingEntry, 0)
	index := make(map[string]int)

	for _, sub := range submissions {
		for i, raw := range sub.Items {
			item := strings.TrimSpace(raw)
			if item == "" {
				continue
			}
			points := domain.Points(i)

			idx, ok := index[item]
			if !ok {
				idx = len(entries)
				index[item] = idx
				entries = append(entries, RankingEntry{Item: item})
			}
			entries[idx].TotalScore += points
			entries[idx].Contributors = append(entries[idx].Contributors, Contributor(sub.Voter, points))
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
	return entries
}

// Contributor formats one voter's share of an item's score.
func Contributor(voter string, points int) string {
	return fmt.Sprintf("%s (%d P)", voter, points)
}
