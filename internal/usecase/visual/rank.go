package visual

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/smartshopper/internal/domain/vision"
)

// Ranking defaults.
const (
	DefaultThreshold = 0.3
	DefaultTopK      = 10

	// minShardSize keeps tiny candidate sets on one goroutine.
	minShardSize = 256
)

// Rank scores every candidate against query, drops scores below threshold
// and returns the best topK in descending score order. Equal scores are
// ordered by ascending product ID. Candidates of a different dimension are
// skipped. The scan is sharded across goroutines and stops when ctx is done.
func Rank(
	ctx context.Context, query vision.Embedding, candidates []vision.Candidate,
	topK int, threshold float64,
) ([]vision.Match, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(candidates) == 0 {
		return []vision.Match{}, nil
	}

	scores := make([]float64, len(candidates))
	shards := shardCount(len(candidates))
	size := (len(candidates) + shards - 1) / shards

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(candidates); start += size {
		end := min(start+size, len(candidates))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%minShardSize == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				s, err := vision.Similarity(query, candidates[i].Embedding)
				if err != nil {
					s = math.NaN()
				}
				scores[i] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]vision.Match, 0, min(topK, len(candidates)))
	for i, s := range scores {
		if math.IsNaN(s) || s < threshold {
			continue
		}
		matches = append(matches, vision.Match{ID: candidates[i].ID, Score: s})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func shardCount(n int) int {
	shards := runtime.GOMAXPROCS(0)
	if limit := (n + minShardSize - 1) / minShardSize; shards > limit {
		shards = limit
	}
	return max(shards, 1)
}
