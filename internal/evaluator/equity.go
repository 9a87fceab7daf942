package evaluator

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pmourey/UniversLudique/internal/deck"
)

// DefaultTrials is the number of Monte Carlo trials used when the caller
// does not specify one.
const DefaultTrials = 500

// Contender is a live player whose hole cards are known to the estimator.
type Contender struct {
	ID   string
	Hole []deck.Card
}

// EquityResult carries per-player win probabilities in percent, rounded to
// one decimal. Exact is true only when the full board was known and no
// sampling happened; otherwise the numbers are estimates subject to
// sampling variance.
type EquityResult struct {
	Probs  map[string]float64
	Trials int
	Exact  bool
}

// Equities estimates each contender's probability of winning at showdown
// given the revealed board. With all five community cards known the result
// collapses to a deterministic 100/0/split from the real hand comparison.
// Otherwise it runs Monte Carlo trials: each trial completes the board from
// the unseen cards, evaluates every contender, and credits each tied winner
// 1/(number of winners). Trials never mutate caller state.
func Equities(contenders []Contender, board []deck.Card, trials int, rng *rand.Rand) EquityResult {
	if len(contenders) < 2 {
		probs := make(map[string]float64, len(contenders))
		for _, c := range contenders {
			probs[c.ID] = 100.0
		}
		return EquityResult{Probs: probs, Exact: true}
	}

	if len(board) >= 5 {
		return exactEquities(contenders, board[:5])
	}

	if trials <= 0 {
		trials = DefaultTrials
	}

	known := make([]deck.Card, 0, len(board)+2*len(contenders))
	known = append(known, board...)
	for _, c := range contenders {
		known = append(known, c.Hole...)
	}
	pool := deck.Without(known)

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers > trials {
		workers = trials
	}

	g, ctx := errgroup.WithContext(context.Background())
	results := make(chan map[string]float64, workers)

	perWorker := trials / workers
	remainder := trials % workers
	for w := 0; w < workers; w++ {
		n := perWorker
		if w < remainder {
			n++
		}
		// Independent RNG per worker, seeded from the parent so a seeded
		// caller gets reproducible aggregates.
		seed := rng.Int63()
		g.Go(func() error {
			credits := sampleTrials(contenders, board, pool, n, rand.New(rand.NewSource(seed)))
			select {
			case results <- credits:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	total := make(map[string]float64, len(contenders))
	for credits := range results {
		for id, c := range credits {
			total[id] += c
		}
	}

	probs := make(map[string]float64, len(contenders))
	for _, c := range contenders {
		probs[c.ID] = round1(100 * total[c.ID] / float64(trials))
	}
	return EquityResult{Probs: probs, Trials: trials}
}

// exactEquities resolves win probabilities from the real hand comparison on
// a complete board.
func exactEquities(contenders []Contender, board []deck.Card) EquityResult {
	scores := make([]HandScore, len(contenders))
	best := 0
	for i, c := range contenders {
		scores[i] = Evaluate(append(append([]deck.Card{}, c.Hole...), board...))
		if i > 0 && scores[i].Compare(scores[best]) > 0 {
			best = i
		}
	}

	var winners []int
	for i := range contenders {
		if scores[i].Compare(scores[best]) == 0 {
			winners = append(winners, i)
		}
	}

	probs := make(map[string]float64, len(contenders))
	for i, c := range contenders {
		probs[c.ID] = 0
		for _, w := range winners {
			if w == i {
				probs[c.ID] = round1(100 / float64(len(winners)))
			}
		}
	}
	return EquityResult{Probs: probs, Exact: true}
}

// sampleTrials runs n independent trials over a private copy of the unseen
// card pool and returns accumulated win credits per contender.
func sampleTrials(contenders []Contender, board, pool []deck.Card, n int, rng *rand.Rand) map[string]float64 {
	credits := make(map[string]float64, len(contenders))
	scratch := append([]deck.Card{}, pool...)
	need := 5 - len(board)

	full := make([]deck.Card, 0, 5)
	hand := make([]deck.Card, 0, 7)
	scores := make([]HandScore, len(contenders))

	for trial := 0; trial < n; trial++ {
		// Draw the board completion without replacement; the scratch pool
		// keeps its full card set between trials.
		for k := 0; k < need; k++ {
			j := k + rng.Intn(len(scratch)-k)
			scratch[k], scratch[j] = scratch[j], scratch[k]
		}

		full = append(full[:0], board...)
		full = append(full, scratch[:need]...)

		best := 0
		for i, c := range contenders {
			hand = append(hand[:0], c.Hole...)
			hand = append(hand, full...)
			scores[i] = Evaluate(hand)
			if i > 0 && scores[i].Compare(scores[best]) > 0 {
				best = i
			}
		}

		nWinners := 0
		for i := range contenders {
			if scores[i].Compare(scores[best]) == 0 {
				nWinners++
			}
		}
		for i, c := range contenders {
			if scores[i].Compare(scores[best]) == 0 {
				credits[c.ID] += 1 / float64(nWinners)
			}
		}
	}

	return credits
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
