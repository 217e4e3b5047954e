package generator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"addition-drill/internal/domain"
	"github.com/google/uuid"
)

// Generator produces batches of addition problems.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed is useful in tests for reproducible batches.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate returns cfg.Count problems with operands drawn uniformly from
// [cfg.Min, cfg.Max]. With cfg.Shuffle the batch is permuted (Fisher-Yates).
func (g *Generator) Generate(cfg domain.SessionConfig) []domain.Problem {
	if cfg.Count <= 0 {
		return []domain.Problem{}
	}
	lo, hi := cfg.Min, cfg.Max
	if hi < lo {
		// degenerate range: pin both operands to the lower bound
		hi = lo
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	problems := make([]domain.Problem, cfg.Count)
	for i := range problems {
		problems[i] = domain.Problem{
			ID: uuid.NewString(),
			A:  g.between(lo, hi),
			B:  g.between(lo, hi),
			Op: domain.OpAdd,
		}
	}
	if cfg.Shuffle {
		g.rnd.Shuffle(len(problems), func(i, j int) {
			problems[i], problems[j] = problems[j], problems[i]
		})
	}
	return problems
}

// between draws uniformly from [lo, hi]. The span is computed in uint64 so
// ranges wider than math.MaxInt do not overflow.
func (g *Generator) between(lo, hi int) int {
	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return int(g.rnd.Uint64())
	}
	n := span + 1
	if n <= math.MaxInt64 {
		return lo + int(g.rnd.Int63n(int64(n)))
	}
	// n > 2^63: rejection keeps the draw uniform and succeeds at least half the time
	for {
		if v := g.rnd.Uint64(); v < n {
			return int(uint64(lo) + v)
		}
	}
}
