package quiz

import (
	"math/rand"

	"github.com/gokatarajesh/subject-quiz/internal/bank"
)

// DefaultQuestionLimit is the number of questions drawn per session.
const DefaultQuestionLimit = 25

// PreparedQuestion is a question as presented in one session: options shuffled, answer remapped.
type PreparedQuestion struct {
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"-"`
}

// Preparer draws and shuffles the fixed question list of a session.
type Preparer struct {
	rng   *lockedRand
	limit int
}

// NewPreparer builds a preparer. A zero seed seeds from the clock; limit <= 0 uses DefaultQuestionLimit.
func NewPreparer(seed int64, limit int) *Preparer {
	if limit <= 0 {
		limit = DefaultQuestionLimit
	}
	return &Preparer{rng: newLockedRand(seed), limit: limit}
}

// Limit is the subset size used by PrepareDefault.
func (p *Preparer) Limit() int {
	return p.limit
}

// PrepareDefault prepares a session with the preparer's configured limit.
func (p *Preparer) PrepareDefault(templates []bank.Template) []PreparedQuestion {
	return p.Prepare(templates, p.limit)
}

// Prepare shuffles the bank, keeps the first min(limit, len(bank)) templates and shuffles each one's options.
// The correct option is followed by its original position, so duplicate option texts keep the right answer.
// A limit <= 0 yields an empty list.
func (p *Preparer) Prepare(templates []bank.Template, limit int) []PreparedQuestion {
	if limit < 0 {
		limit = 0
	}

	var out []PreparedQuestion
	p.rng.with(func(r *rand.Rand) {
		picked := Shuffle(r, templates)
		if len(picked) > limit {
			picked = picked[:limit]
		}
		out = make([]PreparedQuestion, len(picked))
		for i, t := range picked {
			out[i] = prepareOne(r, t)
		}
	})
	return out
}

func prepareOne(r *rand.Rand, t bank.Template) PreparedQuestion {
	order := make([]int, len(t.Options))
	for i := range order {
		order[i] = i
	}
	order = Shuffle(r, order)

	options := make([]string, len(order))
	answer := -1
	for pos, src := range order {
		options[pos] = t.Options[src]
		if src == t.AnswerIndex {
			answer = pos
		}
	}
	return PreparedQuestion{Text: t.Text, Options: options, AnswerIndex: answer}
}
