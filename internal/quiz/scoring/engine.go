package scoring

// Result is the outcome of grading a finished session.
type Result struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// Grade counts positions where the recorded answer equals the key.
// Unanswered positions never match. No partial credit, no penalties, no time component.
func Grade(keys []int, answers map[int]int) Result {
	correct := 0
	for i, key := range keys {
		if ans, ok := answers[i]; ok && ans == key {
			correct++
		}
	}

	res := Result{Correct: correct, Total: len(keys)}
	if res.Total > 0 {
		res.Accuracy = float64(correct) / float64(res.Total)
	}
	return res
}

// Outcome classifies one question for review after the session ends.
type Outcome struct {
	Answered bool `json:"answered"`
	Selected int  `json:"selected"`
	Correct  int  `json:"correct"`
	IsRight  bool `json:"is_right"`
}

// Review lists per-question outcomes in presentation order. Selected is -1 when unanswered.
func Review(keys []int, answers map[int]int) []Outcome {
	out := make([]Outcome, len(keys))
	for i, key := range keys {
		ans, ok := answers[i]
		if !ok {
			ans = -1
		}
		out[i] = Outcome{
			Answered: ok,
			Selected: ans,
			Correct:  key,
			IsRight:  ok && ans == key,
		}
	}
	return out
}
