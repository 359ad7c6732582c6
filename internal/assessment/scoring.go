package assessment

import "slices"

// Score returns the ordinal score of an answer label.
func Score(label string) (int, bool) {
	i := slices.Index(Options[:], label)
	return i, i >= 0
}

// Classify maps a total score to its risk level.
func Classify(total int) RiskLevel {
	switch {
	case total >= 10:
		return RiskHigh
	case total >= 5:
		return RiskMedium
	default:
		return RiskLow
	}
}

// scoreAnswers scores every answer in order. Partial questionnaires are
// scored as submitted.
func scoreAnswers(answers []Answer) ([]ScoredAnswer, int, error) {
	scored := make([]ScoredAnswer, 0, len(answers))
	total := 0
	for _, a := range answers {
		s, ok := Score(a.Answer)
		if !ok {
			return nil, 0, &InvalidAnswerError{QuestionID: a.QuestionID, Answer: a.Answer}
		}
		scored = append(scored, ScoredAnswer{QuestionID: a.QuestionID, Answer: a.Answer, Score: s})
		total += s
	}
	return scored, total, nil
}
