package assessment

import (
	"errors"
	"fmt"
)

var ErrInvalidAnswer = errors.New("invalid answer")

// InvalidAnswerError names the question whose answer is not a known label.
type InvalidAnswerError struct {
	QuestionID int
	Answer     string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer %q for question %d", e.Answer, e.QuestionID)
}

func (e *InvalidAnswerError) Is(target error) bool {
	return target == ErrInvalidAnswer
}
