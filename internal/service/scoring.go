package service

import "github.com/hollyoake/coursemark/internal/model"

// ScoreChoiceResponse applies all-or-nothing multiple choice scoring: full
// question marks iff the selected set equals the correct set exactly, zero
// otherwise. Pure function; the caller persists the result.
func ScoreChoiceResponse(question *model.Question, selectedChoiceIDs []uint) int {
	chosen := make(map[uint]bool, len(selectedChoiceIDs))
	for _, id := range selectedChoiceIDs {
		chosen[id] = true
	}

	var chosenIncorrect, unchosenCorrect int
	for _, choice := range question.Choices {
		switch {
		case chosen[choice.ID] && !choice.Correct:
			chosenIncorrect++
		case !chosen[choice.ID] && choice.Correct:
			unchosenCorrect++
		}
	}

	if chosenIncorrect == 0 && unchosenCorrect == 0 {
		return question.Marks
	}
	return 0
}
