package assessment

import "slices"

// Options are the canonical answer labels. An answer scores its index.
var Options = [4]string{"Never", "Sometimes", "Often", "Almost always"}

var questionnaire = []Question{
	{ID: 1, Question: "How often do you find yourself gambling for longer than intended?"},
	{ID: 2, Question: "Have you tried to cut down or stop gambling but found it difficult?"},
	{ID: 3, Question: "Do you gamble to escape problems or relieve feelings of helplessness?"},
	{ID: 4, Question: "Have you ever lied to family or friends about how much you gamble?"},
	{ID: 5, Question: "Have you risked or lost important relationships or opportunities due to gambling?"},
	{ID: 6, Question: "Do you feel anxious or irritable when trying to cut down or stop gambling?"},
	{ID: 7, Question: "Have you needed to gamble with increasing amounts of money to achieve the desired excitement?"},
	{ID: 8, Question: "After losing money gambling, do you often return another day to try to win back your losses?"},
	{ID: 9, Question: "Have you ever had financial problems because of your gambling?"},
	{ID: 10, Question: "Have you ever borrowed money or sold anything to finance gambling?"},
}

func init() {
	for i := range questionnaire {
		questionnaire[i].Options = Options[:]
	}
}

// Questions returns the questionnaire in order.
func Questions() []Question {
	return slices.Clone(questionnaire)
}
