package types

// QuestionOption is one selectable answer for an onboarding question.
type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question is a personalization question shown during onboarding.
// Type is "single_choice" or "multiple_choice".
type Question struct {
	ID       string           `json:"id"`
	Question string           `json:"question"`
	Type     string           `json:"type"`
	Options  []QuestionOption `json:"options"`
}
