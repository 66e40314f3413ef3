package gemini

import "google.golang.org/genai"

// Per-request generation temperatures. The summary sticks close to the
// transcript, so it runs cold; homework and quiz want variety.
// Fixed by design, not user-tunable.
const (
	summaryTemperature  float32 = 0.2
	creativeTemperature float32 = 0.7
	visionTemperature   float32 = 0.4
)

// Bounds on the homework list. The provider is instructed to stay inside
// them and the parser rejects responses that do not.
const (
	minHomeworkItems = 3
	maxHomeworkItems = 5
)

// summarySchema describes the structured lesson summary. Every field is
// required; the provider must not omit empty arrays.
func summarySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"subject":         {Type: genai.TypeString, Description: "school subject of the lesson"},
			"unit":            {Type: genai.TypeString, Description: "curriculum unit or topic covered"},
			"lesson_summary":  {Type: genai.TypeString, Description: "concise narrative of what happened in the lesson"},
			"strengths":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"issues":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "points the student struggled with"},
			"recommendations": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"comprehension_level": {
				Type: genai.TypeString,
				Enum: []string{"low", "medium", "high"},
			},
		},
		Required: []string{
			"subject", "unit", "lesson_summary", "strengths",
			"issues", "recommendations", "comprehension_level",
		},
	}
}

// homeworkSchema describes the homework list response.
func homeworkSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"items": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":             {Type: genai.TypeString},
						"due_days_from_now": {Type: genai.TypeInteger},
						"type": {
							Type: genai.TypeString,
							Enum: []string{"practice", "review", "challenge"},
						},
						"estimated_minutes": {Type: genai.TypeInteger},
					},
					Required: []string{"title", "due_days_from_now", "type", "estimated_minutes"},
				},
			},
		},
		Required: []string{"items"},
	}
}

// quizSchema describes the quiz response.
func quizSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"questions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type": {
							Type: genai.TypeString,
							Enum: []string{"mcq", "short"},
						},
						"question":    {Type: genai.TypeString},
						"choices":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"answer":      {Type: genai.TypeString},
						"explanation": {Type: genai.TypeString},
					},
					Required: []string{"type", "question", "answer", "explanation"},
				},
			},
		},
		Required: []string{"questions"},
	}
}
