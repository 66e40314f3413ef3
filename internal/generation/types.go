package generation

// StudentContext carries optional details about the student that shape the
// generated content. All fields are free text supplied by the caller.
type StudentContext struct {
	Name       string `json:"name,omitempty"`
	GradeLevel string `json:"grade_level,omitempty"`
	Subject    string `json:"subject,omitempty"`
}

// Homework item types.
const (
	HomeworkTypePractice  = "practice"
	HomeworkTypeReview    = "review"
	HomeworkTypeChallenge = "challenge"
)

// Quiz question types.
const (
	QuizTypeMCQ   = "mcq"
	QuizTypeShort = "short"
)

// LessonSummary is the structured digest of a lesson transcript.
// All fields are required in the provider's response schema.
type LessonSummary struct {
	Subject            string   `json:"subject"`
	Unit               string   `json:"unit"`
	LessonSummary      string   `json:"lesson_summary"`
	Strengths          []string `json:"strengths"`
	Issues             []string `json:"issues"`
	Recommendations    []string `json:"recommendations"`
	ComprehensionLevel string   `json:"comprehension_level"`
}

// HomeworkItem is one assignment generated from the lesson.
type HomeworkItem struct {
	Title            string `json:"title"`
	DueDaysFromNow   int    `json:"due_days_from_now"`
	Type             string `json:"type"` // practice, review or challenge
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// QuizQuestion is one comprehension-check question generated from the lesson.
// Choices is populated only for mcq questions.
type QuizQuestion struct {
	Type        string   `json:"type"` // mcq or short
	Question    string   `json:"question"`
	Choices     []string `json:"choices,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// LessonContent is the ephemeral aggregate returned by a successful
// generation. It is only ever populated in full: if any constituent
// generation fails, no aggregate is returned at all.
type LessonContent struct {
	Summary  *LessonSummary `json:"summary"`
	Homework []HomeworkItem `json:"homework"`
	Quiz     []QuizQuestion `json:"quiz"`
}

// QuestionAnalysis is the textual result of analyzing a photographed question.
type QuestionAnalysis struct {
	Text string `json:"text"`
}
