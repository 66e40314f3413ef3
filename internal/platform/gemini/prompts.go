package gemini

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/jukuhub/juku-api/internal/generation"
)

// Prompt templates for the three lesson-content generations. The transcript
// is quoted verbatim; student context fields are included when present.
const (
	summaryPromptTemplate = `You are an assistant for tutoring instructors.
Summarize the following lesson transcript as structured data.
{{if .Subject}}Subject: {{.Subject}}. {{end}}{{if .GradeLevel}}Grade level: {{.GradeLevel}}. {{end}}{{if .Name}}Student: {{.Name}}. {{end}}
Report the subject and unit covered, a concise lesson summary, the student's
strengths, the specific points the student struggled with (issues), concrete
recommendations for the next lesson, and an overall comprehension level.
Answer in the language of the transcript.

Transcript:
{{.Transcript}}`

	homeworkPromptTemplate = `You are an assistant for tutoring instructors.
Based on the following lesson transcript, propose between %d and %d homework
assignments that reinforce what was covered. Mix practice, review and
challenge items. For each item give a title, the number of days from now it
is due, its type, and the estimated minutes it takes.
Answer in the language of the transcript.

Transcript:
{{.Transcript}}`

	quizPromptTemplate = `You are an assistant for tutoring instructors.
Based on the following lesson transcript, write a short comprehension quiz.
Use a mix of multiple-choice (mcq) and short-answer (short) questions.
Multiple-choice questions must list their choices; every question needs the
correct answer and a brief explanation.
Answer in the language of the transcript.

Transcript:
{{.Transcript}}`
)

// questionAnalysisPrompt is the fixed instructional prompt for photographed
// questions. It withholds the final answer on purpose.
const questionAnalysisPrompt = `You are a tutor looking at a photographed exercise question.
Identify the school subject and curriculum unit, restate what the question is
really asking, estimate its likely difficulty for the student, and give one
hint that points toward the solution WITHOUT revealing the final answer.
Answer in the language used in the image.`

// promptData is the data passed to the lesson prompt templates.
type promptData struct {
	Transcript string
	Name       string
	GradeLevel string
	Subject    string
}

func renderPrompt(tmpl *template.Template, transcript string, studentCtx generation.StudentContext) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, promptData{
		Transcript: transcript,
		Name:       studentCtx.Name,
		GradeLevel: studentCtx.GradeLevel,
		Subject:    studentCtx.Subject,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
