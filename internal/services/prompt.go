package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct {
	position string
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{position: "SDE Intern"}
}

// BuildIntroPrompt creates the profile extraction prompt for an introduction video
func (pb *PromptBuilder) BuildIntroPrompt() string {
	return fmt.Sprintf(`Analyze this candidate introduction video for an %s position. Extract:
1. Candidate's name
2. Mentioned technical skills
3. Strengths
4. Areas for improvement
5. Generate 5-7 relevant interview questions

Return JSON exactly in this format:
{
  "name": "...",
  "skills": ["..."],
  "strengths": ["..."],
  "weaknesses": ["..."],
  "questions": [
    {"id": 1, "type": "technical", "question": "...", "category": "..."}
  ]
}`, pb.position)
}

// BuildAnswerPrompt creates the scoring prompt bound to one interview question
func (pb *PromptBuilder) BuildAnswerPrompt(questionText string) string {
	return fmt.Sprintf(`Analyze this candidate's video answer to the question: "%s"

Return JSON exactly in this format:
{
  "transcription": "...",
  "technical_score": 0-10,
  "problem_solving_score": 0-10,
  "communication_score": 0-10,
  "technical_feedback": "...",
  "problem_solving_feedback": "...",
  "communication_feedback": "..."
}`, strings.TrimSpace(questionText))
}
