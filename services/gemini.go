package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"quizgenius/quiz"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// generationPrompt is the instruction prefix for quiz generation. The
// per-request constraints (topic, count, types, difficulty, language) are
// appended by buildGenerationPrompt.
const generationPrompt = `Generate a quiz as a JSON object. Follow these requirements exactly:

1. Create exactly the requested number of questions about the requested topic.
2. Use only the requested question types. Supported types and their fields:
   - "multiple-choice", "case-study", "situation": 4 "options", one "correct_answer" (must be one of the options)
   - "true-false": "correct_answer" is "True" or "False"
   - "multi-select": 4-6 "options", "correct_options" lists 2 or more of them
   - "sequence": "correct_sequence" lists 3-6 items in the right order
   - "fill-blank", "short-answer": "correct_answer" is the expected text, "keywords" lists 2-4 terms a good answer mentions
3. Every question gets an "explanation" of the correct answer and a "difficulty" of "basic", "intermediate" or "advanced".
4. Write all text in the requested language.

Format your response as a JSON object with the following structure:
{
  "title": "Descriptive Quiz Title",
  "questions": [
    {
      "text": "Question text here?",
      "type": "multiple-choice",
      "options": ["A", "B", "C", "D"],
      "correct_answer": "B",
      "correct_options": [],
      "correct_sequence": [],
      "keywords": [],
      "difficulty": "intermediate",
      "explanation": "Why B is correct."
    }
  ]
}
`

const evaluationPrompt = `You are grading one free-text quiz answer. Compare the user's answer to the expected answer and keywords, allowing for phrasing differences. Respond with a JSON object:
{"is_correct": true or false, "feedback": "one or two sentences for the learner", "score": 0-100}
`

// GeminiClient wraps the Gemini API behind the engine's provider and
// evaluator interfaces.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"

	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// generatedQuiz mirrors the JSON shape requested by generationPrompt.
type generatedQuiz struct {
	Title     string              `json:"title"`
	Questions []generatedQuestion `json:"questions"`
}

type generatedQuestion struct {
	Text            string   `json:"text"`
	Type            string   `json:"type"`
	Options         []string `json:"options"`
	CorrectAnswer   string   `json:"correct_answer"`
	CorrectOptions  []string `json:"correct_options"`
	CorrectSequence []string `json:"correct_sequence"`
	Keywords        []string `json:"keywords"`
	Difficulty      string   `json:"difficulty"`
	Explanation     string   `json:"explanation"`
}

// Generate implements quiz.QuestionProvider.
func (c *GeminiClient) Generate(ctx context.Context, prefs quiz.Preferences) ([]quiz.Question, error) {
	prompt := buildGenerationPrompt(prefs)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &quiz.GenerationError{Err: err}
	}

	payload := responseText(resp)
	questions, _, err := ParseGeneratedQuiz(payload)
	if err != nil {
		return nil, &quiz.GenerationError{Err: err}
	}

	log.Printf("Generated %d questions for topic %q", len(questions), prefs.Topic)
	return questions, nil
}

// GenerateTitled returns the questions together with the provider's title,
// for persisting the quiz.
func (c *GeminiClient) GenerateTitled(ctx context.Context, prefs quiz.Preferences) (string, []quiz.Question, error) {
	prompt := buildGenerationPrompt(prefs)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", nil, &quiz.GenerationError{Err: err}
	}

	questions, title, err := ParseGeneratedQuiz(responseText(resp))
	if err != nil {
		return "", nil, &quiz.GenerationError{Err: err}
	}
	return title, questions, nil
}

// EvaluateAnswer implements quiz.AnswerEvaluator.
func (c *GeminiClient) EvaluateAnswer(ctx context.Context, q quiz.Question, userAnswer string, language string) (quiz.Verdict, error) {
	var sb strings.Builder
	sb.WriteString(evaluationPrompt)
	fmt.Fprintf(&sb, "\nQuestion: %s\n", q.Text)
	fmt.Fprintf(&sb, "Expected answer: %s\n", q.CorrectAnswer)
	if len(q.Keywords) > 0 {
		fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(q.Keywords, ", "))
	}
	if language != "" {
		fmt.Fprintf(&sb, "Answer language: %s\n", language)
	}
	fmt.Fprintf(&sb, "User's answer: %s\n", userAnswer)

	resp, err := c.model.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		return quiz.Verdict{}, &quiz.EvaluationError{Err: err}
	}

	verdict, err := ParseVerdict(responseText(resp))
	if err != nil {
		return quiz.Verdict{}, &quiz.EvaluationError{Err: err}
	}
	return verdict, nil
}

func buildGenerationPrompt(prefs quiz.Preferences) string {
	var sb strings.Builder
	sb.WriteString(generationPrompt)

	fmt.Fprintf(&sb, "\nTopic: %s\n", prefs.Topic)
	if prefs.Subtopic != "" {
		fmt.Fprintf(&sb, "Subtopic: %s\n", prefs.Subtopic)
	}
	fmt.Fprintf(&sb, "Number of questions: %d\n", prefs.QuestionCount)

	types := make([]string, 0, len(prefs.QuestionTypes))
	for _, t := range prefs.QuestionTypes {
		types = append(types, string(t))
	}
	fmt.Fprintf(&sb, "Question types: %s\n", strings.Join(types, ", "))

	if prefs.Difficulty != "" {
		fmt.Fprintf(&sb, "Difficulty: %s\n", prefs.Difficulty)
	}
	language := prefs.Language
	if language == "" {
		language = "English"
	}
	fmt.Fprintf(&sb, "Language: %s\n", language)

	return sb.String()
}

// ParseGeneratedQuiz decodes the provider's JSON payload into engine
// questions, assigning sequential IDs and a shuffled presentation order for
// sequence questions. It fails when no usable questions can be extracted.
func ParseGeneratedQuiz(payload string) ([]quiz.Question, string, error) {
	payload = stripJSONFences(payload)
	if strings.TrimSpace(payload) == "" {
		return nil, "", errors.New("empty provider response")
	}

	var parsed generatedQuiz
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, "", fmt.Errorf("malformed provider response: %w", err)
	}
	if len(parsed.Questions) == 0 {
		return nil, "", errors.New("provider returned zero questions")
	}

	questions := make([]quiz.Question, 0, len(parsed.Questions))
	for i, gq := range parsed.Questions {
		t := quiz.QuestionType(gq.Type)
		if !t.Valid() {
			log.Printf("Skipping generated question with unknown type %q", gq.Type)
			continue
		}
		q := quiz.Question{
			ID:              i + 1,
			Text:            gq.Text,
			Type:            t,
			Options:         gq.Options,
			CorrectAnswer:   gq.CorrectAnswer,
			CorrectOptions:  gq.CorrectOptions,
			CorrectSequence: gq.CorrectSequence,
			Difficulty:      quiz.Difficulty(gq.Difficulty),
			Explanation:     gq.Explanation,
			Keywords:        gq.Keywords,
		}
		if t == quiz.Sequence {
			q.Sequence = shuffledCopy(gq.CorrectSequence)
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, "", errors.New("no valid questions in provider response")
	}

	// Re-key IDs after any skips so they stay 1..N in display order.
	for i := range questions {
		questions[i].ID = i + 1
	}

	return questions, parsed.Title, nil
}

// ParseVerdict decodes the evaluator's JSON payload.
func ParseVerdict(payload string) (quiz.Verdict, error) {
	payload = stripJSONFences(payload)
	var verdict quiz.Verdict
	if err := json.Unmarshal([]byte(payload), &verdict); err != nil {
		return quiz.Verdict{}, fmt.Errorf("malformed evaluator response: %w", err)
	}
	if verdict.Score < 0 {
		verdict.Score = 0
	}
	if verdict.Score > 100 {
		verdict.Score = 100
	}
	return verdict, nil
}

// stripJSONFences removes markdown code fences the model sometimes wraps
// around JSON output despite the JSON response MIME type.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

func shuffledCopy(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
