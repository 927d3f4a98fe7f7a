package oracle

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// Client is the interface all oracle implementations satisfy. The
// oracle is treated as unreliable: callers must run its output through
// ExtractJSON and schema validation before trusting anything in it.
type Client interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*Response, error)
}

// Response holds the raw response content and token usage.
type Response struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// New selects an oracle implementation from the environment:
// USE_CLI_ORACLE=true shells out to the claude CLI, MOCK_ORACLE=true
// returns canned JSON, otherwise the Anthropic API is used.
func New() Client {
	if os.Getenv("USE_CLI_ORACLE") == "true" {
		cliPath := os.Getenv("CLAUDE_CLI_PATH")
		if cliPath == "" {
			cliPath = "claude"
		}
		log.Println("Oracle using Claude CLI (local plan)")
		return NewCLIClient(cliPath)
	}

	if os.Getenv("MOCK_ORACLE") == "true" {
		log.Println("Oracle using mock data")
		return NewMockClient()
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	log.Println("Oracle using Anthropic API:", model)
	return NewAPIClient(model)
}

// ── Anthropic API Client ────────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &Response{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── Mock Client ─────────────────────────────────────────

// MockClient inspects the prompt to decide whether a quiz or a
// feedback payload is being requested and returns deterministic JSON.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*Response, error) {
	content := buildMockQuizJSON(strings.Contains(userPrompt, `"type": "short"`))
	if strings.Contains(userPrompt, `"items"`) {
		content = buildMockFeedbackJSON()
	}
	return &Response{
		Content:      content,
		PromptTokens: 1200,
		OutputTokens: 900,
	}, nil
}

func buildMockQuizJSON(short bool) string {
	if short {
		questions := make([]string, 0, 3)
		for i := 1; i <= 3; i++ {
			questions = append(questions, fmt.Sprintf(
				`{"type":"short","id":"q_%d","prompt":"[Mock] Define concept %d in one sentence.","answerText":"[Mock] Canonical answer %d.","rubric":"[Mock] Award credit for mentioning the key mechanism.","keywords":["mock","concept","mechanism"],"objective":"[Mock] objective %d","bloomLevel":"understand","difficulty":%d}`,
				i, i, i, i, (i%5)+1))
		}
		return fmt.Sprintf(`{"questions":[%s]}`, strings.Join(questions, ","))
	}

	questions := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		questions = append(questions, fmt.Sprintf(
			`{"type":"mcq","id":"q_%d","prompt":"[Mock] Which statement about topic %d is accurate?","options":["[Mock] Option A","[Mock] Option B","[Mock] Option C","[Mock] Option D"],"correctIndex":%d,"explanation":"[Mock] The correct option restates the objective precisely.","objective":"[Mock] objective %d","bloomLevel":"apply","difficulty":%d}`,
			i, i, (i-1)%4, i, (i%5)+1))
	}
	return fmt.Sprintf(`{"questions":[%s]}`, strings.Join(questions, ","))
}

func buildMockFeedbackJSON() string {
	return `{"items":[{"questionId":"q_1","type":"mcq","correctIndex":0,"userIndex":0,"correct":true,"feedback":"[Mock] Well reasoned."},{"questionId":"q_2","type":"short","userText":"[Mock] user answer","correct":false,"feedback":"[Mock] Missing the key mechanism."}],"overall":"[Mock] Solid attempt, review the weak areas.","weakPoints":["[Mock] concept 2"],"studyPlan":["[Mock] Re-read the notes on concept 2","[Mock] Attempt three more practice items"]}`
}
