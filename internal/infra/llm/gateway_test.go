package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"askme-quiz-service/internal/domain"
)

func TestGenerateParsesItems(t *testing.T) {
	var seen capturedRequest
	server := httptest.NewServer(completionHandler(t, &seen, http.StatusOK, quizJSON(10)))
	defer server.Close()

	gateway := newTestGateway(server, false)
	questions, err := gateway.Generate(context.Background(), "solar system")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}
	if questions[0].Answer != questions[0].Options[2] {
		t.Fatalf("unexpected first question %+v", questions[0])
	}

	if !strings.HasSuffix(seen.path, "/chat/completions") {
		t.Fatalf("expected chat completions path, got %s", seen.path)
	}
	if seen.auth != "Bearer test-key" {
		t.Fatalf("expected bearer credential, got %q", seen.auth)
	}
	for _, want := range []string{
		"json_object",
		DefaultModel,
		"exactly 10 quiz questions",
		"provide 4 options",
		"Create a quiz from the given content: solar system",
	} {
		if !strings.Contains(seen.body, want) {
			t.Fatalf("expected request body to contain %q", want)
		}
	}
}

func TestGenerateMissingKeyIsConfigurationFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	gateway := NewGateway(Options{BaseURL: server.URL, HTTPClient: server.Client()})
	_, err := gateway.Generate(context.Background(), "solar system")
	if !domain.IsConfigurationError(err) || !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no network call without a key, got %d", calls)
	}
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestGateway(server, false).Generate(context.Background(), "solar system")
	assertKind(t, err, domain.GenerationUpstream)
}

func TestGenerateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	gateway := newTestGateway(server, false)
	server.Close()

	_, err := gateway.Generate(context.Background(), "solar system")
	assertKind(t, err, domain.GenerationTransport)
}

func TestGenerateUnparseableContent(t *testing.T) {
	for name, content := range map[string]string{
		"not json":      "here are your questions!",
		"missing items": `{"questions":[]}`,
		"null items":    `{"items":null}`,
	} {
		var seen capturedRequest
		server := httptest.NewServer(completionHandler(t, &seen, http.StatusOK, content))
		_, err := newTestGateway(server, false).Generate(context.Background(), "solar system")
		server.Close()
		if err == nil {
			t.Fatalf("%s: expected parse failure", name)
		}
		assertKind(t, err, domain.GenerationParse)
	}
}

func TestGenerateEmptyCompletion(t *testing.T) {
	var seen capturedRequest
	server := httptest.NewServer(completionHandler(t, &seen, http.StatusOK, ""))
	defer server.Close()

	_, err := newTestGateway(server, false).Generate(context.Background(), "solar system")
	if err == nil {
		t.Fatalf("expected failure on empty completion")
	}
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected generation error, got %T", err)
	}
}

func TestLenientModeAcceptsShapeViolations(t *testing.T) {
	var seen capturedRequest
	content := `{"items":[{"question":"Largest planet?","options":["Mars","Venus"],"answer":"Jupiter"}]}`
	server := httptest.NewServer(completionHandler(t, &seen, http.StatusOK, content))
	defer server.Close()

	questions, err := newTestGateway(server, false).Generate(context.Background(), "planets")
	if err != nil {
		t.Fatalf("expected lenient parse to succeed, got %v", err)
	}
	if len(questions) != 1 || len(questions[0].Options) != 2 {
		t.Fatalf("unexpected questions %+v", questions)
	}
}

func TestStrictModeRejectsShapeViolations(t *testing.T) {
	cases := map[string]string{
		"too few questions": quizJSON(3),
		"answer not an option": strings.Replace(quizJSON(10),
			`"answer":"q1-c"`, `"answer":"q1-z"`, 1),
	}
	for name, content := range cases {
		var seen capturedRequest
		server := httptest.NewServer(completionHandler(t, &seen, http.StatusOK, content))
		_, err := newTestGateway(server, true).Generate(context.Background(), "planets")
		server.Close()
		if err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
		assertKind(t, err, domain.GenerationSchema)
	}
}

func TestStrictModeAcceptsWellFormedQuiz(t *testing.T) {
	var seen capturedRequest
	server := httptest.NewServer(completionHandler(t, &seen, http.StatusOK, quizJSON(10)))
	defer server.Close()

	if _, err := newTestGateway(server, true).Generate(context.Background(), "planets"); err != nil {
		t.Fatalf("expected well-formed quiz accepted, got %v", err)
	}
}

func TestSystemPromptQuotesSchema(t *testing.T) {
	prompt := SystemPrompt()
	if !strings.Contains(prompt, ResponseSchema) {
		t.Fatalf("expected schema in system prompt")
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(ResponseSchema), &schema); err != nil {
		t.Fatalf("schema is not valid json: %v", err)
	}
}

type capturedRequest struct {
	path string
	auth string
	body string
}

func completionHandler(t *testing.T, seen *capturedRequest, status int, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen.path = r.URL.Path
		seen.auth = r.Header.Get("Authorization")
		seen.body = string(body)

		payload := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   DefaultModel,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 10, "total_tokens": 20},
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func newTestGateway(server *httptest.Server, strict bool) *Gateway {
	return NewGateway(Options{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		Strict:     strict,
		HTTPClient: server.Client(),
	})
}

func assertKind(t *testing.T, err error, want domain.GenerationKind) {
	t.Helper()
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if genErr.Kind != want {
		t.Fatalf("expected kind %s, got %s (%v)", want, genErr.Kind, genErr.Err)
	}
}

// quizJSON builds n questions whose answer is always the third option.
func quizJSON(n int) string {
	items := make([]domain.QuizQuestion, n)
	for i := range items {
		opts := []string{
			fmt.Sprintf("q%d-a", i),
			fmt.Sprintf("q%d-b", i),
			fmt.Sprintf("q%d-c", i),
			fmt.Sprintf("q%d-d", i),
		}
		items[i] = domain.QuizQuestion{
			Question: fmt.Sprintf("Question %d?", i+1),
			Options:  opts,
			Answer:   opts[2],
		}
	}
	data, _ := json.Marshal(map[string]any{"items": items})
	return string(data)
}
