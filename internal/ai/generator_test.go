package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	resp *llms.ContentResponse
	err  error
	msgs []llms.MessageContent
}

func (m *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.msgs = msgs
	return m.resp, m.err
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestGenerateSendsSingleUserTurn(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "nice try"}},
	}}

	out, err := NewGeneratorWithModel(model).Generate(context.Background(), "persona\n\nUser: hi\nBot:")
	require.NoError(t, err)
	require.Equal(t, "nice try", out)

	require.Len(t, model.msgs, 1)
	require.Equal(t, llms.ChatMessageTypeHuman, model.msgs[0].Role)
	require.Equal(t, llms.TextContent{Text: "persona\n\nUser: hi\nBot:"}, model.msgs[0].Parts[0])
}

func TestGenerateNoChoicesIsEmpty(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{}}

	out, err := NewGeneratorWithModel(model).Generate(context.Background(), "p")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestGenerateWrapsErrors(t *testing.T) {
	upstream := errors.New("quota exceeded")
	model := &fakeModel{err: upstream}

	_, err := NewGeneratorWithModel(model).Generate(context.Background(), "p")
	require.ErrorIs(t, err, upstream)
}

func TestGenerateAgainstOpenAICompatibleEndpoint(t *testing.T) {
	var gotModel, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gemini-2.5-pro",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  toasted  "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4}
		}`))
	}))
	defer srv.Close()

	gen, err := NewGenerator("test-key", srv.URL, "gemini-2.5-pro")
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), "roast me")
	require.NoError(t, err)
	require.Equal(t, "  toasted  ", out)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "gemini-2.5-pro", gotModel)
}

func TestGenerateUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	gen, err := NewGenerator("test-key", srv.URL, "gemini-2.5-pro")
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "roast me")
	require.Error(t, err)
}
