package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-finder/internal/config"
	"github.com/jonathan/job-finder/internal/criteria"
	"github.com/jonathan/job-finder/internal/formatting"
	"github.com/jonathan/job-finder/internal/intent"
	"github.com/jonathan/job-finder/internal/llm"
	"github.com/jonathan/job-finder/internal/llm/llmtest"
	"github.com/jonathan/job-finder/internal/params"
	"github.com/jonathan/job-finder/internal/sources"
	"github.com/jonathan/job-finder/internal/types"
)

const threeCards = `
<li><div class="base-card">
  <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/1001?refId=a">x</a>
  <h3 class="base-search-card__title">Python Developer</h3>
  <h4 class="base-search-card__subtitle">Acme</h4>
  <span class="job-search-card__location">Remote</span>
  <time datetime="2024-05-01">1 day ago</time>
</div></li>
<li><div class="base-card">
  <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/1002">x</a>
  <h3 class="base-search-card__title">Backend Python Engineer</h3>
  <h4 class="base-search-card__subtitle">Globex</h4>
  <span class="job-search-card__location">Remote</span>
</div></li>
<li><div class="base-card">
  <h3 class="base-search-card__title">Django Developer</h3>
  <h4 class="base-search-card__subtitle">Initech</h4>
</div></li>
`

// scriptedModel answers each stage's prompt with a fixed, valid reply
func scriptedModel() *llmtest.MockClient {
	return &llmtest.MockClient{
		GenerateFunc: func(_ context.Context, req llm.Request) (string, error) {
			var body strings.Builder
			for _, m := range req.Messages {
				body.WriteString(m.Content)
			}
			content := body.String()

			switch {
			case strings.Contains(req.System, "intent classifier"):
				if strings.Contains(strings.ToLower(content), "how are you") {
					return `{"is_job_search": false, "confidence": 0.9, "reasoning": "greeting"}`, nil
				}
				return `{"is_job_search": true, "confidence": 0.95, "reasoning": "asks for jobs"}`, nil
			case strings.Contains(req.System, "friendly job search assistant"):
				return "Doing great! What kind of role are you looking for?", nil
			case strings.Contains(content, "profile_provided"):
				return `{"profile_provided": true, "message": "Thanks for sharing your profile."}`, nil
			case strings.Contains(content, "experience_code"):
				return `{"keywords": "python developer", "location": "", "experience_code": null, "work_type_code": 2}`, nil
			case strings.Contains(content, "job_title"):
				return `{"job_title": "Python Developer", "keywords": ["python"], "experience_level": "unspecified", "location": "Remote"}`, nil
			}
			return "", errors.New("unexpected prompt")
		},
	}
}

type searchServer struct {
	*httptest.Server
	mu    sync.Mutex
	query map[string]string
}

func newSearchServer(t *testing.T, body string) *searchServer {
	t.Helper()
	s := &searchServer{query: map[string]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		for k := range r.URL.Query() {
			s.query[k] = r.URL.Query().Get(k)
		}
		s.mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *searchServer) param(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query[name]
}

func liveAdapter(baseURL string) sources.Adapter {
	return sources.NewLinkedIn(sources.LinkedInOptions{BaseURL: baseURL, Logger: zerolog.Nop()})
}

type stubAdapter struct {
	mu      sync.Mutex
	calls   int
	queries []sources.Query
	jobs    []types.JobRecord
}

func (s *stubAdapter) Name() string { return "stub" }

func (s *stubAdapter) Fetch(_ context.Context, q sources.Query, _ int) []types.JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.queries = append(s.queries, q)
	return s.jobs
}

type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string, *types.ProfileContext) (types.SearchCriteria, error) {
	return types.SearchCriteria{}, &llm.GenerationError{Kind: llm.KindTimeout, Provider: "mock"}
}

type panickingNormalizer struct{}

func (panickingNormalizer) Normalize(context.Context, types.SearchCriteria, string) types.SearchParameters {
	panic("normalizer exploded")
}

func TestRun_LiveSearchEndToEnd(t *testing.T) {
	srv := newSearchServer(t, threeCards)
	model := scriptedModel()
	o := New(Dependencies{
		Router:     intent.NewRouter(model, zerolog.Nop()),
		Extractor:  criteria.NewModelExtractor(model, zerolog.Nop()),
		Normalizer: params.NewModelNormalizer(model, zerolog.Nop()),
		Adapter:    liveAdapter(srv.URL),
		Logger:     zerolog.Nop(),
	})

	res := o.Run(context.Background(), Request{Query: "Find me remote Python developer jobs"})

	assert.True(t, res.Searched)
	require.Len(t, res.Jobs, 3)
	assert.Contains(t, res.Document, "## 🎯 Found 3 Jobs")
	assert.Equal(t, 3, strings.Count(res.Document, "\n### "))
	assert.Contains(t, res.Document, "### 1. Python Developer")
	assert.Contains(t, res.Document, "https://www.linkedin.com/jobs/view/1001\n")
	assert.NotContains(t, res.Document, "❌")

	assert.Equal(t, "python developer", srv.param("keywords"))
	assert.Equal(t, "2", srv.param("f_WT"))
	assert.Empty(t, srv.param("start"))
	assert.Empty(t, srv.param("f_E"))
}

func TestRun_ConversationSkipsSearch(t *testing.T) {
	adapter := &stubAdapter{}
	o := New(Dependencies{
		Router:  intent.NewRouter(scriptedModel(), zerolog.Nop()),
		Adapter: adapter,
		Logger:  zerolog.Nop(),
	})

	res := o.Run(context.Background(), Request{Query: "hi, how are you"})

	assert.False(t, res.Searched)
	assert.Equal(t, "Doing great! What kind of role are you looking for?", res.Document)
	require.NotNil(t, res.Route)
	assert.Equal(t, types.RouteConversation, res.Route.Type)
	assert.Equal(t, 0, adapter.calls)
}

func TestRunSearch_MissingCredential(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIKey = ""

	o, err := NewFromConfig(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	doc := o.RunSearch(context.Background(), "", "python jobs in Berlin")

	assert.Contains(t, doc, "Configuration Error")
	assert.Contains(t, doc, "GEMINI_API_KEY")
	assert.Equal(t, ConfigErrorDocument("GEMINI_API_KEY"), doc)
}

func TestRun_UnreachableBoardReturnsNoResults(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	o := New(Dependencies{Adapter: liveAdapter(baseURL), Logger: zerolog.Nop()})

	res := o.Run(context.Background(), Request{Query: "python developer jobs", SkipRouting: true})

	assert.Equal(t, formatting.NoResults, res.Document)
	assert.Empty(t, res.Jobs)
}

func TestRun_PanicBecomesFailureDocument(t *testing.T) {
	o := New(Dependencies{
		Normalizer: panickingNormalizer{},
		Adapter:    &stubAdapter{},
		Logger:     zerolog.Nop(),
	})

	res := o.Run(context.Background(), Request{Query: "go jobs", SkipRouting: true})

	require.NotEmpty(t, res.RequestID)
	assert.Equal(t, FailureDocument(res.RequestID), res.Document)
	assert.Contains(t, res.Document, res.RequestID)
}

func TestRun_CancelledContext(t *testing.T) {
	adapter := &stubAdapter{}
	o := New(Dependencies{Adapter: adapter, Logger: zerolog.Nop()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := o.Run(ctx, Request{Query: "go jobs", SkipRouting: true})

	assert.Contains(t, res.Document, "Error During Job Search")
	assert.Equal(t, 0, adapter.calls)
}

func TestRun_ExtractionFailureFallsBackToQuery(t *testing.T) {
	adapter := &stubAdapter{}
	o := New(Dependencies{
		Extractor: failingExtractor{},
		Adapter:   adapter,
		Logger:    zerolog.Nop(),
	})

	res := o.Run(context.Background(), Request{Query: "rust engineer", SkipRouting: true})

	assert.Equal(t, formatting.NoResults, res.Document)
	require.Len(t, adapter.queries, 1)
	assert.Equal(t, "rust engineer", adapter.queries[0].Params.Keywords)
	assert.Equal(t, "rust engineer", adapter.queries[0].Criteria.JobTitle)
}

func TestRun_ProfileReachesAdapter(t *testing.T) {
	adapter := &stubAdapter{jobs: []types.JobRecord{{Title: "SRE", Company: "Acme"}}}
	o := New(Dependencies{Adapter: adapter, Logger: zerolog.Nop()})

	res := o.Run(context.Background(), Request{
		Query:       "sre jobs",
		ProfileRef:  "https://www.linkedin.com/in/someone",
		SkipRouting: true,
	})

	assert.Contains(t, res.Document, "### 1. SRE")
	require.Len(t, adapter.queries, 1)
	require.NotNil(t, adapter.queries[0].Profile)
	assert.True(t, adapter.queries[0].Profile.ProfileProvided)
}

func TestRun_NoProfileLeavesContextNil(t *testing.T) {
	adapter := &stubAdapter{}
	o := New(Dependencies{Adapter: adapter, Logger: zerolog.Nop()})

	o.Run(context.Background(), Request{Query: "sre jobs", ProfileRef: "   ", SkipRouting: true})

	require.Len(t, adapter.queries, 1)
	assert.Nil(t, adapter.queries[0].Profile)
}

func TestRun_ProgressEvents(t *testing.T) {
	var mu sync.Mutex
	var steps []string
	o := New(Dependencies{
		Adapter: &stubAdapter{jobs: []types.JobRecord{{Title: "SRE", Company: "Acme"}}},
		Logger:  zerolog.Nop(),
	})

	res := o.Run(context.Background(), Request{
		Query: "find sre jobs",
		OnProgress: func(e ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			steps = append(steps, e.Step)
			assert.NotEmpty(t, e.RequestID)
		},
	})

	require.NotEmpty(t, steps)
	assert.Equal(t, StepRouting, steps[0])
	assert.Equal(t, StepComplete, steps[len(steps)-1])
	assert.Contains(t, steps, StepCriteria)
	assert.Contains(t, steps, StepParameters)
	assert.Contains(t, steps, StepSearch)
	assert.Contains(t, steps, StepFormat)
	assert.NotContains(t, steps, StepProfile)
	assert.True(t, res.Searched)
}

func TestRun_CapsResults(t *testing.T) {
	jobs := make([]types.JobRecord, 20)
	for i := range jobs {
		jobs[i] = types.JobRecord{Title: "Engineer", Company: "Acme"}
	}
	o := New(Dependencies{Adapter: &stubAdapter{jobs: jobs}, Logger: zerolog.Nop(), MaxJobs: 5})

	res := o.Run(context.Background(), Request{Query: "engineer", SkipRouting: true})

	assert.Len(t, res.Jobs, 5)
	assert.Contains(t, res.Document, "## 🎯 Found 5 Jobs")
}

func TestRoute(t *testing.T) {
	o := New(Dependencies{Logger: zerolog.Nop()})

	search := o.Route(context.Background(), "find me a data engineer job", nil)
	assert.True(t, search.ShouldSearch)
	assert.Nil(t, search.Response)

	chat := o.Route(context.Background(), "good morning", nil)
	assert.False(t, chat.ShouldSearch)
	require.NotNil(t, chat.Response)
	assert.Equal(t, intent.FallbackReply(), *chat.Response)
}

func TestNewFromConfig_InvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIKey = "key"
	cfg.Source = "carrier-pigeon"

	_, err := NewFromConfig(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewFromConfig_OpenAICompatibleEndToEnd(t *testing.T) {
	board := newSearchServer(t, threeCards)
	model := scriptedModel()
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		req := llm.Request{}
		for _, m := range body.Messages {
			if m.Role == "system" {
				req.System = m.Content
				continue
			}
			req.Messages = append(req.Messages, llm.UserMessage(m.Content))
		}
		content, _ := model.Generate(r.Context(), req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(chat.Close)

	cfg := config.Defaults()
	cfg.Provider = "openai"
	cfg.APIKey = "test-key"
	cfg.BaseURL = chat.URL
	cfg.SearchURL = board.URL
	cfg.DelayMin = 0
	cfg.DelayMax = 0

	o, err := NewFromConfig(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })

	doc := o.RunSearch(context.Background(), "", "Find me remote Python developer jobs")

	assert.Contains(t, doc, "## 🎯 Found 3 Jobs")
	assert.Equal(t, "2", board.param("f_WT"))
}

func TestRun_PanickingProgressCallbackIsContained(t *testing.T) {
	o := New(Dependencies{
		Adapter: &stubAdapter{jobs: []types.JobRecord{{Title: "SRE", Company: "Acme"}}},
		Logger:  zerolog.Nop(),
	})

	var res Result
	require.NotPanics(t, func() {
		res = o.Run(context.Background(), Request{
			Query:      "find sre jobs",
			OnProgress: func(ProgressEvent) { panic("listener gone") },
		})
	})

	assert.True(t, res.Searched)
	assert.Contains(t, res.Document, "### 1. SRE")
}
