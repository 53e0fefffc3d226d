package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymori/ideascout/internal/agenterr"
	"github.com/ymori/ideascout/internal/categories"
	"github.com/ymori/ideascout/internal/collect"
	"github.com/ymori/ideascout/internal/config"
	"github.com/ymori/ideascout/internal/db"
	"github.com/ymori/ideascout/internal/llm"
	"github.com/ymori/ideascout/internal/progress"
	"github.com/ymori/ideascout/internal/search"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*db.Session
	progress []db.ProgressRow
	research map[uuid.UUID][]db.ResearchData
	latest   []db.ResearchData
	ideas    map[uuid.UUID][]db.IdeaRow
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uuid.UUID]*db.Session),
		research: make(map[uuid.UUID][]db.ResearchData),
		ideas:    make(map[uuid.UUID][]db.IdeaRow),
	}
}

func (m *memStore) CreateSession(ctx context.Context, userInput string) (*db.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := &db.Session{ID: uuid.New(), Status: db.SessionStatusStarted, CreatedAt: time.Now()}
	if userInput != "" {
		session.UserInput = &userInput
	}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *memStore) GetSession(ctx context.Context, id uuid.UUID) (*db.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id], nil
}

func (m *memStore) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[id]; ok {
		session.Status = status
	}
	return nil
}

func (m *memStore) InsertProgress(ctx context.Context, rec progress.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, db.ProgressRow{
		ID:                 uuid.New(),
		SessionID:          rec.SessionID,
		AgentName:          rec.AgentName,
		Status:             string(rec.Status),
		ProgressPercentage: rec.ProgressPercentage,
		Message:            rec.Message,
		CreatedAt:          time.Now(),
	})
	return nil
}

func (m *memStore) ListProgress(ctx context.Context, sessionID uuid.UUID) ([]db.ProgressRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []db.ProgressRow
	for _, row := range m.progress {
		if row.SessionID == sessionID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *memStore) InsertResearchData(ctx context.Context, sessionID uuid.UUID, inputs []db.ResearchDataInput) ([]db.ResearchData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var saved []db.ResearchData
	for _, input := range inputs {
		content, err := json.Marshal(input.Content)
		if err != nil {
			return nil, err
		}
		rd := db.ResearchData{
			ID:               uuid.New(),
			SessionID:        sessionID,
			Category:         input.Category,
			Subcategory:      input.Subcategory,
			DataType:         input.DataType,
			Title:            input.Title,
			Content:          content,
			ReliabilityScore: input.ReliabilityScore,
			CreatedAt:        time.Now(),
		}
		m.research[sessionID] = append(m.research[sessionID], rd)
		saved = append(saved, rd)
	}
	return saved, nil
}

func (m *memStore) ListResearchData(ctx context.Context, sessionID uuid.UUID) ([]db.ResearchData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.research[sessionID], nil
}

func (m *memStore) LatestCategoryTrends(ctx context.Context) ([]db.ResearchData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, nil
}

func (m *memStore) InsertIdeas(ctx context.Context, sessionID uuid.UUID, inputs []db.IdeaInput) ([]db.IdeaRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []db.IdeaRow
	for _, input := range inputs {
		row := db.IdeaRow{
			ID:              uuid.New(),
			SessionID:       sessionID,
			Title:           input.Title,
			ProjectedProfit: input.ProjectedProfit,
		}
		m.ideas[sessionID] = append(m.ideas[sessionID], row)
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *memStore) ListIdeas(ctx context.Context, sessionID uuid.UUID) ([]db.IdeaRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ideas[sessionID], nil
}

// stubLLM routes prompts by marker, mirroring the stage prompt set.
type stubLLM struct{}

func (stubLLM) GenerateContent(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	return "丸の内エリアとテナント企業ネットワークを活用した展開シナリオ。", nil
}

func (stubLLM) GenerateJSON(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	switch {
	case strings.Contains(prompt, "検索結果"):
		return `{"summary": "市場は拡大傾向", "key_trends": ["AI活用"]}`, nil
	case strings.Contains(prompt, "事業アイデア"):
		return `{"ideas": [{
			"title": "スマートビル管理",
			"description": "AIでビル管理を効率化",
			"target_market": "ビル運営会社",
			"revenue_model": "SaaS",
			"timeline": "12ヶ月",
			"market_size": 2000,
			"som": 100,
			"estimated_profit_margin": 10
		}]}`, nil
	default:
		return `{"industry": "不動産", "key_themes": ["スマートビル"]}`, nil
	}
}

func (stubLLM) Close() error { return nil }

type stubSearch struct{}

func (stubSearch) Search(ctx context.Context, query string, opts search.Options) (*search.Response, error) {
	return &search.Response{Query: query, Organic: stubResults()}, nil
}

func (stubSearch) BatchSearch(ctx context.Context, queries []string, opts search.Options) map[string]*search.Response {
	out := make(map[string]*search.Response, len(queries))
	for _, q := range queries {
		out[q] = &search.Response{Query: q, Organic: stubResults()}
	}
	return out
}

func stubResults() []search.Result {
	results := make([]search.Result, 4)
	for i := range results {
		results[i] = search.Result{
			Title:   "市場レポート",
			Link:    "https://report" + string(rune('a'+i)) + ".example.jp/trend",
			Snippet: strings.Repeat("市場は堅調に拡大しています。", 8),
			Date:    "2026/05/01",
		}
	}
	return results
}

func newTestServer(store Store) *Server {
	return New(config.Config{ListenAddr: ":0"}, store, stubLLM{}, stubSearch{})
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(newMemStore())
	rec := doRequest(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(newMemStore())
	rec := doRequest(t, s, http.MethodPost, "/sessions", map[string]string{"user_input": "新規事業を検討したい"})

	require.Equal(t, http.StatusCreated, rec.Code)

	var session db.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.Equal(t, db.SessionStatusStarted, session.Status)
}

func TestCreateSessionMissingInput(t *testing.T) {
	s := newTestServer(newMemStore())
	rec := doRequest(t, s, http.MethodPost, "/sessions", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestServer(newMemStore())
	rec := doRequest(t, s, http.MethodGet, "/sessions/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSessionInvalidID(t *testing.T) {
	s := newTestServer(newMemStore())
	rec := doRequest(t, s, http.MethodGet, "/sessions/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdeateWithoutResearch(t *testing.T) {
	store := newMemStore()
	s := newTestServer(store)
	session, _ := store.CreateSession(context.Background(), "テスト")

	rec := doRequest(t, s, http.MethodPost, "/sessions/"+session.ID.String()+"/ideate", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCollectThenIdeateFlow(t *testing.T) {
	store := newMemStore()
	s := newTestServer(store)
	session, _ := store.CreateSession(context.Background(), "スマートビル事業を検討したい")

	rec := doRequest(t, s, http.MethodPost, "/sessions/"+session.ID.String()+"/collect", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = doRequest(t, s, http.MethodPost, "/sessions/"+session.ID.String()+"/ideate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated, _ := store.GetSession(context.Background(), session.ID)
	assert.Equal(t, db.SessionStatusCompleted, updated.Status)

	rec = doRequest(t, s, http.MethodGet, "/sessions/"+session.ID.String()+"/ideas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "スマートビル管理")

	rec = doRequest(t, s, http.MethodGet, "/sessions/"+session.ID.String()+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "information_collection")
	assert.Contains(t, rec.Body.String(), "ideation")
}

// freshStoredTrends builds one recent stored trend row per category.
func freshStoredTrends(t *testing.T) []db.ResearchData {
	t.Helper()
	var rows []db.ResearchData
	for _, cat := range categories.All {
		content, err := json.Marshal(collect.CategoryTrend{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Summary:      cat.Name + "市場は拡大傾向",
			CollectedAt:  time.Now().Add(-24 * time.Hour),
		})
		require.NoError(t, err)
		rows = append(rows, db.ResearchData{
			ID:          uuid.New(),
			SessionID:   uuid.New(),
			Category:    db.ResearchCategoryMarketTrend,
			Subcategory: cat.ID,
			DataType:    db.ResearchTypeTrend,
			Content:     content,
			CreatedAt:   time.Now().Add(-24 * time.Hour),
		})
	}
	return rows
}

func TestReusedCollectionStillAllowsIdeate(t *testing.T) {
	store := newMemStore()
	store.latest = freshStoredTrends(t)
	s := newTestServer(store)
	session, _ := store.CreateSession(context.Background(), "スマートビル事業を検討したい")

	rec := doRequest(t, s, http.MethodPost, "/sessions/"+session.ID.String()+"/collect", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"reused_existing_data":true`)

	// The analysis row is persisted for the session even on reuse.
	rows, _ := store.ListResearchData(context.Background(), session.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, db.ResearchTypeUserAnalysis, rows[0].DataType)

	// Ideation falls back to the shared stored trends.
	rec = doRequest(t, s, http.MethodPost, "/sessions/"+session.ID.String()+"/ideate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ideas, _ := store.ListIdeas(context.Background(), session.ID)
	assert.NotEmpty(t, ideas)
}

func TestProgressEmptyList(t *testing.T) {
	store := newMemStore()
	s := newTestServer(store)
	session, _ := store.CreateSession(context.Background(), "テスト")

	rec := doRequest(t, s, http.MethodGet, "/sessions/"+session.ID.String()+"/progress", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"timeout", agenterr.NewTimeoutError("collect", time.Second), http.StatusGatewayTimeout},
		{"data quality", &agenterr.DataQualityError{Message: "bad"}, http.StatusUnprocessableEntity},
		{"api error with code", agenterr.NewAPIError("upstream", "X", 502, nil), http.StatusBadGateway},
		{"api error without code", &agenterr.APIError{Message: "x"}, http.StatusInternalServerError},
		{"plain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}
