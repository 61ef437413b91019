package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"tickerdesk/internal/api"
	"tickerdesk/internal/plan"
)

type echoProvider struct {
	lastMessages []Message
	reply        string
	err          error
}

func (p *echoProvider) Name() string { return "echo" }

func (p *echoProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	p.lastMessages = append([]Message(nil), messages...)
	return p.reply, p.err
}

func TestAskKeepsSessionTranscript(t *testing.T) {
	p := &echoProvider{reply: "NVDA looks extended."}
	a := New(p)

	reply, session, err := a.Ask(context.Background(), "", "What about NVDA?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if reply != "NVDA looks extended." {
		t.Errorf("unexpected reply %q", reply)
	}
	if session == "" {
		t.Fatal("expected generated session id")
	}

	if _, _, err := a.Ask(context.Background(), session, "And AMD?"); err != nil {
		t.Fatalf("second Ask: %v", err)
	}

	// system + user + assistant + user on the second call.
	if len(p.lastMessages) != 4 {
		t.Fatalf("expected transcript of 4 messages, got %d", len(p.lastMessages))
	}
	if p.lastMessages[0].Role != RoleSystem {
		t.Errorf("transcript lost system prompt: %+v", p.lastMessages[0])
	}

	transcript := a.Transcript(session)
	if len(transcript) != 5 {
		t.Errorf("stored transcript has %d messages, want 5", len(transcript))
	}
}

func TestAskTrimsLongTranscripts(t *testing.T) {
	p := &echoProvider{reply: "ok"}
	a := New(p)

	session := ""
	var err error
	for i := 0; i < 30; i++ {
		_, session, err = a.Ask(context.Background(), session, "turn")
		if err != nil {
			t.Fatalf("Ask %d: %v", i, err)
		}
	}
	if len(p.lastMessages) > maxTurns {
		t.Errorf("transcript not trimmed: %d messages", len(p.lastMessages))
	}
	if p.lastMessages[0].Role != RoleSystem {
		t.Error("trimming dropped the system prompt")
	}
}

func TestBackendProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ai/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "reply": "Markets are closed."})
	}))
	defer srv.Close()

	p := NewBackendProvider(api.NewClient(srv.URL, ""))
	reply, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "Markets are closed." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("**BUY** signal on `AAPL`")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.Contains(html, "<strong>BUY</strong>") || !strings.Contains(html, "<code>AAPL</code>") {
		t.Errorf("unexpected html %q", html)
	}
}

type fixedPlanClient struct{ plan string }

func (f *fixedPlanClient) UserPlan(ctx context.Context) (string, error) {
	if f.plan == "" {
		return "", errors.New("down")
	}
	return f.plan, nil
}

func TestChatRouteGatesFreeTier(t *testing.T) {
	a := New(&echoProvider{reply: "hello"})
	plans := plan.NewManager(&fixedPlanClient{plan: "free"}, nil)

	r := chi.NewRouter()
	RegisterRoutes(r, a, plans)

	body := strings.NewReader(`{"message":"hi"}`)
	req := httptest.NewRequest("POST", "/api/chat", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 for free tier, got %d", w.Code)
	}
	var upsell plan.Upsell
	if err := json.Unmarshal(w.Body.Bytes(), &upsell); err != nil {
		t.Fatalf("unmarshal upsell: %v", err)
	}
	if upsell.RequiredTier != plan.TierPro {
		t.Errorf("expected pro requirement, got %q", upsell.RequiredTier)
	}
}

func TestChatRouteAnswersProTier(t *testing.T) {
	a := New(&echoProvider{reply: "**BUY**"})
	plans := plan.NewManager(&fixedPlanClient{plan: "pro"}, nil)

	r := chi.NewRouter()
	RegisterRoutes(r, a, plans)

	body := strings.NewReader(`{"message":"hi","html":true}`)
	req := httptest.NewRequest("POST", "/api/chat", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Reply != "**BUY**" || resp.SessionID == "" {
		t.Errorf("unexpected response %+v", resp)
	}
	if !strings.Contains(resp.HTML, "<strong>BUY</strong>") {
		t.Errorf("markdown not rendered: %q", resp.HTML)
	}
}
