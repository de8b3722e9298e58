package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/replyloop-ai/messenger-platform/internal/llm"
	"github.com/replyloop-ai/messenger-platform/internal/model"
	"github.com/replyloop-ai/messenger-platform/pkg/logger"
)

type fakePageStore struct {
	binding *model.PageBinding
	err     error
}

func (s *fakePageStore) GetActiveBinding(ctx context.Context, pageID string) (*model.PageBinding, error) {
	return s.binding, s.err
}

type fakeRuleStore struct {
	rules []model.KeywordRule
	err   error
}

func (s *fakeRuleStore) GetActiveRules(ctx context.Context, pageID string) ([]model.KeywordRule, error) {
	return s.rules, s.err
}

type fakeAIConfigStore struct {
	cfg *model.AIProviderConfig
	err error
}

func (s *fakeAIConfigStore) GetActiveConfig(ctx context.Context, pageID string) (*model.AIProviderConfig, error) {
	return s.cfg, s.err
}

type fakeHistoryStore struct {
	records []*model.HistoryRecord
	err     error
}

func (s *fakeHistoryStore) Append(ctx context.Context, rec *model.HistoryRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

type sendCall struct {
	token       string
	recipientID string
	text        string
}

type fakeGateway struct {
	calls []sendCall
	err   error
}

func (g *fakeGateway) SendText(ctx context.Context, pageAccessToken, recipientID, text string) (bool, error) {
	g.calls = append(g.calls, sendCall{token: pageAccessToken, recipientID: recipientID, text: text})
	if g.err != nil {
		return false, g.err
	}
	return true, nil
}

type fakePublisher struct {
	records []*model.HistoryRecord
}

func (p *fakePublisher) PublishExchange(ctx context.Context, rec *model.HistoryRecord) error {
	p.records = append(p.records, rec)
	return nil
}

type fakeLLMClient struct {
	content string
	err     error
}

func (c *fakeLLMClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &llm.CompletionResponse{Content: c.content, Model: req.Model}, nil
}

func (c *fakeLLMClient) Name() string { return "fake" }

type slowLLMClient struct{}

func (c *slowLLMClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	select {
	case <-time.After(5 * time.Second):
		return &llm.CompletionResponse{Content: "too late"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *slowLLMClient) Name() string { return "slow" }

func testBinding() *model.PageBinding {
	return &model.PageBinding{
		ID:          1,
		TenantID:    "tenant-1",
		PageID:      "page-1",
		AccessToken: "token-abc",
		Active:      true,
	}
}

func testEvent() model.MessageEvent {
	return model.MessageEvent{
		PageID:     "page-1",
		SenderID:   "sender-9",
		Text:       "bonjour, vos horaires ?",
		ReceivedAt: time.Now(),
	}
}

func newTestResolver(pages *fakePageStore, rules *fakeRuleStore, cfgs *fakeAIConfigStore, history *fakeHistoryStore, gw *fakeGateway, pub ExchangePublisher) *Resolver {
	return NewResolver(pages, rules, cfgs, history, gw, pub, time.Second, logger.NewNop())
}

func TestResolver_KeywordMatchDeliversAndRecords(t *testing.T) {
	t.Parallel()

	pages := &fakePageStore{binding: testBinding()}
	rules := &fakeRuleStore{rules: []model.KeywordRule{
		{ID: 1, Keyword: "horaires", Reply: "Ouvert 9h-18h.", Priority: 1},
	}}
	history := &fakeHistoryStore{}
	gw := &fakeGateway{}
	r := newTestResolver(pages, rules, &fakeAIConfigStore{}, history, gw, nil)

	r.Process(context.Background(), testEvent())

	if len(gw.calls) != 1 {
		t.Fatalf("expected one delivery, got %d", len(gw.calls))
	}
	if gw.calls[0].text != "Ouvert 9h-18h." {
		t.Fatalf("unexpected reply text: %q", gw.calls[0].text)
	}
	if gw.calls[0].token != "token-abc" {
		t.Fatalf("unexpected access token: %q", gw.calls[0].token)
	}
	if gw.calls[0].recipientID != "sender-9" {
		t.Fatalf("unexpected recipient: %q", gw.calls[0].recipientID)
	}

	if len(history.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(history.records))
	}
	rec := history.records[0]
	if rec.ResponseType != model.ResponseKeyword {
		t.Fatalf("unexpected response type: %s", rec.ResponseType)
	}
	if rec.ResponseText == nil || *rec.ResponseText != "Ouvert 9h-18h." {
		t.Fatalf("unexpected response text: %v", rec.ResponseText)
	}
	if rec.TenantID != "tenant-1" || rec.PageID != "page-1" {
		t.Fatalf("unexpected record scope: %s/%s", rec.TenantID, rec.PageID)
	}
	if rec.ID == "" {
		t.Fatal("expected record ID to be set")
	}
}

func TestResolver_AIFallbackWhenNoKeywordMatches(t *testing.T) {
	t.Parallel()

	pages := &fakePageStore{binding: testBinding()}
	rules := &fakeRuleStore{rules: []model.KeywordRule{
		{ID: 1, Keyword: "prix", Reply: "Tarifs.", Priority: 1},
	}}
	cfgs := &fakeAIConfigStore{cfg: &model.AIProviderConfig{
		Provider: model.ProviderOpenAI, Model: "gpt-4o-mini", Temperature: 0.7, Active: true,
	}}
	history := &fakeHistoryStore{}
	gw := &fakeGateway{}
	r := newTestResolver(pages, rules, cfgs, history, gw, nil)
	r.SetClientFactory(func(cfg *model.AIProviderConfig) (llm.Client, error) {
		return &fakeLLMClient{content: "Nous sommes ouverts de 9h a 18h."}, nil
	})

	r.Process(context.Background(), testEvent())

	if len(gw.calls) != 1 {
		t.Fatalf("expected one delivery, got %d", len(gw.calls))
	}
	if gw.calls[0].text != "Nous sommes ouverts de 9h a 18h." {
		t.Fatalf("unexpected reply text: %q", gw.calls[0].text)
	}
	if len(history.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(history.records))
	}
	if history.records[0].ResponseType != model.ResponseAI {
		t.Fatalf("unexpected response type: %s", history.records[0].ResponseType)
	}
}

func TestResolver_NoRulesNoConfigRecordsNone(t *testing.T) {
	t.Parallel()

	pages := &fakePageStore{binding: testBinding()}
	history := &fakeHistoryStore{}
	gw := &fakeGateway{}
	r := newTestResolver(pages, &fakeRuleStore{}, &fakeAIConfigStore{}, history, gw, nil)

	r.Process(context.Background(), testEvent())

	if len(gw.calls) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(gw.calls))
	}
	if len(history.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(history.records))
	}
	rec := history.records[0]
	if rec.ResponseType != model.ResponseNone {
		t.Fatalf("unexpected response type: %s", rec.ResponseType)
	}
	if rec.ResponseText != nil {
		t.Fatalf("expected nil response text, got %q", *rec.ResponseText)
	}
}

func TestResolver_ProviderFailureSendsFallback(t *testing.T) {
	t.Parallel()

	pages := &fakePageStore{binding: testBinding()}
	cfgs := &fakeAIConfigStore{cfg: &model.AIProviderConfig{
		Provider: model.ProviderAnthropic, Model: "claude-3-5-haiku-latest", Active: true,
	}}
	history := &fakeHistoryStore{}
	gw := &fakeGateway{}
	r := newTestResolver(pages, &fakeRuleStore{}, cfgs, history, gw, nil)
	r.SetClientFactory(func(cfg *model.AIProviderConfig) (llm.Client, error) {
		return &fakeLLMClient{err: errors.New("upstream 500")}, nil
	})

	r.Process(context.Background(), testEvent())

	if len(gw.calls) != 1 {
		t.Fatalf("expected one delivery, got %d", len(gw.calls))
	}
	if gw.calls[0].text != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", gw.calls[0].text)
	}
	if len(history.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(history.records))
	}
	if history.records[0].ResponseType != model.ResponseAI {
		t.Fatalf("fallback must still record as ai, got %s", history.records[0].ResponseType)
	}
}

func TestResolver_ProviderTimeoutSendsFallback(t *testing.T) {
	t.Parallel()

	pages := &fakePageStore{binding: testBinding()}
	cfgs := &fakeAIConfigStore{cfg: &model.AIProviderConfig{
		Provider: model.ProviderOpenAI, Model: "gpt-4o-mini", Active: true,
	}}
	history := &fakeHistoryStore{}
	gw := &fakeGateway{}
	r := NewResolver(pages, &fakeRuleStore{}, cfgs, history, gw, nil, 20*time.Millisecond, logger.NewNop())
	r.SetClientFactory(func(cfg *model.AIProviderConfig) (llm.Client, error) {
		return &slowLLMClient{}, nil
	})

	r.Process(context.Background(), testEvent())

	if len(gw.calls) != 1 {
		t.Fatalf("expected one delivery, got %d", len(gw.calls))
	}
	if gw.calls[0].text != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", gw.calls[0].text)
	}
}

func TestResolver_UnboundPageIsSilentNoOp(t *testing.T) {
	t.Parallel()

	pages := &fakePageStore{binding: nil}
	history := &fakeHistoryStore{}
	gw := &fakeGateway{}
	r := newTestResolver(pages, &fakeRuleStore{}, &fakeAIConfigStore{}, history, gw, nil)

	r.Process(context.Background(), testEvent())

	if len(gw.calls) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(gw.calls))
	}
	if len(history.records) != 0 {
		t.Fatalf("expected no history records, got %d", len(history.records))
	}
}

func TestResolver_DeliveryFailureStillRecords(t *testing.T) {
	t.Parallel()

	pages := &fakePageStore{binding: testBinding()}
	rules := &fakeRuleStore{rules: []model.KeywordRule{
		{ID: 1, Keyword: "horaires", Reply: "Ouvert 9h-18h.", Priority: 1},
	}}
	history := &fakeHistoryStore{}
	gw := &fakeGateway{err: errors.New("status 403: token expired")}
	r := newTestResolver(pages, rules, &fakeAIConfigStore{}, history, gw, nil)

	r.Process(context.Background(), testEvent())

	if len(history.records) != 1 {
		t.Fatalf("expected one history record despite failed delivery, got %d", len(history.records))
	}
	if history.records[0].ResponseType != model.ResponseKeyword {
		t.Fatalf("unexpected response type: %s", history.records[0].ResponseType)
	}
}

func TestResolver_PublishesExchangeWhenConfigured(t *testing.T) {
	t.Parallel()

	pages := &fakePageStore{binding: testBinding()}
	rules := &fakeRuleStore{rules: []model.KeywordRule{
		{ID: 1, Keyword: "horaires", Reply: "Ouvert 9h-18h.", Priority: 1},
	}}
	history := &fakeHistoryStore{}
	pub := &fakePublisher{}
	r := newTestResolver(pages, rules, &fakeAIConfigStore{}, history, &fakeGateway{}, pub)

	r.Process(context.Background(), testEvent())

	if len(pub.records) != 1 {
		t.Fatalf("expected one published exchange, got %d", len(pub.records))
	}
	if pub.records[0].ID != history.records[0].ID {
		t.Fatal("published record must be the stored record")
	}
}

func TestResolver_ClientFactoryErrorSendsFallback(t *testing.T) {
	t.Parallel()

	pages := &fakePageStore{binding: testBinding()}
	cfgs := &fakeAIConfigStore{cfg: &model.AIProviderConfig{
		Provider: model.Provider("unknown"), Model: "m", Active: true,
	}}
	history := &fakeHistoryStore{}
	gw := &fakeGateway{}
	r := newTestResolver(pages, &fakeRuleStore{}, cfgs, history, gw, nil)

	r.Process(context.Background(), testEvent())

	if len(gw.calls) != 1 {
		t.Fatalf("expected one delivery, got %d", len(gw.calls))
	}
	if gw.calls[0].text != FallbackReply {
		t.Fatalf("expected fallback reply, got %q", gw.calls[0].text)
	}
}
