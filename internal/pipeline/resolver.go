package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/replyloop-ai/messenger-platform/internal/llm"
	"github.com/replyloop-ai/messenger-platform/internal/model"
	"github.com/replyloop-ai/messenger-platform/pkg/logger"
	"github.com/replyloop-ai/messenger-platform/pkg/metrics"
)

// FallbackReply is sent when the configured AI provider fails or times out.
const FallbackReply = "Sorry, I can't answer right now. Please try again in a moment."

// PageStore resolves active page bindings.
type PageStore interface {
	GetActiveBinding(ctx context.Context, pageID string) (*model.PageBinding, error)
}

// RuleStore loads a page's active keyword rules in evaluation order.
type RuleStore interface {
	GetActiveRules(ctx context.Context, pageID string) ([]model.KeywordRule, error)
}

// AIConfigStore loads a page's active AI provider configuration.
type AIConfigStore interface {
	GetActiveConfig(ctx context.Context, pageID string) (*model.AIProviderConfig, error)
}

// HistoryStore appends exchange records.
type HistoryStore interface {
	Append(ctx context.Context, rec *model.HistoryRecord) error
}

// Gateway delivers reply text to the originating conversation.
type Gateway interface {
	SendText(ctx context.Context, pageAccessToken, recipientID, text string) (bool, error)
}

// ExchangePublisher fans out recorded exchanges to downstream consumers.
type ExchangePublisher interface {
	PublishExchange(ctx context.Context, rec *model.HistoryRecord) error
}

// ClientFactory builds a provider client from a page's AI configuration.
type ClientFactory func(cfg *model.AIProviderConfig) (llm.Client, error)

// Resolver decides how (or whether) to reply to one inbound message and
// carries the reply through delivery and history recording.
type Resolver struct {
	pages           PageStore
	rules           RuleStore
	aiConfigs       AIConfigStore
	history         HistoryStore
	gateway         Gateway
	publisher       ExchangePublisher
	newClient       ClientFactory
	providerTimeout time.Duration
	logger          *logger.Logger
}

// NewResolver creates a resolver. publisher may be nil when event fan-out is
// disabled.
func NewResolver(
	pages PageStore,
	rules RuleStore,
	aiConfigs AIConfigStore,
	history HistoryStore,
	gateway Gateway,
	publisher ExchangePublisher,
	providerTimeout time.Duration,
	log *logger.Logger,
) *Resolver {
	if providerTimeout <= 0 {
		providerTimeout = 30 * time.Second
	}
	return &Resolver{
		pages:           pages,
		rules:           rules,
		aiConfigs:       aiConfigs,
		history:         history,
		gateway:         gateway,
		publisher:       publisher,
		newClient:       llm.NewClient,
		providerTimeout: providerTimeout,
		logger:          log,
	}
}

// SetClientFactory overrides provider client construction. Used by tests.
func (r *Resolver) SetClientFactory(f ClientFactory) {
	r.newClient = f
}

// Process runs the full chain for one message event: resolve, deliver,
// record. Steps execute strictly in this order; failures in later steps
// never undo earlier ones.
func (r *Resolver) Process(ctx context.Context, event model.MessageEvent) {
	binding, err := r.pages.GetActiveBinding(ctx, event.PageID)
	if err != nil {
		r.logger.Error("page binding lookup failed",
			zap.String("page_id", event.PageID),
			zap.Error(err),
		)
		return
	}
	if binding == nil {
		// Page not onboarded: silent no-op, no history.
		r.logger.Debug("ignoring message for unbound page", zap.String("page_id", event.PageID))
		return
	}

	log := r.logger.WithPage(binding.TenantID, binding.PageID)

	outcome := r.resolve(ctx, binding, event, log)
	metrics.ResolutionsTotal.WithLabelValues(binding.PageID, string(outcome.Type)).Inc()

	if outcome.Reply != "" {
		delivered, err := r.gateway.SendText(ctx, binding.AccessToken, event.SenderID, outcome.Reply)
		if !delivered {
			metrics.DeliveriesTotal.WithLabelValues("failure").Inc()
			log.Warn("delivery failed",
				zap.String("sender_id", event.SenderID),
				zap.Error(err),
			)
		} else {
			metrics.DeliveriesTotal.WithLabelValues("success").Inc()
		}
	}

	r.record(ctx, binding, event, outcome, log)
}

// resolve runs the two-tier decision: keyword rules first, AI fallback second.
func (r *Resolver) resolve(ctx context.Context, binding *model.PageBinding, event model.MessageEvent, log *logger.Logger) model.ResolutionOutcome {
	rules, err := r.rules.GetActiveRules(ctx, event.PageID)
	if err != nil {
		log.Error("rule lookup failed", zap.Error(err))
		rules = nil
	}

	if rule, ok := MatchKeyword(event.Text, rules); ok {
		return model.ResolutionOutcome{
			Reply:          rule.Reply,
			Type:           model.ResponseKeyword,
			MatchedKeyword: rule.Keyword,
		}
	}

	cfg, err := r.aiConfigs.GetActiveConfig(ctx, event.PageID)
	if err != nil {
		log.Error("ai config lookup failed", zap.Error(err))
		return model.ResolutionOutcome{Type: model.ResponseNone}
	}
	if cfg == nil {
		return model.ResolutionOutcome{Type: model.ResponseNone}
	}

	return r.complete(ctx, cfg, event.Text, log)
}

// complete invokes the provider adapter with a bounded timeout. Provider
// failures are absorbed into the fixed fallback reply; the outcome is still
// tagged as AI-generated.
func (r *Resolver) complete(ctx context.Context, cfg *model.AIProviderConfig, text string, log *logger.Logger) model.ResolutionOutcome {
	cfg.ClampTemperature()

	client, err := r.newClient(cfg)
	if err != nil {
		log.Error("provider client construction failed",
			zap.String("provider", string(cfg.Provider)),
			zap.Error(err),
		)
		return model.ResolutionOutcome{Reply: FallbackReply, Type: model.ResponseAI}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.providerTimeout)
	defer cancel()

	start := time.Now()
	resp, err := client.Complete(callCtx, &llm.CompletionRequest{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		UserMessage:  text,
		Temperature:  cfg.Temperature,
	})
	if err != nil {
		metrics.RecordProviderRequest(client.Name(), "failure", time.Since(start).Seconds())
		log.Warn("provider call failed",
			zap.String("provider", client.Name()),
			zap.Error(err),
		)
		return model.ResolutionOutcome{Reply: FallbackReply, Type: model.ResponseAI}
	}

	metrics.RecordProviderRequest(client.Name(), "success", time.Since(start).Seconds())
	return model.ResolutionOutcome{Reply: resp.Content, Type: model.ResponseAI}
}

// record appends the exchange to history and fans it out. Write failures are
// reported but never roll back the delivery that already happened.
func (r *Resolver) record(ctx context.Context, binding *model.PageBinding, event model.MessageEvent, outcome model.ResolutionOutcome, log *logger.Logger) {
	rec := &model.HistoryRecord{
		ID:           uuid.Must(uuid.NewV7()).String(),
		TenantID:     binding.TenantID,
		PageID:       binding.PageID,
		SenderID:     event.SenderID,
		MessageText:  event.Text,
		ResponseType: outcome.Type,
		CreatedAt:    time.Now(),
	}
	if outcome.Reply != "" {
		reply := outcome.Reply
		rec.ResponseText = &reply
	}

	if err := r.history.Append(ctx, rec); err != nil {
		metrics.HistoryWritesTotal.WithLabelValues("failure").Inc()
		log.Error("history append failed", zap.Error(err))
	} else {
		metrics.HistoryWritesTotal.WithLabelValues("success").Inc()
	}

	if r.publisher != nil {
		if err := r.publisher.PublishExchange(ctx, rec); err != nil {
			log.Warn("exchange publish failed", zap.Error(err))
		}
	}
}
