// Package chat orchestrates one conversational turn: intent extraction,
// candidate retrieval, response generation and follow-up suggestions.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domchat "github.com/kailas-cloud/smartshopper/internal/domain/chat"
	"github.com/kailas-cloud/smartshopper/internal/domain/product"
	"github.com/kailas-cloud/smartshopper/internal/domain/search/request"
	"github.com/kailas-cloud/smartshopper/internal/metrics"
	"github.com/kailas-cloud/smartshopper/internal/repository/cache"
)

// Answering stages besides provider names.
const (
	stageFallback = "fallback"
	stageApology  = "apology"
)

// Service is stateless between turns apart from the external session store.
type Service struct {
	search   Searcher
	gen      Generator
	sessions SessionStore
	logger   *zap.Logger
}

// New creates a chat service. gen and sessions may be nil.
func New(search Searcher, gen Generator, sessions SessionStore, logger *zap.Logger) *Service {
	return &Service{search: search, gen: gen, sessions: sessions, logger: logger}
}

// Chat answers one turn. It never fails: any error inside the turn yields
// the fixed apology reply.
func (s *Service) Chat(ctx context.Context, turn domchat.Turn) (reply domchat.Reply) {
	sessionID := turn.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Chat turn panicked", zap.Any("panic", r), zap.String("session_id", sessionID))
			reply = apology(sessionID)
		}
	}()

	reply, err := s.respond(ctx, turn, sessionID)
	if err != nil {
		s.logger.Error("Chat turn failed", zap.String("session_id", sessionID), zap.Error(err))
		metrics.CascadeOutcomeTotal.WithLabelValues(stageApology).Inc()
		return apology(sessionID)
	}
	return reply
}

func (s *Service) respond(ctx context.Context, turn domchat.Turn, sessionID string) (domchat.Reply, error) {
	terms := ExtractTerms(turn.Message)

	products := []product.Product{}
	if terms != "" {
		d, err := request.New(request.Params{
			Query:       terms,
			InStockOnly: true,
			Page:        1,
			PageSize:    domchat.MaxRecommendations,
		})
		if err != nil {
			return domchat.Reply{}, fmt.Errorf("build descriptor: %w", err)
		}
		set, err := s.search.Search(ctx, d)
		if err != nil {
			return domchat.Reply{}, fmt.Errorf("search %q: %w", terms, err)
		}
		products = set.Products
		if len(products) > domchat.MaxRecommendations {
			products = products[:domchat.MaxRecommendations]
		}
	}

	text, stage := s.generate(ctx, turn.Message, products)
	if err := ctx.Err(); err != nil {
		return domchat.Reply{}, err
	}
	metrics.CascadeOutcomeTotal.WithLabelValues(stage).Inc()

	convo := s.loadContext(ctx, sessionID)
	for k, v := range turn.Context {
		convo[k] = v
	}
	convo[domchat.ContextSearchTerms] = terms
	s.saveContext(ctx, sessionID, convo)

	s.logger.Debug("Chat turn answered",
		zap.String("session_id", sessionID),
		zap.String("search_terms", terms),
		zap.Int("products", len(products)),
		zap.String("stage", stage),
	)

	return domchat.Reply{
		Response:    text,
		Products:    products,
		Suggestions: Suggestions(products),
		Context:     convo,
		SessionID:   sessionID,
	}, nil
}

// generate runs the provider cascade and falls back to the rule-based reply.
func (s *Service) generate(ctx context.Context, message string, products []product.Product) (string, string) {
	if s.gen == nil {
		return Fallback(message, products), stageFallback
	}
	ans, err := s.gen.Generate(ctx, BuildPrompt(message, products))
	if err != nil || strings.TrimSpace(ans.Text) == "" {
		s.logger.Info("Generation unavailable, using rule-based reply", zap.Error(err))
		return Fallback(message, products), stageFallback
	}
	return ans.Text, ans.Provider
}

func (s *Service) loadContext(ctx context.Context, sessionID string) map[string]any {
	out := map[string]any{}
	if s.sessions == nil {
		return out
	}
	data, ok := s.sessions.Get(ctx, sessionKey(sessionID))
	if !ok {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn("Discarding unreadable session context", zap.String("session_id", sessionID), zap.Error(err))
		return map[string]any{}
	}
	return out
}

func (s *Service) saveContext(ctx context.Context, sessionID string, convo map[string]any) {
	if s.sessions == nil {
		return
	}
	data, err := json.Marshal(convo)
	if err != nil {
		s.logger.Warn("Session context not serializable", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	s.sessions.Set(ctx, sessionKey(sessionID), data, 0)
}

func sessionKey(sessionID string) string {
	key, _ := cache.DeriveKey(cache.NamespaceChatContext, map[string]string{"session_id": sessionID})
	return key
}

func apology(sessionID string) domchat.Reply {
	return domchat.Reply{
		Response:    ApologyResponse,
		Products:    []product.Product{},
		Suggestions: ApologySuggestions(),
		SessionID:   sessionID,
	}
}
