package service

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/studybuddyhq/studybuddy/pkg/agent"
	"github.com/studybuddyhq/studybuddy/pkg/config"
	"github.com/studybuddyhq/studybuddy/pkg/logger"
	"github.com/studybuddyhq/studybuddy/pkg/memory"
	"github.com/studybuddyhq/studybuddy/pkg/providers"
	"github.com/studybuddyhq/studybuddy/pkg/tools"
)

// Service wires the orchestrator, tool registry, and memory store into
// the operations callers use.
type Service struct {
	cfg          *config.Config
	orchestrator *agent.Orchestrator
	urls         *agent.URLTracker
	store        memory.Store
	sessions     *sessionManager
	entropy      *ulid.MonotonicEntropy
}

// Option overrides a constructed dependency, mainly for tests.
type Option func(*overrides)

type overrides struct {
	provider providers.LLMProvider
	store    memory.Store
	registry *tools.ToolRegistry
}

func WithProvider(p providers.LLMProvider) Option {
	return func(o *overrides) { o.provider = p }
}

func WithStore(s memory.Store) Option {
	return func(o *overrides) { o.store = s }
}

func WithRegistry(r *tools.ToolRegistry) Option {
	return func(o *overrides) { o.registry = r }
}

// New builds a fully wired service from configuration. The store backend
// and relevance scorer come from config; every enabled tool is
// registered.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	var ov overrides
	for _, opt := range opts {
		opt(&ov)
	}

	provider := ov.provider
	if provider == nil {
		var err error
		provider, err = providers.CreateProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("create provider: %w", err)
		}
	}

	store := ov.store
	if store == nil {
		var err error
		store, err = openStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	registry := ov.registry
	if registry == nil {
		registry = tools.NewToolRegistry()
		if cfg.Tools.Wikipedia.Enabled {
			registry.Register(tools.NewWikipediaTool(tools.WikipediaToolOptions{
				MaxResults: cfg.Tools.Wikipedia.MaxResults,
				MaxChars:   cfg.Tools.Wikipedia.MaxChars,
			}))
		}
		if cfg.Tools.Arxiv.Enabled {
			registry.Register(tools.NewArxivTool(tools.ArxivToolOptions{
				MaxResults: cfg.Tools.Arxiv.MaxResults,
				MaxChars:   cfg.Tools.Arxiv.MaxChars,
			}))
		}
		if cfg.Tools.WebSearch.Enabled {
			registry.Register(tools.NewWebSearchTool(tools.WebSearchToolOptions{
				MaxResults: cfg.Tools.WebSearch.MaxResults,
			}))
		}
		if cfg.Tools.Extract.Enabled {
			registry.Register(tools.NewExtractURLTool(tools.ExtractURLToolOptions{
				MaxChars: cfg.Tools.Extract.MaxChars,
			}))
		}
	}

	urls := agent.NewURLTracker()
	orchestrator := agent.NewOrchestrator(agent.OrchestratorOptions{
		Provider:      provider,
		Registry:      registry,
		URLs:          urls,
		Model:         cfg.Agents.Model,
		MaxTokens:     cfg.Agents.MaxTokens,
		Temperature:   cfg.Agents.Temperature,
		MaxToolPasses: cfg.Agents.MaxToolPasses,
	})

	memConfig := memory.Config{
		MainCapacity:       cfg.Memory.MainCapacity,
		AttentionSinkSize:  cfg.Memory.AttentionSinkSize,
		RecencyWeight:      cfg.Memory.RecencyWeight,
		RelevanceThreshold: cfg.Memory.RelevanceThreshold,
	}
	newScorer := scorerFactory(cfg)

	return &Service{
		cfg:          cfg,
		orchestrator: orchestrator,
		urls:         urls,
		store:        store,
		sessions:     newSessionManager(store, memConfig, newScorer),
		entropy:      ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

func openStore(cfg *config.Config) (memory.Store, error) {
	switch cfg.Memory.StoreBackend {
	case "sqlite":
		return memory.NewSQLiteStore(filepath.Join(cfg.MemoryDir(), "memories.db"))
	case "", "file":
		return memory.NewFileStore(cfg.MemoryDir())
	default:
		return nil, fmt.Errorf("unknown memory store backend %q", cfg.Memory.StoreBackend)
	}
}

func scorerFactory(cfg *config.Config) func() memory.Scorer {
	if cfg.Memory.Scorer == "embedding" {
		threshold := cfg.Memory.RelevanceThreshold
		newEmbedder := memory.NewChargramEmbedder
		if cfg.Memory.Embedder == "hash" {
			newEmbedder = memory.NewHashEmbedder
		}
		return func() memory.Scorer {
			return memory.NewEmbeddingScorer(newEmbedder(), threshold)
		}
	}
	return func() memory.Scorer { return memory.KeywordScorer{} }
}

func (s *Service) Close() error {
	return s.store.Close()
}

// SearchRequest is one user turn.
type SearchRequest struct {
	Message        string
	ConversationID string
	Context        map[string]interface{}
}

// SearchResult is the structured outcome of one turn. Status is
// "success" or "error"; an error result still carries a usable Response.
type SearchResult struct {
	Status           string                `json:"status"`
	Response         string                `json:"response"`
	ConversationID   string                `json:"conversation_id"`
	MessageID        string                `json:"message_id"`
	Reasoning        []agent.ReasoningStep `json:"reasoning"`
	SearchedWebsites []string              `json:"searched_websites"`
	Error            string                `json:"error,omitempty"`
}

// Search answers one user message with memory retrieval, tool use, and
// memory writeback. Failures degrade to an error-status result; Search
// never panics and never loses the conversation id.
func (s *Service) Search(ctx context.Context, req SearchRequest) *SearchResult {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	session := s.sessions.getOrCreate(ctx, conversationID)
	session.lock()
	defer session.unlock()

	// Turn-scoped tracking resets under the session lock so a queued
	// concurrent turn cannot wipe this turn's sources mid-run.
	if s.cfg.Memory.URLTrackerScope != config.URLScopeConversation {
		s.urls.Clear(conversationID)
	}

	memoryContent := session.Memory.RetrieveRelevantContext(req.Message, 3)
	memorySummary := session.Memory.Summary()

	stateContext := map[string]interface{}{"conversation_id": conversationID}
	for k, v := range req.Context {
		stateContext[k] = v
	}

	session.Transcript = append(session.Transcript, providers.Message{Role: "user", Content: req.Message})

	state := &agent.State{
		Messages:      append([]providers.Message(nil), session.Transcript...),
		Context:       stateContext,
		Memory:        memoryContent,
		MemorySummary: memorySummary,
	}

	result, err := s.orchestrator.Run(ctx, state)
	if err != nil {
		logger.ErrorCF("service", "Search failed",
			map[string]interface{}{
				"conversation_id": conversationID,
				"error":           err.Error(),
			})
		// Keep the failed turn out of the transcript so a retry starts
		// clean.
		session.Transcript = session.Transcript[:len(session.Transcript)-1]
		return &SearchResult{
			Status:           "error",
			Response:         "I'm sorry, I encountered an error processing your request. Please try again.",
			ConversationID:   conversationID,
			Error:            err.Error(),
			Reasoning:        state.Reasoning,
			SearchedWebsites: s.urls.URLs(conversationID),
		}
	}

	messageID := s.newMessageID()
	session.Transcript = append(session.Transcript, providers.Message{Role: "assistant", Content: result.Response})

	session.Memory.AddExchange(req.Message, result.Response,
		map[string]interface{}{"message_id": messageID}, nil)

	s.persistMemory(ctx, conversationID, session.Memory)

	return &SearchResult{
		Status:           "success",
		Response:         result.Response,
		ConversationID:   conversationID,
		MessageID:        messageID,
		Reasoning:        result.Reasoning,
		SearchedWebsites: s.urls.URLs(conversationID),
	}
}

func (s *Service) newMessageID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *Service) persistMemory(ctx context.Context, conversationID string, mem *memory.Memory) {
	data, err := mem.Serialize()
	if err != nil {
		logger.ErrorCF("service", "Memory serialization failed",
			map[string]interface{}{
				"conversation_id": conversationID,
				"error":           err.Error(),
			})
		return
	}
	if err := s.store.Put(ctx, conversationID, data); err != nil {
		logger.ErrorCF("service", "Memory persist failed",
			map[string]interface{}{
				"conversation_id": conversationID,
				"error":           err.Error(),
			})
	}
}

// MemoryStats summarizes one conversation's memory tiers.
type MemoryStats struct {
	ConversationID   string                 `json:"conversation_id"`
	MainMemorySize   int                    `json:"main_memory_size"`
	ExternalTopics   []string               `json:"external_topics"`
	AttentionSinks   int                    `json:"attention_sinks"`
	TotalExchanges   int                    `json:"total_exchanges"`
	Pages            int                    `json:"pages"`
	Retrievals       int                    `json:"retrievals"`
	UserProfile      map[string]interface{} `json:"user_profile"`
	SearchedWebsites []string               `json:"searched_websites"`
}

// GetMemoryStats reports tier sizes and profile for a conversation, or
// an error when the conversation is unknown.
func (s *Service) GetMemoryStats(ctx context.Context, conversationID string) (*MemoryStats, error) {
	session, ok := s.sessions.peek(conversationID)
	if !ok {
		data, err := s.store.Get(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, err)
		}
		mem, err := memory.Deserialize(data, nil)
		if err != nil {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, err)
		}
		return s.statsFromMemory(conversationID, mem), nil
	}

	session.lock()
	defer session.unlock()
	return s.statsFromMemory(conversationID, session.Memory), nil
}

func (s *Service) statsFromMemory(conversationID string, mem *memory.Memory) *MemoryStats {
	topics := make([]string, 0, len(mem.External))
	for topic := range mem.External {
		topics = append(topics, topic)
	}
	return &MemoryStats{
		ConversationID:   conversationID,
		MainMemorySize:   len(mem.Main),
		ExternalTopics:   topics,
		AttentionSinks:   len(mem.AttentionSinks),
		TotalExchanges:   mem.Stats.TotalExchanges,
		Pages:            mem.Stats.Pages,
		Retrievals:       mem.Stats.Retrievals,
		UserProfile:      mem.UserProfile,
		SearchedWebsites: s.urls.URLs(conversationID),
	}
}

// StoreFeedback appends a rating for a previously returned message to
// the conversation's memory and persists it.
func (s *Service) StoreFeedback(ctx context.Context, conversationID, messageID string, rating int, feedbackText string) error {
	session := s.sessions.getOrCreate(ctx, conversationID)
	session.lock()
	defer session.unlock()

	session.Memory.Feedback = append(session.Memory.Feedback, memory.FeedbackEntry{
		MessageID:    messageID,
		Rating:       rating,
		FeedbackText: feedbackText,
		Timestamp:    time.Now(),
	})

	data, err := session.Memory.Serialize()
	if err != nil {
		return fmt.Errorf("serialize memory: %w", err)
	}
	if err := s.store.Put(ctx, conversationID, data); err != nil {
		return fmt.Errorf("store feedback: %w", err)
	}

	logger.InfoCF("service", "Feedback stored",
		map[string]interface{}{
			"conversation_id": conversationID,
			"message_id":      messageID,
			"rating":          rating,
		})
	return nil
}

// CleanupOldMemories deletes stored memories whose last update is older
// than maxAge, evicting their cached sessions too. Returns the number
// removed.
func (s *Service) CleanupOldMemories(ctx context.Context, maxAge time.Duration) (int, error) {
	infos, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list memories: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, info := range infos {
		if !info.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, info.Key); err != nil {
			logger.WarnCF("service", "Memory cleanup delete failed",
				map[string]interface{}{
					"conversation_id": info.Key,
					"error":           err.Error(),
				})
			continue
		}
		s.sessions.evict(info.Key)
		s.urls.Clear(info.Key)
		removed++
	}

	logger.InfoCF("service", "Memory cleanup finished",
		map[string]interface{}{
			"checked": len(infos),
			"removed": removed,
		})
	return removed, nil
}
