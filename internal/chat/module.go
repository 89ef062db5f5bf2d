// Package chat provides the conversational bounded context.
package chat

import (
	"github.com/gin-gonic/gin"

	"fitment_chat_backend/internal/chat/handler"
	"fitment_chat_backend/internal/chat/prompt"
	"fitment_chat_backend/internal/chat/service"
	"fitment_chat_backend/internal/chat/session"
	"fitment_chat_backend/platform/ai/openai"
	"fitment_chat_backend/platform/config"
	"fitment_chat_backend/platform/httpkit"
	"fitment_chat_backend/platform/logger"

	"golang.org/x/time/rate"
)

// Config bundles the configuration slices the chat module consumes.
type Config interface {
	config.OpenAIConfig
	config.ChatConfig
	config.HTTPConfig
}

// Module is the chat bounded context.
type Module struct {
	handler *handler.Handler
	limiter *httpkit.IPRateLimiter
}

// NewModule wires the prompt spec, the model clients and the session store
// into the turn orchestrator.
func NewModule(cat service.Catalog, store session.Store, cfg Config, log *logger.Logger) (*Module, error) {
	spec, err := prompt.Load()
	if err != nil {
		return nil, err
	}

	client := openai.NewClient(openai.Config{
		APIKey:  cfg.GetOpenAIAPIKey(),
		BaseURL: cfg.GetOpenAIBaseURL(),
	})

	classifier := service.NewOpenAIClassifier(client, cfg.GetAnalysisModel(), spec)
	generator := service.NewOpenAIGenerator(client, cfg.GetMainModel(), spec)

	svc := service.New(cat, store, classifier, generator, spec.Persona, cfg, log)

	return &Module{
		handler: handler.New(svc),
		limiter: httpkit.NewIPRateLimiter(rate.Limit(cfg.GetChatRateLimit()), cfg.GetChatRateBurst(), log),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes mounts the chat route behind its per-IP rate limit.
func (m *Module) RegisterRoutes(r gin.IRouter) {
	r.POST("/chat", m.limiter.RateLimit(), m.handler.Chat)
}
