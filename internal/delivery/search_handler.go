package delivery

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"user-search/internal/domain"
	"user-search/internal/service"
)

// Сообщения об ошибках для клиента; подробности остаются в логах
const (
	msgInvalidBody   = "Invalid request body"
	msgSuperseded    = "Request superseded by a newer one"
	msgDataError     = "Error reading data file"
	msgShuttingDown  = "Service is shutting down"
	msgInternalError = "Internal server error"
)

// scheduler - часть service.Gate, которая нужна обработчику
type scheduler interface {
	Schedule(identity string, query domain.SearchQuery) *service.Pending
}

// SearchHandler - обработчик POST /search
type SearchHandler struct {
	gate scheduler
	log  *zap.Logger
}

// NewSearchHandler создает обработчик поверх debounce gate
func NewSearchHandler(gate scheduler, log *zap.Logger) *SearchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchHandler{
		gate: gate,
		log:  log,
	}
}

// Search - планирует поиск через debounce по IP клиента и ждет результат.
// Если тот же клиент пришел снова до срабатывания таймера, этот запрос получает 409.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	clientIP := c.IP()
	if clientIP == "" {
		return respondBadRequest(c, domain.ErrIdentityMissing.Error())
	}

	var req domain.SearchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			h.log.Info("failed to parse search request", zap.String("client", clientIP), zap.Error(err))
			return respondBadRequest(c, msgInvalidBody)
		}
	}

	query := req.Query()
	users, err := h.gate.Schedule(clientIP, query).Wait(c.UserContext())
	if err != nil {
		return h.respondSearchError(c, clientIP, err)
	}

	if users == nil {
		users = []domain.UserRecord{}
	}
	return respondOK(c, users)
}

func (h *SearchHandler) respondSearchError(c *fiber.Ctx, clientIP string, err error) error {
	switch {
	case errors.Is(err, domain.ErrSuperseded):
		return respondConflict(c, msgSuperseded)
	case errors.Is(err, domain.ErrShuttingDown):
		return respondServiceUnavailable(c, msgShuttingDown)
	case errors.Is(err, domain.ErrDataUnavailable):
		h.log.Error("search failed", zap.String("client", clientIP), zap.Error(err))
		return respondInternalError(c, msgDataError)
	}
	h.log.Error("search failed", zap.String("client", clientIP), zap.Error(err))
	return respondInternalError(c, msgInternalError)
}
