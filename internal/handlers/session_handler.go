package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ai-interviewer/internal/services"
)

type SessionHandler struct {
	interviewService services.InterviewService
}

func NewSessionHandler(interviewService services.InterviewService) *SessionHandler {
	return &SessionHandler{
		interviewService: interviewService,
	}
}

func (h *SessionHandler) HandleGetSession(c *fiber.Ctx) error {
	session, ok := h.interviewService.GetSession(c.Params("id"))
	if !ok {
		return detail(c, fiber.StatusNotFound, "Session not found")
	}

	return c.JSON(session)
}
