package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ai-interviewer/internal/logger"
	"alfredoptarigan/ai-interviewer/internal/models"
)

func RegisterRoutes(app *fiber.App, interview *InterviewHandler, sessions *SessionHandler) {
	app.Get("/", HandleHealth)
	app.Post("/analyze_intro", interview.HandleAnalyzeIntro)
	app.Post("/analyze_answer", interview.HandleAnalyzeAnswer)
	app.Get("/sessions/:id", sessions.HandleGetSession)
}

func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Message: "AI Interviewer Backend is running",
		Status:  "healthy",
	})
}

const internalErrorDetail = "Internal server error"

// NewErrorHandler renders every unhandled error in the {"detail": ...} shape.
// Only *fiber.Error messages reach the client; anything else, recovered
// panics included, is logged and replaced by a fixed message.
func NewErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			return c.Status(e.Code).JSON(models.ErrorResponse{Detail: e.Message})
		}

		log.Error("handler", "Unhandled error", map[string]interface{}{
			"error":  err,
			"method": c.Method(),
			"path":   c.Path(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Detail: internalErrorDetail})
	}
}
