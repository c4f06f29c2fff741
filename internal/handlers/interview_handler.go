package handlers

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/ai-interviewer/internal/logger"
	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type InterviewHandler struct {
	interviewService services.InterviewService
	validate         *validator.Validate
	maxFileSize      int64
	log              logger.Logger
}

func NewInterviewHandler(
	interviewService services.InterviewService,
	maxFileSize int64,
	log logger.Logger,
) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
		validate:         validator.New(),
		maxFileSize:      maxFileSize,
		log:              log,
	}
}

// HandleAnalyzeIntro serves POST /analyze_intro.
func (h *InterviewHandler) HandleAnalyzeIntro(c *fiber.Ctx) error {
	video, err := c.FormFile("video")
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "video file is required")
	}
	if h.maxFileSize > 0 && video.Size > h.maxFileSize {
		return detail(c, fiber.StatusRequestEntityTooLarge, fmt.Sprintf("Video file too large. Max size: %d bytes", h.maxFileSize))
	}

	src, err := video.Open()
	if err != nil {
		return detail(c, fiber.StatusInternalServerError, "File upload failed")
	}
	defer src.Close()

	profile, err := h.interviewService.AnalyzeIntro(c.UserContext(), src, video.Filename)
	if err != nil {
		h.log.Error("handler", "Error in analyze_intro", map[string]interface{}{"error": err})
		return detail(c, fiber.StatusInternalServerError, "Analysis failed: "+err.Error())
	}

	return c.JSON(profile)
}

// HandleAnalyzeAnswer serves POST /analyze_answer.
func (h *InterviewHandler) HandleAnalyzeAnswer(c *fiber.Ctx) error {
	video, err := c.FormFile("video")
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "video file is required")
	}
	if h.maxFileSize > 0 && video.Size > h.maxFileSize {
		return detail(c, fiber.StatusRequestEntityTooLarge, fmt.Sprintf("Video file too large. Max size: %d bytes", h.maxFileSize))
	}

	if strings.TrimSpace(c.FormValue("question_id")) == "" {
		return detail(c, fiber.StatusUnprocessableEntity, "question_id is required")
	}

	var req models.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "question_id must be an integer")
	}
	if err := h.validate.Struct(req); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, validationMessage(err))
	}

	src, err := video.Open()
	if err != nil {
		return detail(c, fiber.StatusInternalServerError, "File upload failed")
	}
	defer src.Close()

	evaluation, err := h.interviewService.AnalyzeAnswer(c.UserContext(), req, src, video.Filename)
	if err != nil {
		h.log.Error("handler", "Error in analyze_answer", map[string]interface{}{
			"error":      err,
			"session_id": req.SessionID,
		})
		return detail(c, fiber.StatusInternalServerError, "Answer analysis failed: "+err.Error())
	}

	return c.JSON(evaluation)
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}

	var msgs []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(models.ErrorResponse{Detail: msg})
}
