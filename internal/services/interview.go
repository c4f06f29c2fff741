package services

import (
	"context"
	"fmt"
	"io"

	"alfredoptarigan/ai-interviewer/internal/logger"
	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

type InterviewService interface {
	AnalyzeIntro(ctx context.Context, video io.Reader, filename string) (*models.CandidateProfile, error)
	AnalyzeAnswer(ctx context.Context, req models.AnswerRequest, video io.Reader, filename string) (*models.AnswerEvaluation, error)
	GetSession(id string) (*models.Session, bool)
}

type interviewService struct {
	sessions      repositories.SessionRepository
	staging       StagingService
	gateway       Gateway
	promptBuilder *PromptBuilder
	log           logger.Logger
}

func NewInterviewService(
	sessions repositories.SessionRepository,
	staging StagingService,
	gateway Gateway,
	log logger.Logger,
) InterviewService {
	return &interviewService{
		sessions:      sessions,
		staging:       staging,
		gateway:       gateway,
		promptBuilder: NewPromptBuilder(),
		log:           log,
	}
}

// AnalyzeIntro implements InterviewService.
func (s *interviewService) AnalyzeIntro(ctx context.Context, video io.Reader, filename string) (*models.CandidateProfile, error) {
	sessionID, err := s.sessions.Create()
	if err != nil {
		return nil, err
	}

	s.log.Info("interview", "Analyzing introduction video", map[string]interface{}{"session_id": sessionID})

	text, err := s.analyzeVideo(ctx, video, filename, sessionID, "intro", s.promptBuilder.BuildIntroPrompt())
	if err != nil {
		return nil, err
	}

	var profile models.CandidateProfile
	if err := DecodeContract(text, &profile); err != nil {
		s.log.Warn("interview", "Failed to parse Gemini JSON, using fallback profile", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return models.FallbackProfile(sessionID), nil
	}

	profile.Normalize()
	profile.SessionID = sessionID
	s.sessions.RecordProfile(sessionID, &profile)

	return &profile, nil
}

// AnalyzeAnswer implements InterviewService.
func (s *interviewService) AnalyzeAnswer(ctx context.Context, req models.AnswerRequest, video io.Reader, filename string) (*models.AnswerEvaluation, error) {
	s.log.Info("interview", "Analyzing answer", map[string]interface{}{
		"session_id":  req.SessionID,
		"question_id": req.QuestionID,
	})

	// Durable copies only go under sessions this process actually issued.
	persistAs := ""
	if _, ok := s.sessions.Get(req.SessionID); ok {
		persistAs = fmt.Sprintf("answer_%d", req.QuestionID)
	}

	text, err := s.analyzeVideo(ctx, video, filename, req.SessionID, persistAs, s.promptBuilder.BuildAnswerPrompt(req.QuestionText))
	if err != nil {
		return nil, err
	}

	var evaluation models.AnswerEvaluation
	if err := DecodeContract(text, &evaluation); err != nil {
		s.log.Warn("interview", "Failed to parse Gemini JSON, using fallback evaluation", map[string]interface{}{
			"session_id":  req.SessionID,
			"question_id": req.QuestionID,
			"error":       err.Error(),
		})
		return models.FallbackEvaluation(req.QuestionID, req.QuestionText), nil
	}

	evaluation.QuestionID = req.QuestionID
	evaluation.QuestionText = req.QuestionText
	evaluation.ClampScores()
	s.sessions.AppendAnswer(req.SessionID, &evaluation)

	return &evaluation, nil
}

// GetSession implements InterviewService.
func (s *interviewService) GetSession(id string) (*models.Session, bool) {
	return s.sessions.Get(id)
}

// analyzeVideo runs stage, persist, upload and generate for one video and
// returns the model's raw text. An empty slot skips the durable copy.
func (s *interviewService) analyzeVideo(ctx context.Context, video io.Reader, filename, sessionID, slot, prompt string) (string, error) {
	transient, err := s.staging.Stage(ctx, video, filename)
	if err != nil {
		s.log.Error("interview", "Failed to save uploaded file", map[string]interface{}{"error": err})
		return "", err
	}
	defer func() {
		if err := s.staging.Remove(transient); err != nil {
			s.log.Warn("interview", "Failed to remove staged file", map[string]interface{}{
				"path":  transient,
				"error": err.Error(),
			})
		}
	}()

	if slot != "" {
		if durable, err := s.staging.Persist(transient, sessionID, slot); err != nil {
			s.log.Warn("interview", "Failed to persist video", map[string]interface{}{
				"session_id": sessionID,
				"slot":       slot,
				"error":      err.Error(),
			})
		} else {
			s.log.Debug("interview", "Video persisted", map[string]interface{}{"path": durable})
		}
	}

	file, err := s.gateway.UploadMedia(ctx, transient)
	if err != nil {
		s.log.Error("interview", "Upload failed", map[string]interface{}{"error": err, "variant": s.gateway.Variant()})
		return "", err
	}

	resp, err := s.gateway.Generate(ctx, file, prompt)
	if err != nil {
		s.log.Error("interview", "Generation failed", map[string]interface{}{"error": err, "variant": s.gateway.Variant()})
		return "", err
	}

	text := ExtractText(resp)
	s.log.Debug("interview", "Gemini raw response", map[string]interface{}{"text": text})

	return text, nil
}
