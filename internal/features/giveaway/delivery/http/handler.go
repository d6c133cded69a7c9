package http

import (
	"net/http"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/common/middleware"
	"giveaway-settlement/internal/features/giveaway/mapper"
	"giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/giveaway/models/dto"
	giveawayservice "giveaway-settlement/internal/features/giveaway/service"
	quizservice "giveaway-settlement/internal/features/quiz/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GiveawayHandler struct {
	service giveawayservice.GiveawayService
	quiz    quizservice.QuizService
	logger  *zap.Logger
}

func NewGiveawayHandler(service giveawayservice.GiveawayService, quiz quizservice.QuizService, logger *zap.Logger) *GiveawayHandler {
	return &GiveawayHandler{
		service: service,
		quiz:    quiz,
		logger:  logger,
	}
}

func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup) {
	wrap := middleware.HandleErrorWrapper(h.logger)

	giveaways := router.Group("/giveaways")
	{
		giveaways.POST("", middleware.RequireUser(h.logger), wrap(h.create))
		giveaways.GET("/:id", wrap(h.getByID))
		giveaways.POST("/:id/entry", wrap(h.entry))
		giveaways.POST("/:id/join", wrap(h.join))
		giveaways.POST("/:id/quiz", wrap(h.submitQuiz))
	}
}

func (h *GiveawayHandler) create(c *gin.Context) {
	var input dto.CreateGiveawayRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	userID, _ := middleware.UserID(c)
	g, err := h.service.Create(c.Request.Context(), userID, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, mapper.ToGiveawayResponse(g, 0))
}

func (h *GiveawayHandler) getByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GiveawayHandler) entry(c *gin.Context) {
	var input dto.EntryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("password", err.Error()))
		return
	}

	if err := h.service.CheckEntryPassword(c.Request.Context(), c.Param("id"), input.Password); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// join creates the participant. For quiz giveaways the quiz is issued first, so a quiz provider
// outage rejects the join instead of leaving a participant who can never become eligible. A quiz
// participant that is still ineligible can call join again to get a new quiz.
func (h *GiveawayHandler) join(c *gin.Context) {
	var input dto.JoinRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	ctx := c.Request.Context()
	giveawayID := c.Param("id")

	g, err := h.service.GetByID(ctx, giveawayID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := dto.JoinResponse{}
	if g.IsQuiz && g.Status == models.GiveawayStatusActive {
		sessionID := input.SessionID
		if sessionID == "" {
			sessionID = uuid.New().String()
		}
		q, err := h.quiz.Issue(ctx, sessionID, giveawayID, input.AccountNumber, g.QuizCategory)
		if err != nil {
			_ = c.Error(err)
			return
		}
		resp.SessionID = sessionID
		resp.Quiz = q
	}

	userID, _ := middleware.UserID(c)
	participant, _, err := h.service.Join(ctx, userID, giveawayID, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	resp.Participant = participant

	c.JSON(http.StatusCreated, resp)
}

func (h *GiveawayHandler) submitQuiz(c *gin.Context) {
	var input dto.SubmitQuizRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	result, err := h.quiz.Submit(c.Request.Context(), c.Param("id"), input.SessionID, input.QuizID, input.Answers)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
