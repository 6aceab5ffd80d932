package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ecopredict/middleware"
	"ecopredict/models"
	"ecopredict/services"
	"ecopredict/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Evaluator - операции оценки, доступные контроллеру
type Evaluator interface {
	Evaluate(ctx context.Context, req models.SolvencyRequest) (*services.EvaluationOutcome, error)
	Recent(ctx context.Context, n int) ([]models.HistoryEntry, error)
}

// verifyRequestDTO - тело запроса POST /verifier.
// Указатели отличают отсутствующее поле от нулевого значения.
type verifyRequestDTO struct {
	ClientID        *string  `json:"client_id" validate:"required"`
	RequestedAmount *float64 `json:"requested_amount" validate:"required"`
	AnnualRate      *float64 `json:"annual_rate" validate:"required"`
	TermMonths      *int     `json:"term_months" validate:"required"`
}

func (dto verifyRequestDTO) toRequest() models.SolvencyRequest {
	return models.SolvencyRequest{
		ClientID:        *dto.ClientID,
		RequestedAmount: *dto.RequestedAmount,
		AnnualRate:      *dto.AnnualRate,
		TermMonths:      *dto.TermMonths,
	}
}

// SolvencyController обрабатывает запросы оценки платежеспособности
type SolvencyController struct {
	evaluator   Evaluator
	recentLimit int
	validator   *validator.Validate
}

// NewSolvencyController создает новый экземпляр SolvencyController
func NewSolvencyController(evaluator Evaluator, recentLimit int) *SolvencyController {
	return &SolvencyController{
		evaluator:   evaluator,
		recentLimit: recentLimit,
		validator:   services.NewValidator(),
	}
}

// Home возвращает статус сервиса
func (c *SolvencyController) Home(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"service": "ECO PREDICT",
		"status":  "ok",
	})
}

// Verify обрабатывает запрос на оценку платежеспособности клиента
func (c *SolvencyController) Verify(ctx *gin.Context) {
	var dto verifyRequestDTO
	if err := ctx.ShouldBindJSON(&dto); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fmt.Errorf("%w: malformed body: %v", services.ErrInvalidRequest, err).Error(),
		})
		return
	}

	if err := c.validateRequest(dto); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	outcome, err := c.evaluator.Evaluate(ctx.Request.Context(), dto.toRequest())
	if err != nil {
		if errors.Is(err, services.ErrInvalidRequest) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if outcome.NotFound() {
		ctx.JSON(http.StatusOK, gin.H{"message": outcome.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": outcome.Results})
}

// History возвращает последние записи журнала оценок
func (c *SolvencyController) History(ctx *gin.Context) {
	entries, err := c.evaluator.Recent(ctx.Request.Context(), c.recentLimit)
	if err != nil {
		if errors.Is(err, services.ErrHistoryNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "history not found"})
			return
		}
		ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"history": entries})
}

// validateRequest валидирует DTO и возвращает ошибки валидации
func (c *SolvencyController) validateRequest(dto interface{}) error {
	return services.ValidateStruct(c.validator, dto)
}

// NewRouter собирает gin-маршрутизатор публичного API
func NewRouter(controller *SolvencyController, limiter *utils.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORSMiddleware(),
		middleware.RateLimit(limiter),
	)

	r.GET("/", controller.Home)
	r.POST("/verifier", controller.Verify)
	r.GET("/historique", controller.History)

	return r
}
