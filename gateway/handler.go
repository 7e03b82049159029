package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repronet/predict-gateway/dispatch"
	"github.com/repronet/predict-gateway/errors"
	"github.com/repronet/predict-gateway/logger"
	"github.com/repronet/predict-gateway/predict"
	"github.com/repronet/predict-gateway/server/middleware"
)

const rootGreeting = "Hello World!"

// Dispatcher runs a validated request. *dispatch.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *predict.Request) predict.Envelope
}

// Handler serves the prediction routes.
type Handler struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

// NewHandler creates a handler dispatching through d.
func NewHandler(d Dispatcher, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.WithComponent("gateway")
	}
	return &Handler{dispatcher: d, log: log}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/predict", h.PredictSingle)
	r.POST("/predict", h.PredictBatch)
}

// Root answers the plain-text greeting.
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, rootGreeting)
}

// PredictSingle handles GET /predict?input=&language=&model=&beam=.
func (h *Handler) PredictSingle(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)
	log.Info("Request query", logger.Fields("query", c.Request.URL.RawQuery))

	req, err := predict.ValidateSingle(c.Request.URL.Query())
	if err != nil {
		h.reject(c, err)
		return
	}
	log.Info("Request validated", logger.Fields(
		"input", req.Input,
		"language", req.Language,
		"model", req.Model,
		"beam", req.Beam,
	))
	h.dispatch(c, req)
}

// PredictBatch handles POST /predict with a {batch, language, model, beam}
// body.
func (h *Handler) PredictBatch(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if limit, tooLarge := middleware.IsBodyTooLarge(err); tooLarge {
			h.respond(c, predict.FromError(errors.PayloadTooLarge(limit)))
			return
		}
		log.Warn("Request body unreadable", logger.Fields("error", err.Error()))
		body = nil
	}
	log.Info("Request body", logger.Fields("bytes", len(body)))

	req, err := predict.ValidateBatch(body)
	if err != nil {
		h.reject(c, err)
		return
	}
	log.Info("Request validated", logger.Fields(
		"language", req.Language,
		"model", req.Model,
		"beam", req.Beam,
		"batch_len", len(req.Batch),
	))
	h.dispatch(c, req)
}

func (h *Handler) reject(c *gin.Context, err error) {
	env := predict.FromError(err)
	h.log.WithContext(c.Request.Context()).Info("Request rejected", logger.Fields(
		"status", env.Status,
		"message", env.Message,
	))
	h.respond(c, env)
}

func (h *Handler) dispatch(c *gin.Context, req *predict.Request) {
	env := h.dispatcher.Dispatch(c.Request.Context(), req)
	n := h.respond(c, env)
	h.log.WithContext(c.Request.Context()).Info("Output", logger.Fields(
		"model", req.Model,
		"status", env.Status,
		"bytes", n,
	))
}

// respond writes env with HTTP status equal to env.Status and returns the
// body size.
func (h *Handler) respond(c *gin.Context, env predict.Envelope) int {
	status := dispatch.StatusOf(env)
	env.Status = status
	body, err := json.Marshal(env)
	if err != nil {
		h.log.Error("Envelope encoding failed", logger.Fields("error", err.Error()))
		env = predict.FromError(errors.Internal(err))
		status = env.Status
		body, _ = json.Marshal(env)
	}
	c.Data(status, "application/json; charset=utf-8", body)
	return len(body)
}
