// Package handlers implements the facade's HTTP surface, per SPEC_FULL.md
// §4.11: POST /v1/runs, GET /v1/runs/:id, GET /v1/runs/:id/evaluation, and
// POST /v1/batches. Grounded on the teacher's fiber handler shape (parse,
// delegate to a service, map errors to status codes).
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nexabus/evsim/internal/service/runs"
)

// RunsHandler wires /v1/runs and /v1/batches to a runs.Service and an
// optional batch publisher.
type RunsHandler struct {
	service *runs.Service
	batch   runs.BatchPublisher
}

// NewRunsHandler builds a RunsHandler. batch may be nil, in which case
// SubmitBatch is rejected with 503.
func NewRunsHandler(service *runs.Service, batch runs.BatchPublisher) *RunsHandler {
	return &RunsHandler{service: service, batch: batch}
}

// SubmitRun handles POST /v1/runs.
func (h *RunsHandler) SubmitRun(c *fiber.Ctx) error {
	var req runs.CaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	id := h.service.Submit(req)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": id, "status": runs.StatusRunning})
}

// GetRun handles GET /v1/runs/:id.
func (h *RunsHandler) GetRun(c *fiber.Ctx) error {
	run, ok := h.service.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
	}
	return c.JSON(run)
}

// GetEvaluation handles GET /v1/runs/:id/evaluation.
func (h *RunsHandler) GetEvaluation(c *fiber.Ctx) error {
	ev, err := h.service.Evaluation(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(ev)
}

// SubmitBatch handles POST /v1/batches: a list of cases dispatched onto the
// batch work queue rather than run inline.
func (h *RunsHandler) SubmitBatch(c *fiber.Ctx) error {
	if h.batch == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "batch queue not configured"})
	}

	var req struct {
		Cases []runs.CaseRequest `json:"cases"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	accepted, err := runs.SubmitBatch(h.batch, req.Cases)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(), "accepted": accepted,
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": accepted})
}
