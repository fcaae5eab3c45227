package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sseth345/srilanka-learning-platform/internal/dto"
	"github.com/sseth345/srilanka-learning-platform/internal/service"
	"github.com/sseth345/srilanka-learning-platform/internal/utils"
)

// ExerciseHandler wires exercise authoring and submission routes.
type ExerciseHandler struct {
	exercises   service.ExerciseService
	submissions service.ExerciseSubmissionService
	logger      zerolog.Logger
}

// NewExerciseHandler constructs the handler.
func NewExerciseHandler(exercises service.ExerciseService, submissions service.ExerciseSubmissionService, logger zerolog.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		exercises:   exercises,
		submissions: submissions,
		logger:      logger.With().Str("component", "exercise_handler").Logger(),
	}
}

// Register attaches exercise endpoints. The static submission routes are registered before the
// :id routes so they are not captured as identifiers.
func (h *ExerciseHandler) Register(router fiber.Router) {
	router.Get("/submissions/me", h.mySubmissions)
	router.Get("/submissions/:submissionId", h.getSubmission)
	router.Patch("/submissions/:submissionId/grade", h.gradeSubmission)

	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Patch("/:id/publish", h.publish)
	router.Delete("/:id", h.delete)
	router.Post("/:id/submit", h.submit)
	router.Get("/:id/submissions", h.listSubmissions)
}

func (h *ExerciseHandler) list(c *fiber.Ctx) error {
	var query dto.ExerciseQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	exercises, meta, err := h.exercises.List(c.UserContext(), actorFromContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.OK(c, exercises, "exercises retrieved", meta)
}

func (h *ExerciseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	exercise, err := h.exercises.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "exercise retrieved", exercise)
}

func (h *ExerciseHandler) create(c *fiber.Ctx) error {
	var payload dto.ExerciseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	exercise, err := h.exercises.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exercise created", exercise)
}

func (h *ExerciseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ExerciseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	exercise, err := h.exercises.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "exercise updated", exercise)
}

func (h *ExerciseHandler) publish(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.PublishRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}
	if payload.Published == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "published is required")
	}

	exercise, err := h.exercises.SetPublished(c.UserContext(), actorFromContext(c), id, *payload.Published)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "exercise visibility updated", exercise)
}

func (h *ExerciseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.exercises.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "exercise deleted", fiber.Map{"id": id})
}

func (h *ExerciseHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	submission, err := h.submissions.Submit(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exercise submitted", submission)
}

func (h *ExerciseHandler) listSubmissions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.submissions.ListForExercise(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *ExerciseHandler) mySubmissions(c *fiber.Ctx) error {
	submissions, err := h.submissions.ListMine(c.UserContext(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *ExerciseHandler) getSubmission(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "submissionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.submissions.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *ExerciseHandler) gradeSubmission(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "submissionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ManualGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return invalidBody(c)
	}

	submission, err := h.submissions.Grade(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *ExerciseHandler) handleError(c *fiber.Ctx, err error) error {
	return respondError(c, h.logger, err)
}
