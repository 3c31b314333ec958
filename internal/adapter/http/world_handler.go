package http

import (
	"net/http"

	"fivebells/internal/usecase/world"

	"github.com/labstack/echo/v4"
)

type WorldHandler struct{ uc *world.Usecase }

func NewWorldHandler(uc *world.Usecase) *WorldHandler { return &WorldHandler{uc: uc} }

type createWorldReq struct {
	Name     string `json:"name" validate:"required,max=64"`
	StepSize int    `json:"step_size" validate:"gte=0,lte=1000"`
}

func (h *WorldHandler) CreateWorld(c echo.Context) error {
	var req createWorldReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	w, err := h.uc.Create(c.Request().Context(), req.Name, req.StepSize)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *WorldHandler) GetWorld(c echo.Context) error {
	id, err := pathID(c, "world_id")
	if err != nil {
		return badRequest(c, err)
	}
	w, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

// Evaluate advances the world by its step size. A halt answers 409 with the
// reason; the cycles committed before the halt stay.
func (h *WorldHandler) Evaluate(c echo.Context) error {
	id, err := pathID(c, "world_id")
	if err != nil {
		return badRequest(c, err)
	}
	w, err := h.uc.Evaluate(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WorldHandler) Resume(c echo.Context) error {
	id, err := pathID(c, "world_id")
	if err != nil {
		return badRequest(c, err)
	}
	w, err := h.uc.Resume(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}
