package http

import (
	"net/http"

	"fivebells/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

// CreateLoan books a loan and its schedule without moving money.
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req loan.CreateLoanInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return badRequest(c, err)
	}
	dto, err := h.uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Schedule(c echo.Context) error {
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return badRequest(c, err)
	}
	ps, err := h.uc.Schedule(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ps)
}

func (h *LoanHandler) UpdateTerms(c echo.Context) error {
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return badRequest(c, err)
	}
	var req loan.UpdateTermsInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.UpdateTerms(c.Request().Context(), loanID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ResetPayments(c echo.Context) error {
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return badRequest(c, err)
	}
	dto, err := h.uc.ResetPayments(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
