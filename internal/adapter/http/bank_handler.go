package http

import (
	"net/http"

	"fivebells/internal/usecase/bank"

	"github.com/labstack/echo/v4"
)

type BankHandler struct{ svc *bank.Service }

func NewBankHandler(svc *bank.Service) *BankHandler { return &BankHandler{svc: svc} }

type transferReq struct {
	DebitAccountID  uint64 `json:"debit_account_id" validate:"required"`
	CreditAccountID uint64 `json:"credit_account_id" validate:"required,nefield=DebitAccountID"`
	Amount          int64  `json:"amount" validate:"gt=0"`
	Description     string `json:"description" validate:"max=255"`
}

func (h *BankHandler) Transfer(c echo.Context) error {
	bankID, err := pathID(c, "bank_id")
	if err != nil {
		return badRequest(c, err)
	}
	var req transferReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	t, err := h.svc.Transfer(c.Request().Context(), bankID, req.DebitAccountID, req.CreditAccountID, req.Amount, req.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

type requestLoanReq struct {
	BorrowerAccountID uint64 `json:"borrower_account_id" validate:"required"`
	Amount            int64  `json:"amount" validate:"gt=0"`
	Duration          int    `json:"duration" validate:"gt=0"`
	Frequency         int    `json:"frequency" validate:"gte=0"`
	LoanType          string `json:"loan_type" validate:"omitempty,loantype"`
}

func (h *BankHandler) RequestLoan(c echo.Context) error {
	bankID, err := pathID(c, "bank_id")
	if err != nil {
		return badRequest(c, err)
	}
	var req requestLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	l, err := h.svc.RequestLoan(c.Request().Context(), bank.LoanRequest{
		BankID:            bankID,
		BorrowerAccountID: req.BorrowerAccountID,
		Amount:            req.Amount,
		Duration:          req.Duration,
		Frequency:         req.Frequency,
		LoanType:          req.LoanType,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *BankHandler) MakePayment(c echo.Context) error {
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return badRequest(c, err)
	}
	p, err := h.svc.MakeLoanPayment(c.Request().Context(), loanID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
