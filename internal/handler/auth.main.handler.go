package handler

import (
	"errors"
	"log"
	"net/http"

	"identity-service/internal/usecase"
	"identity-service/pkg/response"
	"identity-service/pkg/xerrors"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"service": "identity", "state": "ok"})
}

// writeError maps domain errors onto HTTP statuses. Every reset ticket
// failure collapses to one generic message so a caller cannot probe whether
// a ticket exists, is expired or was already used.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrInvalidEmailFormat),
		errors.Is(err, xerrors.ErrInvalidMobileFormat),
		errors.Is(err, xerrors.ErrWeakPassword):
		response.Error(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, xerrors.ErrInvalidOTP):
		response.Error(w, http.StatusBadRequest, "Invalid or expired OTP")

	case errors.Is(err, xerrors.ErrTicketNotFound),
		errors.Is(err, xerrors.ErrTicketAlreadyUsed),
		errors.Is(err, xerrors.ErrTicketExpired):
		response.Error(w, http.StatusBadRequest, "Invalid or expired reset ticket")

	case errors.Is(err, xerrors.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid mobile or password")

	case errors.Is(err, xerrors.ErrInvalidProviderToken),
		errors.Is(err, xerrors.ErrNonceMismatch):
		response.Error(w, http.StatusUnauthorized, "Invalid identity token")

	case errors.Is(err, xerrors.ErrAccountNotFound):
		response.Error(w, http.StatusNotFound, "Account not found")

	case errors.Is(err, xerrors.ErrEmailAlreadyInUse),
		errors.Is(err, xerrors.ErrMobileAlreadyInUse):
		response.Error(w, http.StatusConflict, err.Error())

	case errors.Is(err, xerrors.ErrChannelUnavailable):
		response.Error(w, http.StatusBadGateway, "Verification channel unavailable")

	default:
		log.Printf("[Handler] internal error: %v", err)
		response.Error(w, http.StatusInternalServerError, "Something went wrong")
	}
}
