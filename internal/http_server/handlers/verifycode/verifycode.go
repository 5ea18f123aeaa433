package verifycode

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "tabtab_auth/internal/lib/api/response"
	sl "tabtab_auth/internal/lib/logger"
	"tabtab_auth/internal/mail"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type Response struct {
	resp.Response
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	mailService *mail.Mail,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verifycode.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := mailService.VerifyCode(ctx, req.Email, req.Code); err != nil {
			if errors.Is(err, mail.ErrInvalidCode) || errors.Is(err, mail.ErrEmailNotFound) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error(err.Error()))

				return
			}

			log.Error("failed to verify code", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("email verified")

		render.JSON(w, r, Response{
			Response: resp.OK(),
		})
	}
}
