// Package signup реализует HTTP-обработчик POST /api/signup.
//
// Handler принимает JSON {email, plan}, проверяет метод, настройки провайдера
// и поля запроса, после чего передаёт заявку сервису. Каждый исход приводится
// к единому JSON-ответу: {success, message, duplicate?, recordId?} или {error, message}.
package signup

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/waitlist/internal/http/response"
	"github.com/magabrotheeeer/waitlist/internal/lib/sl"
	"github.com/magabrotheeeer/waitlist/internal/models"
	"github.com/magabrotheeeer/waitlist/internal/provider"
	services "github.com/magabrotheeeer/waitlist/internal/services/signup"
)

const maxBodyBytes = 1 << 20

// Handler управляет HTTP-запросами на запись в лист ожидания.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис приёма заявок
	validate *validator.Validate // Валидатор email и тарифа
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	v := validator.New()
	// ошибки возможны только при пустом имени тега
	_ = v.RegisterValidation("signup_email", func(fl validator.FieldLevel) bool {
		return models.IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("signup_plan", func(fl validator.FieldLevel) bool {
		return models.Plan(fl.Field().String()).IsValid()
	})

	return &Handler{
		log:      log,
		service:  service,
		validate: v,
	}
}

// ServeHTTP godoc
// @Summary Записаться в лист ожидания
// @Description Передаёт email и тариф провайдеру. Повторная запись того же адреса возвращает success=true и duplicate=true.
// @Tags Waitlist
// @Accept  json
// @Produce  json
// @Param request body models.SignupRequest true "Email и тариф"
// @Success 200 {object} response.Success "Заявка принята"
// @Failure 400 {object} response.ErrorResponse "MissingFields, InvalidEmail, InvalidPlan или InvalidRequest"
// @Failure 405 {object} response.ErrorResponse "MethodNotAllowed"
// @Failure 500 {object} response.ErrorResponse "ConfigurationError, UpstreamError или ServerError"
// @Router /api/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.waitlist.signup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		log.Warn("method not allowed", slog.String("method", r.Method))
		w.Header().Set("Allow", "POST, OPTIONS")
		response.Fail(w, r, http.StatusMethodNotAllowed, response.KindMethodNotAllowed, response.MsgMethodNotAllowed)
		return
	}

	// до разбора тела: без провайдера заявку всё равно некуда отправить
	if err := h.service.CheckConfig(); err != nil {
		response.Fail(w, r, http.StatusInternalServerError, response.KindConfigurationError, response.MsgConfiguration)
		return
	}

	var req models.SignupRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		kind, msg := decodeErrorKind(err)
		log.Warn("failed to decode request body", sl.Err(err), slog.String("kind", string(kind)))
		response.Fail(w, r, http.StatusBadRequest, kind, msg)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validation failed", sl.Err(err))
			response.Fail(w, r, http.StatusInternalServerError, response.KindServerError, response.MsgServerError)
			return
		}
		kind, msg := validationErrorKind(verrs)
		log.Info("validation failed", slog.String("kind", string(kind)), sl.Email(req.Email), slog.String("plan", req.Plan))
		response.Fail(w, r, http.StatusBadRequest, kind, msg)
		return
	}

	out, err := h.service.Signup(r.Context(), req)
	switch {
	case err == nil && out.Duplicate:
		response.OK(w, r, response.AlreadySignedUp())
	case err == nil:
		response.OK(w, r, response.SignedUp(out.Identifier))
	case errors.Is(err, provider.ErrNotConfigured):
		response.Fail(w, r, http.StatusInternalServerError, response.KindConfigurationError, response.MsgConfiguration)
	case errors.Is(err, services.ErrUpstream):
		response.Fail(w, r, http.StatusInternalServerError, response.KindUpstreamError, response.MsgUpstream)
	default:
		log.Error("signup failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.KindServerError, response.MsgServerError)
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// decodeErrorKind разбирает ошибку декодирования тела.
// Пустое тело считается отсутствием полей, поле неверного типа считается неверным значением этого поля.
func decodeErrorKind(err error) (response.Kind, string) {
	if errors.Is(err, io.EOF) {
		return response.KindMissingFields, response.MsgMissingFields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch typeErr.Field {
		case "email":
			return response.KindInvalidEmail, response.MsgInvalidEmail
		case "plan":
			return response.KindInvalidPlan, response.MsgInvalidPlan
		}
	}
	return response.KindInvalidRequest, response.MsgInvalidRequest
}

// validationErrorKind выбирает одну ошибку по приоритету:
// отсутствие любого поля, затем формат email, затем тариф.
func validationErrorKind(errs validator.ValidationErrors) (response.Kind, string) {
	invalidEmail, invalidPlan := false, false
	for _, fe := range errs {
		if fe.Tag() == "required" {
			return response.KindMissingFields, response.MsgMissingFields
		}
		switch fe.StructField() {
		case "Email":
			invalidEmail = true
		case "Plan":
			invalidPlan = true
		}
	}

	switch {
	case invalidEmail:
		return response.KindInvalidEmail, response.MsgInvalidEmail
	case invalidPlan:
		return response.KindInvalidPlan, response.MsgInvalidPlan
	default:
		return response.KindInvalidRequest, response.MsgInvalidRequest
	}
}
