package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgUnauthorized  = "требуется аутентификация"
)

var ErrEmptyBody = errors.New("handlers: empty request body")

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeJSON декодирует тело запроса, неизвестные поля запрещены
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter) {
	RespondError(w, http.StatusUnauthorized, msgUnauthorized)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

func RespondUnprocessable(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnprocessableEntity, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// PathInt64 читает целочисленный параметр пути
func PathInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// PathWeek читает параметр пути YYYY-MM-DD (любой день нужной недели)
func PathWeek(r *http.Request, name string) (time.Time, error) {
	day, err := time.Parse(domain.DateFormat, mux.Vars(r)[name])
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}

// QueryTime читает RFC3339 параметр запроса; если параметра нет, возвращает def
func QueryTime(r *http.Request, name string, def time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// domainErrors соответствие типизированных ошибок домена HTTP статусам
var domainErrors = []struct {
	kind    error
	status  int
	message string
}{
	{domain.ErrConcurrentBooking, http.StatusConflict, "слот только что заняли, выберите другое время"},
	{domain.ErrSchedulingConflict, http.StatusConflict, "выбранное время уже занято"},
	{domain.ErrInvalidStateTransition, http.StatusConflict, "переход статуса недопустим"},
	{domain.ErrInvalidInterval, http.StatusUnprocessableEntity, "некорректный интервал доступности"},
	{domain.ErrMalformedGrid, http.StatusUnprocessableEntity, "некорректная сетка доступности"},
	{domain.ErrLeadTimeViolation, http.StatusUnprocessableEntity, "время записи вне допустимого окна"},
	{domain.ErrNotDivisibleBySessionDuration, http.StatusUnprocessableEntity, "время не кратно длительности сессии"},
	{domain.ErrPractitionerProfileIncomplete, http.StatusUnprocessableEntity, "профиль специалиста не заполнен"},
	{domain.ErrNoAvailabilityAtInstant, http.StatusUnprocessableEntity, "специалист недоступен в это время"},
	{domain.ErrPastWeek, http.StatusUnprocessableEntity, "неделя уже прошла"},
}

// RespondDomainError отвечает на типизированную ошибку домена.
// Возвращает false, если err не относится к домену.
func RespondDomainError(w http.ResponseWriter, err error) bool {
	for _, e := range domainErrors {
		if errors.Is(err, e.kind) {
			RespondError(w, e.status, e.message)
			return true
		}
	}
	return false
}
