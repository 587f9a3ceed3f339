// handlers — REST-обработчики dramaturgy-service поверх сервисного слоя.
// Каждый хендлер достаёт актора из контекста (middleware.AuthBearer),
// декодирует вход строгим JSON-декодером и отдаёт ошибки через apierrors.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/the-dramaturgy/dramaturgy-service/internal/service"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument — локальная ошибка парсинга входа -> 400.
func errInvalidArgument() error {
	return fmt.Errorf("transport: %w", service.ErrInvalidArgument)
}

// pathUUID извлекает UUID из именованного сегмента пути chi.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errInvalidArgument()
	}
	return id, nil
}

// pagination читает limit/offset из query; пустые значения — нули,
// дефолты подставляет сервисный слой.
func pagination(r *http.Request) (limit, offset int32, err error) {
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		v, perr := strconv.ParseInt(raw, 10, 32)
		if perr != nil || v < 0 {
			return 0, 0, errInvalidArgument()
		}
		limit = int32(v)
	}

	if raw := q.Get("offset"); raw != "" {
		v, perr := strconv.ParseInt(raw, 10, 32)
		if perr != nil || v < 0 {
			return 0, 0, errInvalidArgument()
		}
		offset = int32(v)
	}

	return limit, offset, nil
}
