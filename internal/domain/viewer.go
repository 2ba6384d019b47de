package domain

import (
	"strings"

	"github.com/google/uuid"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
)

// ViewerID — необязательная идентичность зрителя.
// Нулевое значение означает анонимного зрителя.
type ViewerID struct {
	id      uuid.UUID
	present bool
}

// Anonymous возвращает отсутствующего зрителя.
func Anonymous() ViewerID { return ViewerID{} }

// Viewer оборачивает известный идентификатор. uuid.Nil считается отсутствием зрителя.
func Viewer(id uuid.UUID) ViewerID {
	if id == uuid.Nil {
		return ViewerID{}
	}
	return ViewerID{id: id, present: true}
}

// ParseViewerID разбирает идентификатор из заголовка.
// Пустая строка — аноним, некорректный UUID — ошибка валидации.
func ParseViewerID(raw string) (ViewerID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Anonymous(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return ViewerID{}, apperrors.Validation("malformed viewer id").WithDetails(err.Error())
	}
	return Viewer(id), nil
}

func (v ViewerID) Present() bool { return v.present }

// ID возвращает идентификатор; для анонима — uuid.Nil.
func (v ViewerID) ID() uuid.UUID { return v.id }

// String возвращает пустую строку для анонимного зрителя.
func (v ViewerID) String() string {
	if !v.present {
		return ""
	}
	return v.id.String()
}

// ParseID разбирает обязательный идентификатор сущности.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid %s", field).WithDetails(field + " must be a UUID")
	}
	return id, nil
}
