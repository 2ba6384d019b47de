package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
)

// Коды ошибок PostgreSQL, которые отображаются на ошибки приложения.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// mapError переводит ошибку драйвера в таксономию apperrors.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Unavailable(err, "%s", op)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return apperrors.Unavailable(err, "%s", op)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqUniqueViolation:
			return apperrors.Wrap(err, apperrors.KindConflict, "%s: duplicate %s", op, pqErr.Constraint)
		case pqErr.Code == pqForeignKeyViolation:
			return apperrors.Wrap(err, apperrors.KindNotFound, "%s: referenced entity not found", op)
		case pqErr.Code == pqCheckViolation:
			return apperrors.Wrap(err, apperrors.KindInvalidOperation, "%s: %s violated", op, pqErr.Constraint)
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "57":
			// 08 — connection exception, 57 — operator intervention (shutdown, cancel)
			return apperrors.Unavailable(err, "%s", op)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperrors.Unavailable(err, "%s", op)
	}
	return apperrors.Wrap(err, apperrors.KindInternal, "%s", op)
}

// errUnknownField — поле фильтра не соответствует ни одной колонке коллекции.
var errUnknownField = errors.New("unknown filter field")

func unknownField(collection, field string) error {
	return apperrors.Wrap(fmt.Errorf("%w: %s.%s", errUnknownField, collection, field), apperrors.KindInternal, "find %s", collection)
}
