package homework

import (
	"errors"
	"fmt"
	"net/http"
)

// Базовые виды ошибок цикла опроса. Проверяются через errors.Is().
var (
	// ErrTransport - запрос к API не дошёл или не вернул ответ (соединение, таймаут).
	ErrTransport = errors.New("transport failure")

	// ErrHTTPStatus - API ответил кодом, отличным от 200.
	ErrHTTPStatus = errors.New("unexpected http status")

	// ErrSchema - ответ API или запись о работе имеет неожиданную структуру.
	ErrSchema = errors.New("unexpected response schema")

	// ErrUnknownVerdict - статус работы отсутствует в таблице вердиктов.
	ErrUnknownVerdict = errors.New("unknown homework status")

	// ErrDelivery - бот не смог доставить сообщение в чат.
	ErrDelivery = errors.New("notification delivery failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// TYPED ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// TransportError описывает сбой транспорта при обращении к API.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is позволяет сопоставлять ошибку с ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// HTTPStatusError описывает ответ API с неуспешным кодом.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	side := "unexpected response"
	switch {
	case e.StatusCode >= http.StatusInternalServerError:
		side = "server-side error"
	case e.StatusCode >= http.StatusBadRequest:
		side = "client-side error"
	}
	return fmt.Sprintf("endpoint %s returned status %d (%s)", e.Endpoint, e.StatusCode, side)
}

// Is позволяет сопоставлять ошибку с ErrHTTPStatus.
func (e *HTTPStatusError) Is(target error) bool { return target == ErrHTTPStatus }

// SchemaError описывает нарушение ожидаемой структуры данных.
type SchemaError struct {
	Op     string // операция, обнаружившая нарушение
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Is позволяет сопоставлять ошибку с ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// UnknownVerdictError возвращается, если статуса нет в таблице вердиктов.
type UnknownVerdictError struct {
	Status string
}

func (e *UnknownVerdictError) Error() string {
	return fmt.Sprintf("status %q is not in the verdict table", e.Status)
}

// Is позволяет сопоставлять ошибку с ErrUnknownVerdict.
func (e *UnknownVerdictError) Is(target error) bool { return target == ErrUnknownVerdict }

// DeliveryError оборачивает сбой отправки сообщения ботом.
type DeliveryError struct {
	ChatID string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver message to chat %s: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Is позволяет сопоставлять ошибку с ErrDelivery.
func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// KindOf возвращает короткое имя вида ошибки для логов и метрик.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrUnknownVerdict):
		return "unknown_verdict"
	case errors.Is(err, ErrDelivery):
		return "delivery"
	default:
		return "other"
	}
}
