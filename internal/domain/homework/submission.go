// Package homework содержит доменную модель проверки домашних работ:
// запись о работе, таблицу вердиктов, форматирование уведомлений
// и проверку структуры ответа API.
package homework

import "fmt"

// ══════════════════════════════════════════════════════════════════════════════
// STATUS & VERDICTS
// ══════════════════════════════════════════════════════════════════════════════

// Status - статус проверки работы ревьюером.
type Status string

const (
	// StatusApproved - работа принята.
	StatusApproved Status = "approved"

	// StatusReviewing - работа на проверке.
	StatusReviewing Status = "reviewing"

	// StatusRejected - у ревьюера есть замечания.
	StatusRejected Status = "rejected"
)

// verdicts - таблица вердиктов. Не изменяется во время работы процесса.
var verdicts = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Verdict возвращает текст вердикта для статуса.
func (s Status) Verdict() (string, bool) {
	v, ok := verdicts[s]
	return v, ok
}

// String возвращает строковое представление статуса.
func (s Status) String() string {
	return string(s)
}

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

const (
	// NoUpdatesMessage отправляется, если в окне запроса нет работ.
	NoUpdatesMessage = "Обновлений по домашкам пока нет :("

	// GenericErrorMessage отправляется один раз на серию неудачных циклов.
	GenericErrorMessage = "Ошибка! Попробуйте позже."

	statusChangedFormat = "Изменился статус проверки работы \"%s\". %s"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION
// ══════════════════════════════════════════════════════════════════════════════

// Submission - запись о сданной работе из ответа API.
// Живёт только в пределах одного цикла опроса.
type Submission struct {
	ID              int64
	Name            string
	Status          Status
	LessonName      string
	ReviewerComment string
	DateUpdated     string
}

// FormatStatus строит текст уведомления об изменении статуса работы.
// Отсутствующие и пустые поля - ошибка схемы; статус вне таблицы - UnknownVerdictError.
func FormatStatus(s Submission) (string, error) {
	if s.Name == "" {
		return "", &SchemaError{Op: "format status", Reason: "homework_name is missing"}
	}
	if s.Status == "" {
		return "", &SchemaError{Op: "format status", Reason: "status is missing"}
	}

	verdict, ok := s.Status.Verdict()
	if !ok {
		return "", &UnknownVerdictError{Status: string(s.Status)}
	}

	return fmt.Sprintf(statusChangedFormat, s.Name, verdict), nil
}

// MessageFor возвращает сообщение для списка работ текущего цикла:
// статус первой (самой свежей) работы либо NoUpdatesMessage.
func MessageFor(submissions []Submission) (string, error) {
	if len(submissions) == 0 {
		return NoUpdatesMessage, nil
	}
	return FormatStatus(submissions[0])
}
