package homework

import (
	"encoding/json"
	"fmt"
)

// Response - проверенный ответ API со списком работ.
type Response struct {
	Submissions []Submission

	// CurrentDate - отметка времени сервера (Unix, секунды), если API её вернул.
	// Используется только для логов: окно запроса от неё не зависит.
	CurrentDate int64
}

// ExtractSubmissions проверяет структуру ответа API и возвращает список работ
// в исходном порядке. Пустой список допустим.
func ExtractSubmissions(payload any) ([]Submission, error) {
	resp, err := ExtractResponse(payload)
	if err != nil {
		return nil, err
	}
	return resp.Submissions, nil
}

// ExtractResponse делает то же, что ExtractSubmissions, и дополнительно
// извлекает current_date.
func ExtractResponse(payload any) (Response, error) {
	const op = "check response"

	object, ok := payload.(map[string]any)
	if !ok {
		return Response{}, &SchemaError{Op: op, Reason: fmt.Sprintf("payload is %s, not an object", jsonKind(payload))}
	}

	raw, ok := object["homeworks"]
	if !ok {
		return Response{}, &SchemaError{Op: op, Reason: "key homeworks is missing"}
	}

	items, ok := raw.([]any)
	if !ok {
		return Response{}, &SchemaError{Op: op, Reason: fmt.Sprintf("homeworks is %s, not an array", jsonKind(raw))}
	}

	resp := Response{Submissions: make([]Submission, 0, len(items))}
	for _, item := range items {
		resp.Submissions = append(resp.Submissions, submissionFromJSON(item))
	}
	if ts, ok := asInt64(object["current_date"]); ok {
		resp.CurrentDate = ts
	}

	return resp, nil
}

// submissionFromJSON переносит известные поля записи в Submission.
// Записи, не являющиеся объектом, дают пустую Submission: её отвергнет FormatStatus.
func submissionFromJSON(item any) Submission {
	fields, ok := item.(map[string]any)
	if !ok {
		return Submission{}
	}

	s := Submission{
		Name:            asText(fields["homework_name"]),
		Status:          Status(asText(fields["status"])),
		LessonName:      asString(fields["lesson_name"]),
		ReviewerComment: asString(fields["reviewer_comment"]),
		DateUpdated:     asString(fields["date_updated"]),
	}
	if id, ok := asInt64(fields["id"]); ok {
		s.ID = id
	}
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asText приводит присутствующее значение любого типа к строке,
// чтобы нестроковый статус дошёл до таблицы вердиктов. null даёт "".
func asText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case float64, json.Number:
		return "a number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
