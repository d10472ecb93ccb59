package homework

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestFormatStatus_KnownStatuses(t *testing.T) {
	for status, verdict := range verdicts {
		msg, err := FormatStatus(Submission{Name: "proj1", Status: status})
		require.NoError(t, err)
		assert.Contains(t, msg, "proj1")
		assert.Contains(t, msg, verdict)
	}
}

func TestFormatStatus_Approved(t *testing.T) {
	msg, err := FormatStatus(Submission{Name: "proj1", Status: StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, `Изменился статус проверки работы "proj1". Работа проверена: ревьюеру всё понравилось. Ура!`, msg)
}

func TestFormatStatus_UnknownStatus(t *testing.T) {
	_, err := FormatStatus(Submission{Name: "proj1", Status: "graded"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownVerdict))

	var verdictErr *UnknownVerdictError
	require.True(t, errors.As(err, &verdictErr))
	assert.Equal(t, "graded", verdictErr.Status)
}

func TestFormatStatus_MissingFields(t *testing.T) {
	_, err := FormatStatus(Submission{Status: StatusApproved})
	assert.True(t, errors.Is(err, ErrSchema))

	_, err = FormatStatus(Submission{Name: "proj1"})
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestFormatStatus_WhitespaceNameIsPresent(t *testing.T) {
	msg, err := FormatStatus(Submission{Name: "   ", Status: StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, `Изменился статус проверки работы "   ". Работа проверена: ревьюеру всё понравилось. Ура!`, msg)
}

func TestExtractSubmissions_NonStringStatusIsUnknownVerdict(t *testing.T) {
	subs, err := ExtractSubmissions(decode(t, `{"homeworks": [{"homework_name": "p", "status": 5}]}`))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, Status("5"), subs[0].Status)

	_, err = MessageFor(subs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownVerdict), "got %v", err)
	assert.False(t, errors.Is(err, ErrSchema))
	assert.Equal(t, "unknown_verdict", KindOf(err))
}

func TestExtractSubmissions_NullFieldsAreMissing(t *testing.T) {
	subs, err := ExtractSubmissions(decode(t, `{"homeworks": [{"homework_name": "p", "status": null}]}`))
	require.NoError(t, err)

	_, err = MessageFor(subs)
	assert.True(t, errors.Is(err, ErrSchema), "got %v", err)
}

func TestMessageFor_EmptyList(t *testing.T) {
	msg, err := MessageFor(nil)
	require.NoError(t, err)
	assert.Equal(t, "Обновлений по домашкам пока нет :(", msg)
}

func TestMessageFor_UsesFirstSubmission(t *testing.T) {
	msg, err := MessageFor([]Submission{
		{Name: "latest", Status: StatusRejected},
		{Name: "older", Status: "not-a-status"},
	})
	require.NoError(t, err)
	assert.Contains(t, msg, "latest")
	assert.Contains(t, msg, "у ревьюера есть замечания")
}

func TestExtractSubmissions(t *testing.T) {
	payload := decode(t, `{
		"homeworks": [
			{"id": 124, "homework_name": "proj1", "status": "approved", "reviewer_comment": "ok", "lesson_name": "Final"},
			{"homework_name": "proj0", "status": "reviewing"}
		],
		"current_date": 1581604970
	}`)

	resp, err := ExtractResponse(payload)
	require.NoError(t, err)
	require.Len(t, resp.Submissions, 2)
	assert.Equal(t, int64(1581604970), resp.CurrentDate)

	first := resp.Submissions[0]
	assert.Equal(t, int64(124), first.ID)
	assert.Equal(t, "proj1", first.Name)
	assert.Equal(t, StatusApproved, first.Status)
	assert.Equal(t, "ok", first.ReviewerComment)
	assert.Equal(t, "Final", first.LessonName)
	assert.Equal(t, "proj0", resp.Submissions[1].Name)
}

func TestExtractSubmissions_Empty(t *testing.T) {
	subs, err := ExtractSubmissions(decode(t, `{"homeworks": []}`))
	require.NoError(t, err)
	assert.Empty(t, subs)

	msg, err := MessageFor(subs)
	require.NoError(t, err)
	assert.Equal(t, NoUpdatesMessage, msg)
}

func TestExtractSubmissions_SchemaErrors(t *testing.T) {
	cases := map[string]string{
		"array payload":    `[{"homeworks": []}]`,
		"string payload":   `"homeworks"`,
		"null payload":     `null`,
		"missing key":      `{"current_date": 1}`,
		"homeworks object": `{"homeworks": {"homework_name": "proj1"}}`,
		"homeworks string": `{"homeworks": "proj1"}`,
		"homeworks null":   `{"homeworks": null}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractSubmissions(decode(t, raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchema), "got %v", err)
		})
	}
}

func TestExtractSubmissions_NonObjectEntryFailsAtFormatting(t *testing.T) {
	subs, err := ExtractSubmissions(decode(t, `{"homeworks": ["proj1"]}`))
	require.NoError(t, err)
	require.Len(t, subs, 1)

	_, err = MessageFor(subs)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "transport", KindOf(&TransportError{Endpoint: "x", Err: errors.New("dial")}))
	assert.Equal(t, "http_status", KindOf(&HTTPStatusError{Endpoint: "x", StatusCode: 503}))
	assert.Equal(t, "schema", KindOf(&SchemaError{Op: "x", Reason: "y"}))
	assert.Equal(t, "unknown_verdict", KindOf(&UnknownVerdictError{Status: "x"}))
	assert.Equal(t, "delivery", KindOf(&DeliveryError{ChatID: "1", Err: errors.New("blocked")}))
	assert.Equal(t, "other", KindOf(errors.New("boom")))
	assert.Equal(t, "", KindOf(nil))
}

func TestHTTPStatusError_Message(t *testing.T) {
	assert.Contains(t, (&HTTPStatusError{Endpoint: "e", StatusCode: 503}).Error(), "server-side")
	assert.Contains(t, (&HTTPStatusError{Endpoint: "e", StatusCode: 401}).Error(), "client-side")
}
