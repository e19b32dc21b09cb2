package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
)

func TestDecodeAttendanceShapes(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want int
	}{
		"bare array":     {`[{"id":"1","status":"PRESENT","date":"2024-03-01T08:30:00"},null,{"id":"2","status":"Late"}]`, 2},
		"results object": {`{"results":[{"id":"1","status":"absent"}],"count":1}`, 1},
		"single object":  {`{"id":"1","status":"Excused","date":"2024-03-01"}`, 1},
		"null":           {`null`, 0},
		"empty":          {``, 0},
		"empty array":    {`[]`, 0},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			records, err := DecodeAttendance([]byte(tc.raw))
			require.NoError(t, err)
			require.NotNil(t, records)
			assert.Len(t, records, tc.want)
		})
	}
}

func TestDecodeAttendanceNormalisesRecords(t *testing.T) {
	records, err := DecodeAttendance([]byte(`[{"id":"1","status":"PRESENT","date":"2024-03-01T08:30:00"}]`))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, records[0].Status)
	assert.Equal(t, "2024-03-01", records[0].Date)
}

func TestDecodeAttendanceRejectsMalformed(t *testing.T) {
	for _, raw := range []string{`42`, `"present"`, `{"results":"nope"}`, `[1,2]`, `[{"id":1}]`, `{broken`} {
		_, err := DecodeAttendance([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), raw)
		assert.Equal(t, "malformed attendance payload", appErrors.FromError(err).Message)
	}
}

func TestListAttendanceQueryAndDecode(t *testing.T) {
	srv, reqs := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"results": []map[string]string{{"id": "1", "status": "LATE"}}})
	})
	client := newTestClient(srv, &fakeSession{token: "tok"})

	records, err := client.ListAttendance(context.Background(), models.AttendanceQuery{StudentID: "s1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusLate, records[0].Status)
	assert.Equal(t, "s1", (*reqs)[0].query.Get("student_id"))
}

func TestBulkAttendanceSingleRequest(t *testing.T) {
	srv, reqs := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Attendance processed successfully. Created: 2, Updated: 0"})
	})
	client := newTestClient(srv, &fakeSession{token: "tok"})

	result, err := client.BulkAttendance(context.Background(), "sch1", map[string]models.AttendanceStatus{
		"s1": models.StatusPresent,
		"s2": models.StatusAbsent,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Message, "Created: 2")

	require.Len(t, *reqs, 1)
	assert.Equal(t, "/attendance/bulk", (*reqs)[0].path)
	var sent models.BulkAttendance
	require.NoError(t, json.Unmarshal([]byte((*reqs)[0].body), &sent))
	assert.Equal(t, "sch1", sent.ScheduleID)
	assert.Equal(t, models.StatusAbsent, sent.AttendanceData["s2"])
}
