package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseValidateGteOrDefault(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	testCases := []struct {
		name         string
		query        string
		expected     int32
		expectedOK   bool
		expectedCode int
	}{
		{name: "Absent - default", query: "", expected: 10, expectedOK: true, expectedCode: http.StatusOK},
		{name: "Empty - default", query: "?take=", expected: 10, expectedOK: true, expectedCode: http.StatusOK},
		{name: "Zero", query: "?take=0", expected: 0, expectedOK: true, expectedCode: http.StatusOK},
		{name: "Positive", query: "?take=25", expected: 25, expectedOK: true, expectedCode: http.StatusOK},
		{name: "Negative", query: "?take=-1", expectedOK: false, expectedCode: http.StatusBadRequest},
		{name: "Not a number", query: "?take=ten", expectedOK: false, expectedCode: http.StatusBadRequest},
		{name: "Overflow", query: "?take=99999999999", expectedOK: false, expectedCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodGet, "/items"+tc.query, nil)
			rr := httptest.NewRecorder()
			// when
			value, ok := ParseValidateGteOrDefault(req, rr, logger, "take", 0, 10)
			// then
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedOK {
				assert.Equal(t, tc.expected, value)
			}
		})
	}
}

func Test_ParseValidateGt(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	testCases := []struct {
		name         string
		query        string
		expectedOK   bool
		expectedBody string
	}{
		{name: "Valid", query: "?quantity=3", expectedOK: true},
		{name: "Missing", query: "", expectedOK: false, expectedBody: `{"error":"quantity url parameter is required"}`},
		{name: "Zero", query: "?quantity=0", expectedOK: false, expectedBody: `{"error":"Invalid quantity number: 0"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodPost, "/buy"+tc.query, nil)
			rr := httptest.NewRecorder()
			// when
			_, ok := ParseValidateGt(req, rr, logger, "quantity", 0)
			// then
			assert.Equal(t, tc.expectedOK, ok)
			if !tc.expectedOK {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
		})
	}
}
