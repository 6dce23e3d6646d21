package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quickseats/booking/internal/reservation"
)

func TestWriteReservationErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &reservation.ValidationError{Reason: "no seats requested"}, http.StatusBadRequest},
		{"conflict", &reservation.ConflictError{SeatIDs: []uint64{4, 7}}, http.StatusConflict},
		{"hold expired", reservation.ErrHoldExpired, http.StatusGone},
		{"show missing", reservation.ErrShowNotFound, http.StatusNotFound},
		{"booking missing", reservation.ErrBookingNotFound, http.StatusNotFound},
		{"store down", errors.New("dial tcp: connection refused"), http.StatusBadGateway},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := writeReservationError(c, tc.err); err != nil {
				t.Fatalf("writeReservationError returned %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestRowLabel(t *testing.T) {
	cases := []struct {
		row  uint32
		want string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
	}
	for _, tc := range cases {
		if got := rowLabel(tc.row); got != tc.want {
			t.Errorf("rowLabel(%d) = %q, want %q", tc.row, got, tc.want)
		}
	}
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return e.NewContext(req, httptest.NewRecorder())
	}

	c := newCtx()
	c.Set("user_id", float64(42)) // JSON numbers decode as float64
	id, err := getUserID(c)
	if err != nil || id != 42 {
		t.Fatalf("float64 claim: got (%d, %v), want (42, nil)", id, err)
	}

	c = newCtx()
	c.Set("user_id", "17")
	id, err = getUserID(c)
	if err != nil || id != 17 {
		t.Fatalf("string claim: got (%d, %v), want (17, nil)", id, err)
	}

	c = newCtx()
	if _, err := getUserID(c); err == nil {
		t.Fatal("missing claim: want error")
	}
}
