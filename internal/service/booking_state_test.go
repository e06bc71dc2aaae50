package service

import (
	"errors"
	"testing"

	"flightschool_backend/internal/model"
	"flightschool_backend/internal/util"
)

// 状态机全量迁移表：五个状态两两组合
func TestCheckTransition(t *testing.T) {
	all := []model.BookingStatus{
		model.BookingRequested,
		model.BookingApproved,
		model.BookingAssigned,
		model.BookingCompleted,
		model.BookingCancelled,
	}

	allowed := map[model.BookingStatus]map[model.BookingStatus]bool{
		model.BookingRequested: {model.BookingApproved: true, model.BookingCancelled: true},
		model.BookingApproved:  {model.BookingAssigned: true, model.BookingCancelled: true},
		model.BookingAssigned:  {model.BookingCompleted: true, model.BookingCancelled: true},
		model.BookingCompleted: {},
		model.BookingCancelled: {},
	}

	for _, from := range all {
		for _, to := range all {
			err := CheckTransition(from, to)
			if allowed[from][to] {
				if err != nil {
					t.Errorf("%s -> %s should be allowed, got %v", from, to, err)
				}
				continue
			}

			var transitionErr *util.InvalidTransitionError
			if !errors.As(err, &transitionErr) {
				t.Errorf("%s -> %s should be rejected with InvalidTransitionError, got %v", from, to, err)
				continue
			}
			if transitionErr.From != string(from) || transitionErr.To != string(to) {
				t.Errorf("error should carry %s -> %s, got %s -> %s",
					from, to, transitionErr.From, transitionErr.To)
			}
		}
	}
}

func TestBookingStatusIsTerminal(t *testing.T) {
	if !model.BookingCompleted.IsTerminal() || !model.BookingCancelled.IsTerminal() {
		t.Fatal("completed and cancelled must be terminal")
	}
	for _, s := range []model.BookingStatus{model.BookingRequested, model.BookingApproved, model.BookingAssigned} {
		if s.IsTerminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}
