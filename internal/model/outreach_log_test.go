package model

import "testing"

func TestFollowUpTouch(t *testing.T) {
	cases := []struct {
		priorTouches int
		want         TouchType
	}{
		{1, TouchFollowUp1},
		{2, TouchFollowUp2},
		{3, TouchFollowUp3},
		{0, TouchFollowUp1},
		{-1, TouchFollowUp1},
		{4, TouchFollowUp3},
		{9, TouchFollowUp3},
	}

	for _, tc := range cases {
		if got := FollowUpTouch(tc.priorTouches); got != tc.want {
			t.Errorf("FollowUpTouch(%d) = %s, want %s", tc.priorTouches, got, tc.want)
		}
	}
}

func TestIsTouch(t *testing.T) {
	touches := []TouchType{TouchInitial, TouchFollowUp1, TouchFollowUp2, TouchFollowUp3}
	for _, touch := range touches {
		if !touch.IsTouch() {
			t.Errorf("%s must count as a touch", touch)
		}
	}

	events := []TouchType{EventDelivered, EventOpened, EventClicked, EventBounced, EventComplained}
	for _, event := range events {
		if event.IsTouch() {
			t.Errorf("%s must not count as a touch", event)
		}
	}
}
