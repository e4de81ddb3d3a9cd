package telegram

import (
	"errors"
	"testing"
)

func TestIsPermanent(t *testing.T) {
	cases := []struct {
		err  string
		want bool
	}{
		{"Forbidden: bot was blocked by the user", true},
		{"Bad Request: chat not found", true},
		{"Forbidden: user is deactivated", true},
		{"Too Many Requests: retry after 30", false},
		{"Post \"https://api.telegram.org\": connection refused", false},
	}

	for _, tc := range cases {
		if got := isPermanent(errors.New(tc.err)); got != tc.want {
			t.Errorf("isPermanent(%q) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
