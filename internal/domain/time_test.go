package domain

import (
	"errors"
	"testing"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: TimeOfDay{Hour: 9, Minute: 0}},
		{in: "23:59", want: TimeOfDay{Hour: 23, Minute: 59}},
		{in: "0:5", want: TimeOfDay{Hour: 0, Minute: 5}},
		{in: " 12:30 ", want: TimeOfDay{Hour: 12, Minute: 30}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "-1:00", wantErr: true},
		{in: "12", wantErr: true},
		{in: "12:30:00", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		if c.wantErr {
			if !errors.Is(err, ErrInvalidTime) {
				t.Errorf("ParseTimeOfDay(%q): want ErrInvalidTime, got %v", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	got := TimeOfDay{Hour: 7, Minute: 5}.String()
	if got != "07:05" {
		t.Fatalf("want 07:05, got %s", got)
	}
}
