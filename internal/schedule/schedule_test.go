package schedule

import (
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   *Recurrence
		wantOK bool
	}{
		{name: "empty", in: "", wantOK: false},
		{name: "no time range", in: "2,4,6", wantOK: false},
		{name: "garbage", in: "garbage", wantOK: false},
		{name: "garbage with parens", in: "mon (whenever)", wantOK: false},
		{
			name:   "mon wed fri",
			in:     "2,4,6 (08:00-10:00)",
			want:   &Recurrence{Days: []int{1, 3, 5}, Start: "08:00", End: "10:00"},
			wantOK: true,
		},
		{
			name:   "sunday CN",
			in:     "CN (09:00-11:00)",
			want:   &Recurrence{Days: []int{0}, Start: "09:00", End: "11:00"},
			wantOK: true,
		},
		{
			name:   "sunday SUN lowercase",
			in:     "sun (09:00-11:00)",
			want:   &Recurrence{Days: []int{0}, Start: "09:00", End: "11:00"},
			wantOK: true,
		},
		{
			name:   "sunday as 8",
			in:     "3,5,8 (19:30-21:00)",
			want:   &Recurrence{Days: []int{0, 2, 4}, Start: "19:30", End: "21:00"},
			wantOK: true,
		},
		{
			name:   "spaces and dash padding",
			in:     "  7 ( 7:30 - 09:00 )",
			want:   &Recurrence{Days: []int{6}, Start: "7:30", End: "09:00"},
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if tt.wantOK && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRunsOn(t *testing.T) {
	rec, ok := Parse("2,4,6 (08:00-10:00)")
	if !ok {
		t.Fatal("Parse failed")
	}
	if !rec.RunsOn(time.Monday) {
		t.Error("expected class to run on Monday")
	}
	if rec.RunsOn(time.Sunday) {
		t.Error("did not expect class to run on Sunday")
	}
}

func TestEndRecur(t *testing.T) {
	if got := EndRecur("2026-01-31"); got != "2026-02-01" {
		t.Errorf("EndRecur = %q, want 2026-02-01", got)
	}
	if got := EndRecur(""); got != "" {
		t.Errorf("EndRecur(empty) = %q, want empty", got)
	}
	if got := EndRecur("not-a-date"); got != "" {
		t.Errorf("EndRecur(bad) = %q, want empty", got)
	}
}
