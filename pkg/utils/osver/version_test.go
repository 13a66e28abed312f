package osver

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "12.0", want: Version{12, 0, 0}},
		{in: "14.5.1", want: Version{14, 5, 1}},
		{in: " 13.2 ", want: Version{13, 2, 0}},
		{in: "14", wantErr: true},
		{in: "14.a", wantErr: true},
		{in: "1.2.3.4", wantErr: true},
		{in: "14.-1", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b Version
		want int
	}{
		{Version{12, 0, 0}, Version{12, 0, 0}, 0},
		{Version{11, 7, 10}, Version{12, 0, 0}, -1},
		{Version{14, 1, 0}, Version{14, 0, 9}, 1},
		{Version{14, 1, 2}, Version{14, 1, 3}, -1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := tt.a.AtLeast(tt.b); got != (tt.want >= 0) {
			t.Errorf("%v.AtLeast(%v) = %t", tt.a, tt.b, got)
		}
	}
}
