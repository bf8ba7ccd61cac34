package media

import "testing"

func TestParseMediaType(t *testing.T) {
	tests := []struct {
		input  string
		want   MediaType
		wantOK bool
	}{
		{"movie", MediaTypeMovie, true},
		{"Movies", MediaTypeMovie, true},
		{"MOVIE", MediaTypeMovie, true},
		{"tv", MediaTypeTV, true},
		{"TV", MediaTypeTV, true},
		{"series", MediaTypeNone, false},
		{"", MediaTypeNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseMediaType(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseMediaType(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMediaType_DisplayName(t *testing.T) {
	if got := MediaTypeMovie.DisplayName(); got != "Movie" {
		t.Errorf("DisplayName() = %q, want Movie", got)
	}
	if got := MediaTypeTV.DisplayName(); got != "TV" {
		t.Errorf("DisplayName() = %q, want TV", got)
	}
}
