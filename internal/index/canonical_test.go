package index

import (
	"testing"

	"github.com/aurami/origin/internal/family"
)

func TestPersonText(t *testing.T) {
	year := 1952
	tests := []struct {
		name   string
		person family.Person
		want   string
	}{
		{
			name: "all fields",
			person: family.Person{
				FirstName: "Rosa", LastName: "Marchetti", Nickname: "Rosie",
				BirthYear: &year, BirthCity: "Naples",
				Notes: "Emigrated in 1970",
			},
			want: "Rosa Marchetti. also known as Rosie. born 1952. Naples. Emigrated in 1970",
		},
		{
			name:   "name only",
			person: family.Person{FirstName: "Rosa", LastName: "Marchetti"},
			want:   "Rosa Marchetti",
		},
		{
			name: "place used when city empty",
			person: family.Person{
				FirstName: "Rosa", LastName: "Marchetti", BirthPlace: "southern Italy",
			},
			want: "Rosa Marchetti. southern Italy",
		},
		{
			name: "city wins over place",
			person: family.Person{
				FirstName: "Rosa", LastName: "Marchetti",
				BirthCity: "Naples", BirthPlace: "southern Italy",
			},
			want: "Rosa Marchetti. Naples",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PersonText(&tt.person); got != tt.want {
				t.Errorf("PersonText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPersonTextDeterministic(t *testing.T) {
	year := 1910
	p := family.Person{FirstName: "Elio", LastName: "Conti", BirthYear: &year}
	first := PersonText(&p)
	for range 10 {
		if got := PersonText(&p); got != first {
			t.Fatalf("PersonText() not deterministic: %q != %q", got, first)
		}
	}
}

func TestStoryText(t *testing.T) {
	st := family.Story{Title: "The crossing", Content: "They left in spring."}
	if got, want := StoryText(&st), "The crossing. They left in spring."; got != want {
		t.Errorf("StoryText() = %q, want %q", got, want)
	}
}

func TestEventText(t *testing.T) {
	year := 1970
	e := family.Event{Title: "Emigration", EventYear: &year, Location: "Naples", Description: "By ship to New York"}
	want := "Emigration. 1970. Naples. By ship to New York"
	if got := EventText(&e); got != want {
		t.Errorf("EventText() = %q, want %q", got, want)
	}
}

func TestTokenCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"12345678", 2},
	}
	for _, tt := range tests {
		if got := TokenCount(tt.text); got != tt.want {
			t.Errorf("TokenCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
