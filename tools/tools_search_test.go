package tools

import "testing"

func TestSuggest(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"get_wether", "get_weather", true},
		{"GetWeather", "get_weather", true},
		{"Search", "search", true},
		{"serch", "search", true},
		{"delete_everything", "", false},
	}

	for _, tt := range tests {
		got, ok := Suggest(tt.name, weatherTools)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Suggest(%q) = %q, %v; erwartet %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}

	if _, ok := Suggest("x", nil); ok {
		t.Error("Ohne Tools darf es keinen Vorschlag geben")
	}
}
