package service

import "testing"

func TestParseExtraction_PlainJSON(t *testing.T) {
	raw := `{"intent":"fitment_by_car","brand":"Audi","model":"A4","year":"2021","version":"2.0 TDI","wheel":"Makhai","diameter":"19"}`

	extraction := ParseExtraction(raw)
	if extraction.Intent != IntentFitmentByCar {
		t.Fatalf("unexpected intent: %q", extraction.Intent)
	}
	if extraction.Slots.Brand != "Audi" || extraction.Slots.Model != "A4" {
		t.Fatalf("unexpected car slots: %+v", extraction.Slots)
	}
	if extraction.Slots.Year != 2021 {
		t.Fatalf("expected year 2021, got %d", extraction.Slots.Year)
	}
	if extraction.Slots.Wheel != "Makhai" || extraction.Slots.Diameter != "19" {
		t.Fatalf("unexpected wheel slots: %+v", extraction.Slots)
	}
}

func TestParseExtraction_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"intent\":\"wheel_info\",\"wheel\":\"Istar\"}\n```"

	extraction := ParseExtraction(raw)
	if extraction.Intent != IntentWheelInfo || extraction.Slots.Wheel != "Istar" {
		t.Fatalf("fenced JSON not parsed: %+v", extraction)
	}
}

func TestParseExtraction_CutsToOutermostBraces(t *testing.T) {
	raw := `Sure, here is the analysis: {"intent":"general_info"} hope that helps`

	extraction := ParseExtraction(raw)
	if extraction.Intent != IntentGeneralInfo {
		t.Fatalf("prose-wrapped JSON not parsed: %+v", extraction)
	}
}

func TestParseExtraction_GarbageDegradesToOther(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken", `{"intent": }`} {
		extraction := ParseExtraction(raw)
		if extraction.Intent != IntentOther {
			t.Fatalf("ParseExtraction(%q) intent = %q, want other", raw, extraction.Intent)
		}
	}
}

func TestParseExtraction_UnknownIntentMapsToOther(t *testing.T) {
	extraction := ParseExtraction(`{"intent":"buy_wheels_now"}`)
	if extraction.Intent != IntentOther {
		t.Fatalf("unknown intent not mapped to other: %q", extraction.Intent)
	}
}

func TestParseExtraction_NumericAndNullFields(t *testing.T) {
	extraction := ParseExtraction(`{"intent":"fitment_by_wheel","year":2019,"diameter":19,"wheel":"Makhai","brand":null}`)
	if extraction.Slots.Year != 2019 {
		t.Fatalf("numeric year not accepted: %d", extraction.Slots.Year)
	}
	if extraction.Slots.Diameter != "19" {
		t.Fatalf("numeric diameter not accepted: %q", extraction.Slots.Diameter)
	}
	if extraction.Slots.Brand != "" {
		t.Fatalf("null brand not empty: %q", extraction.Slots.Brand)
	}
}

func TestNormalizeYear(t *testing.T) {
	cases := map[string]int{
		"2021":          2021,
		"my 2019 car":   2019,
		"1997":          1997,
		"19":            0,
		"20019":         0,
		"":              0,
		"model year 03": 0,
	}
	for input, want := range cases {
		if got := normalizeYear(input); got != want {
			t.Fatalf("normalizeYear(%q) = %d, want %d", input, got, want)
		}
	}
}
