package extract

import "testing"

func TestParseStrategic(t *testing.T) {
	t.Run("long goal label with description label", func(t *testing.T) {
		block := `5.1.7 Strateginis viešasis pirkimas
Strateginio viešojo pirkimo tikslas: Žaliasis viešasis pirkimas
Aprašymas: Perkamos mažiau taršios transporto priemonės.
5.1.8 Kita informacija
`
		sp := parseStrategic(block)
		if sp == nil {
			t.Fatal("parseStrategic returned nil")
		}
		if sp.Goal != "Žaliasis viešasis pirkimas" {
			t.Errorf("goal = %q", sp.Goal)
		}
		if sp.Description != "Perkamos mažiau taršios transporto priemonės." {
			t.Errorf("description = %q", sp.Description)
		}
	})

	t.Run("long goal label with trailing paragraph", func(t *testing.T) {
		block := `5.1.7 Strateginis viešasis pirkimas
Strateginio viešojo pirkimo tikslas: Žaliasis viešasis pirkimas

Perkamos mažiau taršios transporto priemonės.
5.1.8 Kita informacija
`
		sp := parseStrategic(block)
		if sp == nil {
			t.Fatal("parseStrategic returned nil")
		}
		if sp.Description != "Perkamos mažiau taršios transporto priemonės." {
			t.Errorf("description = %q", sp.Description)
		}
	})

	t.Run("short goal label with trailing paragraph", func(t *testing.T) {
		block := `5.1.7 Strateginis viešasis pirkimas
Tikslas: Socialinis viešasis pirkimas

Sutartis vykdoma pasitelkiant socialines įmones.
5.1.8 Kita informacija
`
		sp := parseStrategic(block)
		if sp == nil {
			t.Fatal("parseStrategic returned nil")
		}
		if sp.Goal != "Socialinis viešasis pirkimas" {
			t.Errorf("goal = %q", sp.Goal)
		}
		if sp.Description != "Sutartis vykdoma pasitelkiant socialines įmones." {
			t.Errorf("description = %q", sp.Description)
		}
	})

	t.Run("no strategic section", func(t *testing.T) {
		if sp := parseStrategic("5.1.1 Pirkimo aprašymas\nNieko strateginio čia nėra.\n"); sp != nil {
			t.Fatalf("got %+v, want nil", sp)
		}
	})
}
