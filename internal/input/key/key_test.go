package key

import (
	"errors"
	"testing"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyNone, "None"},
		{A, "A"},
		{Z, "Z"},
		{D7, "D7"},
		{F12, "F12"},
		{Semicolon, "Semicolon"},
		{LeftShift, "LeftShift"},
		{Shift, "Shift"},
		{Modifiers, "Modifiers"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyNamesComplete(t *testing.T) {
	for _, k := range All() {
		if _, ok := names[k]; !ok {
			t.Errorf("key %d has no name", k)
		}
		got, ok := FromName(k.String())
		if !ok || got != k {
			t.Errorf("FromName(%q) = %v, %v, want %v", k.String(), got, ok, k)
		}
	}
}

func TestFromName(t *testing.T) {
	tests := []struct {
		name   string
		want   Key
		wantOK bool
	}{
		{"J", J, true},
		{"j", J, true},
		{" Semicolon ", Semicolon, true},
		{"Oem1", Semicolon, true},
		{"OemSemicolon", Semicolon, true},
		{"LShiftKey", LeftShift, true},
		{"ShiftKey", Shift, true},
		{"Ctrl", Control, true},
		{"PgDn", PageDown, true},
		{"Menu", Alt, true},
		{"LMenu", LeftAlt, true},
		{"Apps", Apps, true},
		{"NoSuchKey", KeyNone, false},
		{"", KeyNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromName(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("FromName(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("FromName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestKeyClassification(t *testing.T) {
	tests := []struct {
		key       Key
		aggregate bool
		modifier  bool
		letter    bool
		digit     bool
		function  bool
	}{
		{A, false, false, true, false, false},
		{D3, false, false, false, true, false},
		{F24, false, false, false, false, true},
		{LeftAlt, false, true, false, false, false},
		{LeftMeta, false, false, false, false, false},
		{Shift, true, true, false, false, false},
		{Modifiers, true, true, false, false, false},
		{Semicolon, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			if got := tt.key.IsAggregate(); got != tt.aggregate {
				t.Errorf("IsAggregate() = %v, want %v", got, tt.aggregate)
			}
			if got := tt.key.IsModifier(); got != tt.modifier {
				t.Errorf("IsModifier() = %v, want %v", got, tt.modifier)
			}
			if got := tt.key.IsLetter(); got != tt.letter {
				t.Errorf("IsLetter() = %v, want %v", got, tt.letter)
			}
			if got := tt.key.IsDigit(); got != tt.digit {
				t.Errorf("IsDigit() = %v, want %v", got, tt.digit)
			}
			if got := tt.key.IsFunctionKey(); got != tt.function {
				t.Errorf("IsFunctionKey() = %v, want %v", got, tt.function)
			}
		})
	}
}

func TestKeyConstituents(t *testing.T) {
	tests := []struct {
		key  Key
		want []Key
	}{
		{Shift, []Key{LeftShift, RightShift}},
		{Control, []Key{LeftControl, RightControl}},
		{Alt, []Key{LeftAlt, RightAlt}},
		{Modifiers, []Key{LeftAlt, RightAlt, LeftShift, RightShift, LeftControl, RightControl}},
		{J, []Key{J}},
		{LeftShift, []Key{LeftShift}},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got := tt.key.Constituents()
			if len(got) != len(tt.want) {
				t.Fatalf("Constituents() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Constituents()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestKeyText(t *testing.T) {
	text, err := Semicolon.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "Oem1" {
		t.Errorf("MarshalText() = %q, want %q", text, "Oem1")
	}

	if _, err := keyCount.MarshalText(); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("MarshalText(keyCount) error = %v, want ErrUnknownKey", err)
	}

	var k Key
	if err := k.UnmarshalText([]byte("Oem1")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if k != Semicolon {
		t.Errorf("UnmarshalText(Oem1) = %v, want Semicolon", k)
	}
	if err := k.UnmarshalText([]byte("Bogus")); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("UnmarshalText(Bogus) error = %v, want ErrUnknownKey", err)
	}
}

func TestWireNameRoundTrip(t *testing.T) {
	for _, k := range All() {
		name := k.WireName()
		got, ok := FromName(name)
		if !ok || got != k {
			t.Errorf("FromName(%q) = %v, %v, want %v", name, got, ok, k)
		}
	}
	if got := Alt.WireName(); got != "Menu" {
		t.Errorf("Alt.WireName() = %q, want Menu", got)
	}
	if got := J.WireName(); got != "J" {
		t.Errorf("J.WireName() = %q, want J", got)
	}
}
