package core

import "testing"

func TestIsCompatible(t *testing.T) {
	for _, declared := range SemanticTypes() {
		for _, actual := range SemanticTypes() {
			want := declared == Any || declared == actual
			if got := IsCompatible(declared, actual); got != want {
				t.Errorf("IsCompatible(%s, %s) = %v, want %v", declared, actual, got, want)
			}
		}
	}

	// explicit cases that must never coerce
	if IsCompatible(Numeric, Boolean) {
		t.Errorf("boolean must not satisfy numeric")
	}
	if IsCompatible(RiskLevel, Numeric) {
		t.Errorf("numeric must not satisfy risk_level")
	}
}

func TestParseSemanticType(t *testing.T) {
	tests := []struct {
		in      string
		want    SemanticType
		wantErr bool
	}{
		{in: "numeric", want: Numeric},
		{in: "risk_level", want: RiskLevel},
		{in: "any", want: Any},
		{in: "Numeric", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSemanticType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSemanticType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSemanticType(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{v: NumberValue(0.65), want: "0.65"},
		{v: BoolValue(true), want: "true"},
		{v: CategoryValue(RiskLevel, "high", 0.65), want: "high (0.65)"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
