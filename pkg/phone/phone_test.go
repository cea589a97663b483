package phone

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		kind   string
		number string
		want   bool
	}{
		{TypeTJ, "+992912345678", true},
		{TypeTJ, "+99291234567", false},
		{TypeTJ, "+9929123456789", false},
		{TypeTJ, "+992 91 234 5678", true},
		{TypeInternational, "+14155552671", true},
		{TypeInternational, "4155552671", false},
		{TypeInternational, "+123456789", false},
		{TypeInternational, "+1234567890123456", false},
		{"landline", "+14155552671", false},
	}

	for _, tc := range cases {
		if got := Valid(tc.kind, tc.number); got != tc.want {
			t.Fatalf("Valid(%s, %s) = %v, want %v", tc.kind, tc.number, got, tc.want)
		}
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	phones := FromFields("+992912345678", "")

	if len(phones) != 1 || phones[0].ID != IDTJ || phones[0].Type != TypeTJ {
		t.Fatalf("unexpected phones %+v", phones)
	}

	fields := ToFields(phones)

	if fields["phone1"] != "+992912345678" {
		t.Fatalf("unexpected phone1 %v", fields["phone1"])
	}

	if v, ok := fields["phone2"]; !ok || v != nil {
		t.Fatalf("phone2 must be an explicit null, got %v %v", v, ok)
	}
}

func TestValidateReportsUnknownType(t *testing.T) {
	if err := Validate("fax", "+14155552671"); err == nil {
		t.Fatalf("expected error")
	}

	if err := Validate(TypeInternational, "+14155552671"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
