package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "$1.00", true},
		{"3.5", "$3.50", true},
		{" 12.5 ", "$12.50", true},
		{"0.01", "$0.01", true},
		{"1234.567", "$1234.57", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Format() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got.Format(), err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyJSONIsNumber(t *testing.T) {
	m := MoneyFromFloat(12.5)
	b, err := m.MarshalJSON()
	if err != nil || string(b) != "12.5" {
		t.Fatalf("MarshalJSON = %s (err=%v)", b, err)
	}

	var back Money
	if err := back.UnmarshalJSON([]byte("null")); err != nil || !back.IsZero() {
		t.Fatalf("null should decode to zero, got %s (err=%v)", back, err)
	}
	if err := back.UnmarshalJSON([]byte(`"4.20"`)); err != nil || back.Format() != "$4.20" {
		t.Fatalf("quoted decode = %s (err=%v)", back.Format(), err)
	}
}

func TestSummarize(t *testing.T) {
	items := []Expense{
		{Title: "a", Amount: MoneyFromFloat(10), Category: CategoryFood, Date: NewDate(2024, 1, 3)},
		{Title: "b", Amount: MoneyFromFloat(2.5), Category: CategoryFood, Date: NewDate(2024, 1, 20)},
		{Title: "c", Amount: MoneyFromFloat(7.25), Category: CategoryBills, Date: NewDate(2023, 12, 31)},
	}
	s := Summarize(items, "2024-01")
	if s.Total.Format() != "$19.75" {
		t.Fatalf("total = %s", s.Total.Format())
	}
	if s.Monthly.Format() != "$12.50" {
		t.Fatalf("monthly = %s", s.Monthly.Format())
	}
	if len(s.ByCategory) != 2 || s.ByCategory[0].Category != CategoryBills || s.ByCategory[1].Total.Format() != "$12.50" {
		t.Fatalf("by category = %+v", s.ByCategory)
	}

	empty := Summarize(nil, "2024-01")
	if empty.Total.Format() != "$0.00" || empty.Monthly.Format() != "$0.00" {
		t.Fatalf("empty summary = %+v", empty)
	}
}
