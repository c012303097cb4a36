package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-15", true},
		{" 2025-12-31 ", true},
		{"2024-02-30", false},
		{"15/01/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateDisplay(t *testing.T) {
	d := NewDate(2024, 1, 15)
	if got := d.Display(); got != "Jan 15, 2024" {
		t.Fatalf("Display() = %q, want %q", got, "Jan 15, 2024")
	}
	if got := d.String(); got != "2024-01-15" {
		t.Fatalf("String() = %q", got)
	}
	if got := d.MonthKey(); got != "2024-01" {
		t.Fatalf("MonthKey() = %q", got)
	}
	if (Date{}).Display() != "" {
		t.Fatalf("zero date should display empty")
	}
}

func TestDateOfKeepsLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	// 23:30 local on Jan 15 is already Jan 16 in UTC.
	local := time.Date(2024, 1, 15, 23, 30, 0, 0, loc)
	if got := DateOf(local).String(); got != "2024-01-15" {
		t.Fatalf("DateOf() = %q, want local calendar day", got)
	}
}

func TestCategoryBadgeClass(t *testing.T) {
	if got := CategoryFood.BadgeClass(); got != "category-food" {
		t.Fatalf("food badge = %q", got)
	}
	if got := Category("lottery").BadgeClass(); got != "category-other" {
		t.Fatalf("unknown badge = %q", got)
	}
	if len(Categories()) != 7 {
		t.Fatalf("unexpected category count %d", len(Categories()))
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Title:    "Coffee",
		Amount:   MoneyFromFloat(3.5),
		Category: CategoryFood,
		Date:     NewDate(2024, 1, 15),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Title: "", Category: CategoryFood, Date: NewDate(2024, 1, 15)},
		{Title: "a", Category: "", Date: NewDate(2024, 1, 15)},
		{Title: "a", Category: CategoryFood},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseJSONShape(t *testing.T) {
	e := Expense{
		Title:       "Coffee",
		Amount:      MoneyFromFloat(3.5),
		Category:    CategoryFood,
		Date:        NewDate(2024, 1, 15),
		Description: "",
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"title":"Coffee","amount":3.5,"category":"food","date":"2024-01-15","description":""}`
	if string(b) != want {
		t.Fatalf("json = %s, want %s", b, want)
	}

	var back Expense
	in := `{"id":7,"title":"Bus","amount":"2.75","category":"transport","date":"2024-03-02T00:00:00Z","description":"x"}`
	if err := json.Unmarshal([]byte(in), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != 7 || back.Amount.Format() != "$2.75" || back.Date.String() != "2024-03-02" {
		t.Fatalf("unexpected decode: %+v", back)
	}
}
