package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		rows      []Row
		want      map[string]Dictionary
		wantOrder []string
	}{
		{
			name:      "no rows",
			rows:      nil,
			want:      map[string]Dictionary{},
			wantOrder: []string{},
		},
		{
			name: "two locales",
			rows: []Row{
				{Locale: "en", Key: "hello", Value: "Hello"},
				{Locale: "vi", Key: "hello", Value: "Xin chào"},
			},
			want: map[string]Dictionary{
				"en": {"hello": "Hello"},
				"vi": {"hello": "Xin chào"},
			},
			wantOrder: []string{"en", "vi"},
		},
		{
			name: "last write wins",
			rows: []Row{
				{Locale: "en", Key: "a", Value: "1"},
				{Locale: "en", Key: "a", Value: "2"},
			},
			want:      map[string]Dictionary{"en": {"a": "2"}},
			wantOrder: []string{"en"},
		},
		{
			name: "divergent keys are not backfilled",
			rows: []Row{
				{Locale: "en", Key: "a", Value: "A"},
				{Locale: "fr", Key: "b", Value: "B"},
			},
			want: map[string]Dictionary{
				"en": {"a": "A"},
				"fr": {"b": "B"},
			},
			wantOrder: []string{"en", "fr"},
		},
		{
			name: "first seen order",
			rows: []Row{
				{Locale: "vi", Key: "a", Value: "1"},
				{Locale: "en", Key: "a", Value: "2"},
				{Locale: "vi", Key: "b", Value: "3"},
				{Locale: "de", Key: "a", Value: "4"},
			},
			want: map[string]Dictionary{
				"vi": {"a": "1", "b": "3"},
				"en": {"a": "2"},
				"de": {"a": "4"},
			},
			wantOrder: []string{"vi", "en", "de"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.rows)
			if diff := cmp.Diff(tt.want, got.Map()); diff != "" {
				t.Errorf("Aggregate() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantOrder, got.Codes()); diff != "" {
				t.Errorf("Codes() mismatch (-want +got):\n%s", diff)
			}
			if got.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", got.Len(), len(tt.want))
			}
		})
	}
}

// Every row is reflected and no key appears that was not in a row.
func TestAggregate_CompleteAndMinimal(t *testing.T) {
	rows := []Row{
		{Locale: "en", Key: "greeting", Value: "Hi"},
		{Locale: "en", Key: "farewell", Value: "Bye"},
		{Locale: "vi", Key: "greeting", Value: "Chào"},
		{Locale: "en", Key: "greeting", Value: "Hello"},
	}

	got := Aggregate(rows).Map()

	last := make(map[[2]string]string)
	for _, r := range rows {
		last[[2]string{r.Locale, r.Key}] = r.Value
	}
	for lk, v := range last {
		if got[lk[0]][lk[1]] != v {
			t.Errorf("%s[%s] = %q, want %q", lk[0], lk[1], got[lk[0]][lk[1]], v)
		}
	}

	total := 0
	for code, dict := range got {
		for key := range dict {
			if _, ok := last[[2]string{code, key}]; !ok {
				t.Errorf("unexpected key %s[%s]", code, key)
			}
			total++
		}
	}
	if total != len(last) {
		t.Errorf("total keys = %d, want %d", total, len(last))
	}
}

func TestLocales_MapIsCopy(t *testing.T) {
	l := NewLocales()
	l.Set("en", "a", "1")

	m := l.Map()
	m["en"]["a"] = "changed"

	dict, _ := l.Get("en")
	if dict["a"] != "1" {
		t.Errorf("Map() returned shared dictionary, got %q", dict["a"])
	}

	codes := l.Codes()
	codes[0] = "xx"
	if l.Codes()[0] != "en" {
		t.Error("Codes() returned shared slice")
	}
}

func TestAggregate_SameInputSameOutput(t *testing.T) {
	rows := []Row{
		{Locale: "en", Key: "greeting", Value: "Hello"},
		{Locale: "vi", Key: "greeting", Value: "Xin chào"},
		{Locale: "en", Key: "greeting", Value: "Hi"},
		{Locale: "fr", Key: "bye", Value: "Au revoir"},
	}
	before := append([]Row(nil), rows...)

	first := Aggregate(rows)
	second := Aggregate(rows)

	if diff := cmp.Diff(first.Map(), second.Map()); diff != "" {
		t.Errorf("Map() differs between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Codes(), second.Codes()); diff != "" {
		t.Errorf("Codes() differs between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, rows); diff != "" {
		t.Errorf("input rows modified (-before +after):\n%s", diff)
	}

	first.Set("en", "greeting", "changed")
	if got, _ := second.Get("en"); got["greeting"] != "Hi" {
		t.Errorf("runs share state: second en.greeting = %q", got["greeting"])
	}
}
