package core

// Locales maps locale codes to their dictionaries and remembers the order in
// which each code was first seen. The publisher walks locales in that order.
type Locales struct {
	order []string
	dicts map[string]Dictionary
}

// NewLocales returns an empty set.
func NewLocales() *Locales {
	return &Locales{dicts: make(map[string]Dictionary)}
}

// Set stores value under key for locale, creating the locale on first sight.
// A later Set for the same (locale, key) overwrites the earlier one.
func (l *Locales) Set(locale, key, value string) {
	dict, ok := l.dicts[locale]
	if !ok {
		dict = make(Dictionary)
		l.dicts[locale] = dict
		l.order = append(l.order, locale)
	}
	dict[key] = value
}

// Codes returns the locale codes in first-seen order.
func (l *Locales) Codes() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Get returns the dictionary of locale.
func (l *Locales) Get(locale string) (Dictionary, bool) {
	d, ok := l.dicts[locale]
	return d, ok
}

// Len returns the number of locales.
func (l *Locales) Len() int {
	return len(l.order)
}

// Map returns a deep copy as a plain map, never nil.
func (l *Locales) Map() map[string]Dictionary {
	out := make(map[string]Dictionary, len(l.dicts))
	for code, dict := range l.dicts {
		cp := make(Dictionary, len(dict))
		for k, v := range dict {
			cp[k] = v
		}
		out[code] = cp
	}
	return out
}

// Aggregate folds rows into per-locale dictionaries in source order.
// Duplicate (locale, key) pairs are resolved last-write-wins; missing keys
// in one locale are not backfilled from another.
func Aggregate(rows []Row) *Locales {
	locales := NewLocales()
	for _, row := range rows {
		locales.Set(row.Locale, row.Key, row.Value)
	}
	return locales
}
