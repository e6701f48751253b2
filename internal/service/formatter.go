package service

import (
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	"sort"
	"strings"
)

// UnknownStore is the display name of a store code missing from the directory.
const UnknownStore = "Unknown"

// Formatter renders a PollResult as a human readable message.
// It keeps no state between calls.
type Formatter struct {
	order []model.StoreCode
	names map[model.StoreCode]string
}

// NewFormatter builds a Formatter from the configured stores.
func NewFormatter(cfg *config.Config) *Formatter {
	stores := make([]model.Store, 0, len(cfg.Watcher.Stores))
	for _, s := range cfg.Watcher.Stores {
		stores = append(stores, model.Store{Code: model.StoreCode(s.Code), Name: s.Name})
	}
	return NewFormatterFor(stores)
}

// NewFormatterFor builds a Formatter that resolves names from stores and
// lists them in the given order.
func NewFormatterFor(stores []model.Store) *Formatter {
	f := &Formatter{
		order: make([]model.StoreCode, 0, len(stores)),
		names: make(map[model.StoreCode]string, len(stores)),
	}
	for _, s := range stores {
		f.order = append(f.order, s.Code)
		if s.Name != "" {
			f.names[s.Code] = s.Name
		}
	}
	return f
}

// StoreName resolves a store code to its display name.
func (f *Formatter) StoreName(code model.StoreCode) string {
	if name, ok := f.names[code]; ok {
		return name
	}
	return UnknownStore
}

// Format renders the result and reports whether any store has availability.
// Configured stores come first in configuration order, others follow sorted by code.
func (f *Formatter) Format(result model.PollResult) (string, bool) {
	var b strings.Builder
	for _, code := range f.codes(result) {
		b.WriteString("Store: ")
		b.WriteString(f.StoreName(code))
		b.WriteString("\n")

		slots := result[code]
		if len(slots) == 0 {
			b.WriteString("No dates available\n\n")
			continue
		}
		for _, slot := range slots {
			b.WriteString("Date: ")
			b.WriteString(slot.Date)
			b.WriteString("\nFrom: ")
			b.WriteString(slot.Timeslots.From)
			b.WriteString("\nTo: ")
			b.WriteString(slot.Timeslots.To)
			b.WriteString("\n\n")
		}
	}
	return b.String(), result.HasAvailability()
}

func (f *Formatter) codes(result model.PollResult) []model.StoreCode {
	codes := make([]model.StoreCode, 0, len(result))
	known := make(map[model.StoreCode]struct{}, len(f.order))
	for _, code := range f.order {
		known[code] = struct{}{}
		if _, ok := result[code]; ok {
			codes = append(codes, code)
		}
	}

	var extra []model.StoreCode
	for code := range result {
		if _, ok := known[code]; !ok {
			extra = append(extra, code)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(codes, extra...)
}
