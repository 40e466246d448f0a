package models

import (
	"reflect"
	"testing"
)

func TestMetricsInsertionOrder(t *testing.T) {
	m := NewMetrics()
	m.SetText("Name", "Reliance Industries")
	m.SetNumber("Current Price", 2847.5)
	m.SetNumber("Market Cap", 1.9e12)
	m.SetNumber("Current Price", 2850) // update must not reorder

	want := []string{"Name", "Current Price", "Market Cap"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	v, ok := m.Get("Current Price")
	if !ok || v.Num != 2850 {
		t.Errorf("Get(Current Price) = %v, %v; want 2850", v, ok)
	}
}

func TestMetricsAbsence(t *testing.T) {
	m := NewMetrics()
	if _, ok := m.Get("PE Ratio"); ok {
		t.Error("Get on empty Metrics reported a value")
	}
	if !m.IsEmpty() {
		t.Error("IsEmpty() = false on empty Metrics")
	}

	var nilMetrics *Metrics
	if !nilMetrics.IsEmpty() {
		t.Error("IsEmpty() = false on nil Metrics")
	}
}

func TestMetricsDelete(t *testing.T) {
	m := NewMetrics()
	m.SetNumber("A", 1)
	m.SetNumber("B", 2)
	m.SetNumber("C", 3)
	m.Delete("B")

	want := []string{"A", "C"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() after delete = %v, want %v", got, want)
	}
	if _, ok := m.Get("B"); ok {
		t.Error("deleted key still present")
	}
	m.Delete("B") // deleting twice is a no-op
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(42), "42"},
		{Number(2847.5), "2847.5"},
		{Number(0.0247), "0.0247"},
		{Text("Refineries"), "Refineries"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
