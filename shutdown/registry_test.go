package shutdown

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRegistry_RunsInPriorityOrder(t *testing.T) {
	r := NewRegistry()
	var order []string
	add := func(name string, priority int) {
		r.Register(name, priority, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	add("database", 20)
	add("http", 0)
	add("audit", 10)
	add("logs", 90)
	add("audit-cleanup", 10)

	want := []string{"http", "audit", "audit-cleanup", "database", "logs"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if err := r.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestRegistry_CollectsErrors(t *testing.T) {
	r := NewRegistry()
	errDB := errors.New("db busy")
	ranLast := false
	r.Register("first", 0, func(context.Context) error { return errors.New("boom") })
	r.Register("database", 1, func(context.Context) error { return errDB })
	r.Register("last", 2, func(context.Context) error {
		ranLast = true
		return nil
	})

	var observed []string
	err := r.Run(context.Background(), func(name string, _ time.Duration, err error) {
		if err != nil {
			observed = append(observed, name)
		}
	})

	if !ranLast {
		t.Error("handlers after a failure must still run")
	}
	if !errors.Is(err, errDB) {
		t.Errorf("Run() error = %v, want it to wrap errDB", err)
	}
	if !strings.Contains(err.Error(), "database: db busy") {
		t.Errorf("error %q should name the handler", err)
	}
	if !reflect.DeepEqual(observed, []string{"first", "database"}) {
		t.Errorf("observed failures = %v", observed)
	}
}

func TestRegistry_RunsOnce(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("once", 0, func(context.Context) error {
		calls++
		return nil
	})

	r.Run(context.Background(), nil)
	r.Run(context.Background(), nil)
	r.Register("late", 0, func(context.Context) error {
		t.Error("handler registered after Run must not run")
		return nil
	})
	r.Run(context.Background(), nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}
