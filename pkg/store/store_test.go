package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

func TestCalculateSucceeded(t *testing.T) {
	s := New()

	calc, err := s.Calculate("3 + 4 * 2")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if calc.State != CalculationSucceeded {
		t.Fatalf("state = %s", calc.State)
	}
	if calc.Result != 11 {
		t.Errorf("result = %d, want 11", calc.Result)
	}
	if calc.PostfixString() != "3 4 2 * +" {
		t.Errorf("postfix = %q", calc.PostfixString())
	}
	if _, err := uuid.Parse(calc.ID); err != nil {
		t.Errorf("id %q is not a uuid: %v", calc.ID, err)
	}

	got, err := s.GetCalculation(calc.ID)
	if err != nil {
		t.Fatalf("GetCalculation: %v", err)
	}
	if got != calc {
		t.Error("expected stored calculation to be returned")
	}
}

func TestCalculateFailedIsStored(t *testing.T) {
	s := New()

	calc, err := s.Calculate("10 / 0")
	if !types.IsKind(err, types.KindDivisionByZero) {
		t.Fatalf("error = %v, want DivisionByZero", err)
	}
	if calc.State != CalculationFailed {
		t.Fatalf("state = %s", calc.State)
	}
	if calc.Error == nil || calc.Error.Kind != types.KindDivisionByZero {
		t.Fatalf("unexpected error record: %+v", calc.Error)
	}
	if len(calc.Postfix) != 0 {
		t.Errorf("failed calculation leaked postfix %q", calc.Postfix)
	}
	if len(s.ListCalculations()) != 1 {
		t.Error("expected failed calculation in history")
	}

	calc, err = s.Calculate("1 )")
	if err == nil || calc == nil {
		t.Fatalf("conversion failure should still return a record, got %+v, %v", calc, err)
	}
	if calc.Error.Kind != types.KindMismatchedParentheses {
		t.Errorf("kind = %s", calc.Error.Kind)
	}
}

func TestListOrderAndDelete(t *testing.T) {
	s := New()
	var ids []string
	for i := 1; i <= 3; i++ {
		calc, _ := s.Calculate(fmt.Sprintf("%d + 0", i))
		ids = append(ids, calc.ID)
	}

	list := s.ListCalculations()
	for i, calc := range list {
		if calc.ID != ids[i] {
			t.Fatalf("position %d: got %s, want %s", i, calc.ID, ids[i])
		}
	}

	if err := s.DeleteCalculation(ids[1]); err != nil {
		t.Fatalf("DeleteCalculation: %v", err)
	}
	if err := s.DeleteCalculation(ids[1]); err == nil {
		t.Fatal("expected error deleting twice")
	}
	if _, err := s.GetCalculation(ids[1]); err == nil {
		t.Fatal("expected deleted calculation to be gone")
	}

	list = s.ListCalculations()
	if len(list) != 2 || list[0].ID != ids[0] || list[1].ID != ids[2] {
		t.Errorf("unexpected list after delete: %v", list)
	}
}

func TestLimitEvictsOldest(t *testing.T) {
	s := NewWithLimit(2)
	first, _ := s.Calculate("1")
	s.Calculate("2")
	third, _ := s.Calculate("3")

	list := s.ListCalculations()
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if _, err := s.GetCalculation(first.ID); err == nil {
		t.Error("expected oldest calculation to be evicted")
	}
	if list[1].ID != third.ID {
		t.Error("expected newest calculation last")
	}
}

func TestCounts(t *testing.T) {
	s := New()
	s.Calculate("1 + 1")
	s.Calculate("2 * 2")
	s.Calculate("1 +")

	ok, failed := s.Counts()
	if ok != 2 || failed != 1 {
		t.Errorf("counts = %d/%d, want 2/1", ok, failed)
	}
}

func TestConcurrentCalculate(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Calculate(fmt.Sprintf("%d * 2", i))
		}(i)
	}
	wg.Wait()

	if n := len(s.ListCalculations()); n != 50 {
		t.Errorf("stored %d calculations, want 50", n)
	}
}
