// Package store provides in-memory storage for calculation history.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lemonberrylabs/rpncalc/pkg/expr"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// CalculationState represents the outcome of a stored calculation.
type CalculationState string

const (
	CalculationSucceeded CalculationState = "SUCCEEDED"
	CalculationFailed    CalculationState = "FAILED"
)

// Calculation represents a stored expression run.
type Calculation struct {
	ID         string            `json:"id"`
	Expression string            `json:"expression"`
	Postfix    []string          `json:"postfix,omitempty"`
	Result     int64             `json:"result"`
	State      CalculationState  `json:"state"`
	Error      *CalculationError `json:"error,omitempty"`
	CreateTime time.Time         `json:"createTime"`
}

// CalculationError represents the error of a failed calculation.
type CalculationError struct {
	Kind    types.ErrorKind `json:"kind"`
	Message string          `json:"message"`
}

// PostfixString renders the stored postfix tokens space-separated.
func (c *Calculation) PostfixString() string {
	return expr.Postfix(c.Postfix).String()
}

// Store is a thread-safe in-memory calculation history. When limit is
// positive, the oldest calculations are evicted once it is exceeded.
type Store struct {
	mu           sync.RWMutex
	calculations map[string]*Calculation
	order        []string // IDs in insertion order
	limit        int
}

// New creates a new empty store with no capacity limit.
func New() *Store {
	return NewWithLimit(0)
}

// NewWithLimit creates a new empty store holding at most limit calculations.
func NewWithLimit(limit int) *Store {
	return &Store{
		calculations: make(map[string]*Calculation),
		limit:        limit,
	}
}

// Calculate runs expression and records the outcome. Failed runs are stored
// too, so the returned record is never nil; the returned error is the
// expression error, if any.
func (s *Store) Calculate(expression string) (*Calculation, error) {
	calc := &Calculation{
		ID:         uuid.NewString(),
		Expression: expression,
		CreateTime: time.Now(),
	}

	res, err := expr.Calculate(expression)
	if err != nil {
		calc.State = CalculationFailed
		calc.Error = &CalculationError{Message: err.Error()}
		if ee := types.AsExpressionError(err); ee != nil {
			calc.Error.Kind = ee.Kind
		}
	} else {
		calc.State = CalculationSucceeded
		calc.Postfix = res.Postfix
		calc.Result = res.Result
	}

	s.add(calc)
	return calc, err
}

func (s *Store) add(calc *Calculation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calculations[calc.ID] = calc
	s.order = append(s.order, calc.ID)

	for s.limit > 0 && len(s.order) > s.limit {
		delete(s.calculations, s.order[0])
		s.order = s.order[1:]
	}
}

// GetCalculation retrieves a calculation by ID.
func (s *Store) GetCalculation(id string) (*Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calc, ok := s.calculations[id]
	if !ok {
		return nil, fmt.Errorf("calculation '%s' not found", id)
	}
	return calc, nil
}

// ListCalculations returns all calculations, oldest first.
func (s *Store) ListCalculations() []*Calculation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Calculation, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.calculations[id])
	}
	return result
}

// DeleteCalculation removes a calculation.
func (s *Store) DeleteCalculation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.calculations[id]; !ok {
		return fmt.Errorf("calculation '%s' not found", id)
	}
	delete(s.calculations, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Counts returns the number of succeeded and failed calculations.
func (s *Store) Counts() (succeeded, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, calc := range s.calculations {
		switch calc.State {
		case CalculationSucceeded:
			succeeded++
		case CalculationFailed:
			failed++
		}
	}
	return succeeded, failed
}
