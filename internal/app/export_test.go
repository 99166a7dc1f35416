package app

import "time"

// Clock hooks for tests in package app_test.

func (s *WeightService) SetClock(now func() time.Time)   { s.now = now }
func (s *NoteService) SetClock(now func() time.Time)     { s.now = now }
func (s *ChartsService) SetClock(now func() time.Time)   { s.now = now }
func (s *TransferService) SetClock(now func() time.Time) { s.now = now }
