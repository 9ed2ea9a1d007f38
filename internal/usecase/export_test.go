package usecase

import (
	"io"
	"time"
)

func (s *SessionIssuer) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SessionIssuer) SetRand(r io.Reader) {
	s.rand = r
}
