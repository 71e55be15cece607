package clock

import (
	"context"
	"time"
)

// Fixed always reports the same instant. Test use only.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now(ctx context.Context) time.Time {
	return f.T
}
