package checklist

import "time"

// SetClock fija el reloj del caso de uso en tests.
func SetClock(uc *ExecutionUseCase, now func() time.Time) { uc.now = now }
