package attendance

import "time"

// SetNow pins the clock of a service built by NewService.
func SetNow(s Service, now func() time.Time) {
	s.(*service).now = now
}
