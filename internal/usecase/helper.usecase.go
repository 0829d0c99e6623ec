package usecase

import "log"

func logf(format string, args ...any) {
	log.Printf("[Auth] "+format, args...)
}
