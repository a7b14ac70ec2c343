package worker

import (
	"github.com/spec-kit/session-bridge/internal/service"
)

// StartEnrollmentWorker registers enrollment handlers.
func StartEnrollmentWorker(enrollmentService *service.EnrollmentService) {
	if enrollmentService == nil {
		return
	}
	enrollmentService.RegisterHandlers()
}
