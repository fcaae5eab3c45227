package service

import (
	"strings"

	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role string
}

// IsTeacher reports whether the actor may author content.
func (a Actor) IsTeacher() bool {
	return strings.EqualFold(a.Role, models.RoleTeacher)
}

// IsStudent reports whether the actor is a learner.
func (a Actor) IsStudent() bool {
	return strings.EqualFold(a.Role, models.RoleStudent)
}

// Owns reports whether the actor is the given owner.
func (a Actor) Owns(ownerID uint) bool {
	return a.ID != 0 && a.ID == ownerID
}
