package auth

import (
	"fmt"
)

// UserRole is the principal's coarse role
type UserRole = string

const (
	// RoleStandard is every principal without the administrator flag
	RoleStandard UserRole = "standard"
	// RoleAdmin is a principal with the administrator flag
	RoleAdmin UserRole = "admin"
)

// Operation is the kind of access being attempted
type Operation string

const (
	OperationRead   Operation = "read"
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

var operationVerbs = map[Operation]string{
	OperationRead:   "view",
	OperationCreate: "create",
	OperationUpdate: "update",
	OperationDelete: "delete",
}

func (o Operation) deniedMessage(resource string) string {
	verb, ok := operationVerbs[o]
	if !ok {
		verb = "access"
	}
	if resource == "" {
		resource = "this resource"
	}
	return fmt.Sprintf("only administrators can %s %s", verb, resource)
}

// IsValid checks the operation is one of the known operations
func (o Operation) IsValid() bool {
	_, ok := operationVerbs[o]
	return ok
}

// roleLevel orders roles, unknown roles rank below standard
func roleLevel(r UserRole) int {
	switch r {
	case RoleAdmin:
		return 1
	case RoleStandard:
		return 0
	default:
		return -1
	}
}

// IsAtLeast checks if role meets the minimum required level
func IsAtLeast(role, minRole UserRole) bool {
	minLevel := roleLevel(minRole)
	if minLevel < 0 {
		return false
	}
	return roleLevel(role) >= minLevel
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	switch roleStr {
	case RoleAdmin, RoleStandard:
		return roleStr, true
	default:
		return "", false
	}
}

// AccessPolicy gates role restricted operations for resolved principals
type AccessPolicy struct {
	logger Logger
}

// NewAccessPolicy creates an AccessPolicy
func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{logger: defLogger{}}
}

func (a *AccessPolicy) WithLogger(logger Logger) *AccessPolicy {
	a.logger = resolveLogger(logger)
	return a
}

// Authorize allows the operation when principal holds at least the required role.
// A nil principal means the identity resolver did not run and always fails closed.
func (a *AccessPolicy) Authorize(principal *Principal, op Operation, resource string, required UserRole) error {
	if principal == nil {
		a.logger.Error("access policy evaluated without principal", "operation", op, "resource", resource)
		return ErrPrincipalMissing
	}

	if IsAtLeast(principal.Role(), required) {
		return nil
	}

	a.logger.Info("access denied",
		"principal", principal.ID.String(),
		"operation", op,
		"resource", resource,
		"required", required,
	)

	return NewPermissionError(op, resource)
}
