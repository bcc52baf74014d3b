package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/api/middleware"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
)

// actor is the authenticated identity every handler operates as. It comes
// from the verified token claims, never from the request body.
type actor struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           string
}

func actorFromRequest(r *http.Request) (actor, error) {
	userRaw := middleware.UserIDFromContext(r.Context())
	if userRaw == "" {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	orgRaw := middleware.OrgIDFromContext(r.Context())
	if orgRaw == "" {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "organization context missing")
	}
	userID, err := uuid.Parse(userRaw)
	if err != nil {
		return actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	orgID, err := uuid.Parse(orgRaw)
	if err != nil {
		return actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid organization id")
	}
	return actor{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           middleware.RoleFromContext(r.Context()),
	}, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := routeParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param).WithDetails(map[string]any{"param": param})
	}
	return id, nil
}
