package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BlendWitTech/mero-jugx-sub003/svc/invitation"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", invitation.ErrValidation, name)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", invitation.ErrValidation)
	}
	return nil
}

type organizationResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	MFARequired bool      `json:"mfa_required"`
	CreatedAt   time.Time `json:"created_at"`
}

func toOrganizationResponse(org organization.Organization) organizationResponse {
	return organizationResponse{
		ID:          org.ID,
		Name:        org.Name,
		Slug:        org.Slug,
		MFARequired: org.MFARequired,
		CreatedAt:   org.CreatedAt,
	}
}

func (a *API) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		MFARequired bool   `json:"mfa_required"`
	}
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}

	org, err := a.Orgs.Create(r.Context(), organization.CreateParams{
		Name:        req.Name,
		OwnerUserID: actorID(r.Context()),
		MFARequired: req.MFARequired,
	})
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusCreated, toOrganizationResponse(org))
}

type organizationSummaryResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	RoleID   uuid.UUID `json:"role_id"`
	RoleName string    `json:"role_name"`
}

func (a *API) handleMembershipContext(w http.ResponseWriter, r *http.Request) {
	mc, err := a.Orgs.ResolveContext(r.Context(), actorID(r.Context()))
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	out := make([]organizationSummaryResponse, 0, len(mc.Organizations))
	for _, org := range mc.Organizations {
		out = append(out, organizationSummaryResponse{
			ID: org.ID, Name: org.Name, Slug: org.Slug,
			RoleID: org.RoleID, RoleName: org.RoleName,
		})
	}
	_, single := mc.Single()
	a.respondJSON(w, http.StatusOK, map[string]any{
		"organizations":      out,
		"requires_selection": !single,
	})
}

type roleResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	HierarchyLevel int       `json:"hierarchy_level"`
	IsDefault      bool      `json:"is_default"`
}

func (a *API) handleAssignableRoles(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathUUID(r, "orgID")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	roles, err := a.Orgs.AssignableRolesFor(r.Context(), actorID(r.Context()), orgID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse{
			ID: role.ID, Name: role.Name,
			HierarchyLevel: role.HierarchyLevel, IsDefault: role.IsDefault,
		})
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (a *API) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathUUID(r, "orgID")
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	userID, err := pathUUID(r, "userID")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	m, err := a.Orgs.RemoveMember(r.Context(), actorID(r.Context()), orgID, userID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{
		"membership_id": m.ID,
		"status":        m.Status,
		"revoked_at":    m.RevokedAt,
	})
}

type invitationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	RoleID    uuid.UUID  `json:"role_id"`
	Status    string     `json:"status"`
	Message   string     `json:"message,omitempty"`
	InvitedBy uuid.UUID  `json:"invited_by"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
}

func toInvitationResponse(inv invitation.Invitation) invitationResponse {
	return invitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		RoleID:    inv.RoleID,
		Status:    string(inv.Status),
		Message:   inv.Message,
		InvitedBy: inv.InvitedBy,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
		UserID:    inv.UserID,
	}
}

func (a *API) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathUUID(r, "orgID")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	var req struct {
		Email   string    `json:"email"`
		RoleID  uuid.UUID `json:"role_id"`
		Message string    `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}

	result, err := a.Invites.Create(r.Context(), invitation.CreateParams{
		OrganizationID: orgID,
		ActorUserID:    actorID(r.Context()),
		Email:          req.Email,
		RoleID:         req.RoleID,
		Message:        req.Message,
	})
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	payload := map[string]any{"invitation": toInvitationResponse(result.Invitation)}
	if result.Warning != "" {
		payload["warning"] = result.Warning
	}
	a.respondJSON(w, http.StatusCreated, payload)
}

// handleListInvitations serves the invitation list. Without a status query
// param it shows the effectively pending invitations, the dashboard's default
// view; ?status= selects any effective status, ?email= narrows to one address
// and ?page=/?limit= paginate.
func (a *API) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathUUID(r, "orgID")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := invitation.Filter{
		Status: invitation.StatusPending,
		Email:  q.Get("email"),
		Page:   queryInt(q.Get("page"), 1),
		Limit:  queryInt(q.Get("limit"), a.HistoryLimit),
	}
	if q.Has("status") {
		filter.Status = invitation.Status(q.Get("status"))
	}
	if filter.Limit <= 0 || filter.Limit > a.HistoryLimit {
		filter.Limit = a.HistoryLimit
	}

	invitations, err := a.Invites.List(r.Context(), actorID(r.Context()), orgID, filter)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"invitations": toInvitationResponses(invitations)})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func (a *API) handleInvitationHistory(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathUUID(r, "orgID")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	invitations, err := a.Invites.History(r.Context(), actorID(r.Context()), orgID, r.URL.Query().Get("email"), a.HistoryLimit)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"invitations": toInvitationResponses(invitations)})
}

func toInvitationResponses(invitations []invitation.Invitation) []invitationResponse {
	out := make([]invitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, toInvitationResponse(inv))
	}
	return out
}

type auditEntryResponse struct {
	ID         uuid.UUID      `json:"id"`
	ActorID    uuid.UUID      `json:"actor_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (a *API) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathUUID(r, "orgID")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	limit := queryInt(r.URL.Query().Get("limit"), a.HistoryLimit)
	if limit > a.HistoryLimit {
		limit = a.HistoryLimit
	}
	entries, err := a.Orgs.AuditTrail(r.Context(), actorID(r.Context()), orgID, limit)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OldValues:  e.OldValues,
			NewValues:  e.NewValues,
			CreatedAt:  e.CreatedAt,
		})
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (a *API) handleCancelInvitation(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathUUID(r, "orgID")
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	inv, err := a.Invites.Cancel(r.Context(), actorID(r.Context()), orgID, id)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusOK, toInvitationResponse(inv))
}

func (a *API) handlePreviewInvitation(w http.ResponseWriter, r *http.Request) {
	token, err := pathUUID(r, "token")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	preview, err := a.Invites.PreviewByToken(r.Context(), token)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{
		"organization_name": preview.OrganizationName,
		"role_name":         preview.RoleName,
		"email":             preview.Invitation.Email,
		"message":           preview.Invitation.Message,
		"status":            preview.Invitation.Status,
		"expires_at":        preview.Invitation.ExpiresAt,
		"user_exists":       preview.UserExists,
	})
}

func (a *API) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	token, err := pathUUID(r, "token")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			a.respondError(w, r, err)
			return
		}
	}

	outcome, err := a.Invites.Accept(r.Context(), invitation.AcceptParams{
		Token:     token,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]any{
		"organization_id": outcome.Invitation.OrganizationID,
		"user_id":         outcome.UserID,
		"membership_id":   outcome.Membership.ID,
		"role_id":         outcome.Membership.RoleID,
		"status":          outcome.Membership.Status,
	})
}
