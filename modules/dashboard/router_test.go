package dashboard_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlendWitTech/mero-jugx-sub003/modules/dashboard"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/audit"
	"github.com/BlendWitTech/mero-jugx-sub003/pkg/email"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/invitation"
	"github.com/BlendWitTech/mero-jugx-sub003/svc/organization"
)

type apiFixture struct {
	handler  http.Handler
	orgs     *organization.MemoryStorage
	invStore *invitation.MemoryStorage

	org        organization.Organization
	adminRole  organization.Role
	memberRole organization.Role
	admin      organization.User
	member     organization.User
	owner      organization.User
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	now := time.Now().UTC()
	fx := &apiFixture{orgs: organization.NewMemoryStorage()}
	fx.invStore = invitation.NewMemoryStorage(fx.orgs)
	invStore := fx.invStore

	notifier := invitation.NewNotifier(email.NewDevSender(nil), "https://app.example.com", nil)
	api := &dashboard.API{
		Orgs: organization.NewService(fx.orgs, nil,
			organization.WithAuditLog(audit.NewRecorder(fx.orgs.Audit)),
		),
		Invites:      invitation.NewService(invStore, fx.orgs, notifier, nil),
		HistoryLimit: 100,
	}
	fx.handler = api.Router()

	fx.org = organization.Organization{ID: uuid.New(), Name: "Acme", Slug: "acme", CreatedAt: now}
	fx.orgs.PutOrganization(fx.org)

	ownerRole := organization.Role{ID: uuid.New(), OrganizationID: fx.org.ID, Name: "Organization Owner", HierarchyLevel: 0, IsOrganizationOwner: true, CreatedAt: now}
	fx.adminRole = organization.Role{ID: uuid.New(), OrganizationID: fx.org.ID, Name: "Admin", HierarchyLevel: 1, Permissions: []string{
		invitation.PermCreate, invitation.PermView, invitation.PermCancel,
		organization.PermRevokeMembers, organization.PermAuditView,
	}, CreatedAt: now}
	fx.memberRole = organization.Role{ID: uuid.New(), OrganizationID: fx.org.ID, Name: "Member", HierarchyLevel: 2, IsDefault: true, CreatedAt: now}
	fx.orgs.PutRole(ownerRole)
	fx.orgs.PutRole(fx.adminRole)
	fx.orgs.PutRole(fx.memberRole)

	fx.owner = fx.addUser(t, "owner@example.com", ownerRole.ID, now)
	fx.admin = fx.addUser(t, "admin@example.com", fx.adminRole.ID, now)
	fx.member = fx.addUser(t, "member@example.com", fx.memberRole.ID, now)
	return fx
}

func (fx *apiFixture) addUser(t *testing.T, addr string, roleID uuid.UUID, now time.Time) organization.User {
	t.Helper()
	user := organization.User{ID: uuid.New(), Email: addr, Status: organization.UserActive, CreatedAt: now}
	fx.orgs.PutUser(user)
	fx.orgs.PutMembership(organization.Membership{
		ID:             uuid.New(),
		OrganizationID: fx.org.ID,
		UserID:         user.ID,
		RoleID:         roleID,
		Status:         organization.MembershipActive,
		JoinedAt:       now,
	})
	return user
}

func (fx *apiFixture) do(t *testing.T, method, path string, actor uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if actor != uuid.Nil {
		req.Header.Set("X-User-Id", actor.String())
	}
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAuthentication(t *testing.T) {
	t.Parallel()
	fx := newAPIFixture(t)

	t.Run("missing identity header", func(t *testing.T) {
		t.Parallel()
		rec := fx.do(t, http.MethodGet, "/me/context", uuid.Nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("health endpoints are public", func(t *testing.T) {
		t.Parallel()
		rec := fx.do(t, http.MethodGet, "/healthz", uuid.Nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestInvitationEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("create returns 201 with the invitation", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodPost, "/orgs/"+fx.org.ID.String()+"/invitations", fx.admin.ID,
			map[string]any{"email": "new@example.com", "role_id": fx.memberRole.ID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decodeJSON(t, rec)
		inv := body["invitation"].(map[string]any)
		assert.Equal(t, "new@example.com", inv["email"])
		assert.Equal(t, "pending", inv["status"])
	})

	t.Run("duplicate pending returns 409", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		payload := map[string]any{"email": "new@example.com", "role_id": fx.memberRole.ID}
		path := "/orgs/" + fx.org.ID.String() + "/invitations"

		require.Equal(t, http.StatusCreated, fx.do(t, http.MethodPost, path, fx.admin.ID, payload).Code)
		assert.Equal(t, http.StatusConflict, fx.do(t, http.MethodPost, path, fx.admin.ID, payload).Code)
	})

	t.Run("member without permission gets 403", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodPost, "/orgs/"+fx.org.ID.String()+"/invitations", fx.member.ID,
			map[string]any{"email": "new@example.com", "role_id": fx.memberRole.ID})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("granting an equal role gets 403", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodPost, "/orgs/"+fx.org.ID.String()+"/invitations", fx.admin.ID,
			map[string]any{"email": "new@example.com", "role_id": fx.adminRole.ID})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed email gets 422", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodPost, "/orgs/"+fx.org.ID.String()+"/invitations", fx.admin.ID,
			map[string]any{"email": "nope", "role_id": fx.memberRole.ID})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("preview and accept by token", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodPost, "/orgs/"+fx.org.ID.String()+"/invitations", fx.admin.ID,
			map[string]any{"email": "new@example.com", "role_id": fx.memberRole.ID})
		require.Equal(t, http.StatusCreated, rec.Code)

		// The token is not exposed over the API; fetch it from storage the way
		// the email link would carry it.
		invID := uuid.MustParse(decodeJSON(t, rec)["invitation"].(map[string]any)["id"].(string))
		inv, err := fx.invStore.GetInvitation(context.Background(), fx.org.ID, invID)
		require.NoError(t, err)
		token := inv.Token

		preview := fx.do(t, http.MethodGet, "/invitations/"+token.String(), uuid.Nil, nil)
		require.Equal(t, http.StatusOK, preview.Code)
		previewBody := decodeJSON(t, preview)
		assert.Equal(t, "Acme", previewBody["organization_name"])
		assert.Equal(t, false, previewBody["user_exists"])

		accept := fx.do(t, http.MethodPost, "/invitations/"+token.String()+"/accept", uuid.Nil,
			map[string]any{"first_name": "New", "last_name": "Hire", "password": "long-enough-pass"})
		require.Equal(t, http.StatusOK, accept.Code, accept.Body.String())
		acceptBody := decodeJSON(t, accept)
		assert.Equal(t, "active", acceptBody["status"])

		again := fx.do(t, http.MethodPost, "/invitations/"+token.String()+"/accept", uuid.Nil, nil)
		assert.Equal(t, http.StatusConflict, again.Code)
	})

	t.Run("cancel then list", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		base := "/orgs/" + fx.org.ID.String() + "/invitations"
		rec := fx.do(t, http.MethodPost, base, fx.admin.ID,
			map[string]any{"email": "new@example.com", "role_id": fx.memberRole.ID})
		require.Equal(t, http.StatusCreated, rec.Code)
		invID := decodeJSON(t, rec)["invitation"].(map[string]any)["id"].(string)

		cancel := fx.do(t, http.MethodDelete, base+"/"+invID, fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, cancel.Code)
		assert.Equal(t, "cancelled", decodeJSON(t, cancel)["status"])

		pending := fx.do(t, http.MethodGet, base, fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, pending.Code)
		assert.Empty(t, decodeJSON(t, pending)["invitations"])

		history := fx.do(t, http.MethodGet, base+"/history", fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, history.Code)
		assert.Len(t, decodeJSON(t, history)["invitations"], 1)
	})

	t.Run("list filters by status and paginates", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		base := "/orgs/" + fx.org.ID.String() + "/invitations"

		for _, addr := range []string{"one@example.com", "two@example.com", "three@example.com"} {
			rec := fx.do(t, http.MethodPost, base, fx.admin.ID,
				map[string]any{"email": addr, "role_id": fx.memberRole.ID})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		}
		rec := fx.do(t, http.MethodPost, base, fx.admin.ID,
			map[string]any{"email": "gone@example.com", "role_id": fx.memberRole.ID})
		require.Equal(t, http.StatusCreated, rec.Code)
		invID := decodeJSON(t, rec)["invitation"].(map[string]any)["id"].(string)
		require.Equal(t, http.StatusOK, fx.do(t, http.MethodDelete, base+"/"+invID, fx.admin.ID, nil).Code)

		cancelled := fx.do(t, http.MethodGet, base+"?status=cancelled", fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, cancelled.Code)
		require.Len(t, decodeJSON(t, cancelled)["invitations"], 1)

		page1 := fx.do(t, http.MethodGet, base+"?limit=2", fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, page1.Code)
		assert.Len(t, decodeJSON(t, page1)["invitations"], 2)

		page2 := fx.do(t, http.MethodGet, base+"?limit=2&page=2", fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, page2.Code)
		assert.Len(t, decodeJSON(t, page2)["invitations"], 1)

		bogus := fx.do(t, http.MethodGet, base+"?status=revoked", fx.admin.ID, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, bogus.Code)
	})
}

func TestOrganizationEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("membership context", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodGet, "/me/context", fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON(t, rec)
		assert.Equal(t, false, body["requires_selection"])
		assert.Len(t, body["organizations"], 1)
	})

	t.Run("membership context without memberships", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		stranger := organization.User{ID: uuid.New(), Email: "stranger@example.com", Status: organization.UserActive}
		fx.orgs.PutUser(stranger)

		rec := fx.do(t, http.MethodGet, "/me/context", stranger.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("assignable roles for admin", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodGet, "/orgs/"+fx.org.ID.String()+"/roles/assignable", fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		roles := decodeJSON(t, rec)["roles"].([]any)
		require.Len(t, roles, 1)
		assert.Equal(t, "Member", roles[0].(map[string]any)["name"])
	})

	t.Run("remove member", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodDelete,
			fmt.Sprintf("/orgs/%s/members/%s", fx.org.ID, fx.member.ID), fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "revoked", decodeJSON(t, rec)["status"])
	})

	t.Run("removing the sole owner conflicts", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodDelete,
			fmt.Sprintf("/orgs/%s/members/%s", fx.org.ID, fx.owner.ID), fx.admin.ID, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("audit trail", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodDelete,
			fmt.Sprintf("/orgs/%s/members/%s", fx.org.ID, fx.member.ID), fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		trail := fx.do(t, http.MethodGet, "/orgs/"+fx.org.ID.String()+"/audit", fx.admin.ID, nil)
		require.Equal(t, http.StatusOK, trail.Code, trail.Body.String())
		entries := decodeJSON(t, trail)["entries"].([]any)
		require.Len(t, entries, 1)
		assert.Equal(t, "membership.revoke", entries[0].(map[string]any)["action"])
	})

	t.Run("audit trail needs the view permission", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodGet, "/orgs/"+fx.org.ID.String()+"/audit", fx.member.ID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("create organization", func(t *testing.T) {
		t.Parallel()
		fx := newAPIFixture(t)
		rec := fx.do(t, http.MethodPost, "/orgs", fx.member.ID, map[string]any{"name": "Side Project"})
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeJSON(t, rec)
		assert.Equal(t, "Side Project", body["name"])
		assert.NotEmpty(t, body["slug"])
	})
}
