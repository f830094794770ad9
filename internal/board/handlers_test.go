package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/collab"
	"github.com/raibo/raiboard/internal/geometry"
	"github.com/raibo/raiboard/internal/identity"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) *chi.Mux {
	r := chi.NewRouter()

	r.Route("/api/v1/boards", func(r chi.Router) {
		r.Post("/", HandleCreate(svc, nil))
		r.Get("/", HandleList(svc))

		r.Route("/{board_id}", func(r chi.Router) {
			r.Get("/", HandleGet(svc))
			r.Put("/", HandleUpdate(svc, nil))
			r.Delete("/", HandleDelete(svc, nil))
			r.Put("/settings", HandleUpdateSettings(svc, nil))

			r.Post("/elements/products", HandlePlaceProduct(svc, nil))
			r.Post("/elements/texts", HandlePlaceText(svc, nil))
			r.Patch("/elements/{element_id}", HandleUpdateElement(svc, nil))
			r.Put("/elements/{element_id}/layer", HandleSetElementLayer(svc, nil))
			r.Delete("/elements/{element_id}", HandleRemoveElement(svc, nil))

			r.Get("/collaborators", HandleListCollaborators(svc))
			r.Put("/collaborators/{user_id}", HandleSetCollaboratorRole(svc, nil))
			r.Delete("/collaborators/{user_id}", HandleRemoveCollaborator(svc, nil))

			r.Post("/presence", HandleHeartbeat(svc))

			r.Post("/invites", HandleCreateInvite(svc, nil))
			r.Get("/invites", HandleListInvites(svc))
			r.Delete("/invites/{invite_id}", HandleRevokeInvite(svc, nil))
		})
	})

	r.Post("/api/v1/invites/{invite_id}/respond", HandleRespondInvite(svc, nil))

	return r
}

func doJSON(t *testing.T, router http.Handler, actor identity.Identity, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if !actor.IsAnonymous() {
		req = req.WithContext(identity.WithIdentity(req.Context(), actor))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func createBoardHTTP(t *testing.T, router http.Handler, actor identity.Identity, name string, isPublic bool) *Board {
	t.Helper()
	rec := doJSON(t, router, actor, http.MethodPost, "/api/v1/boards", BoardCreateRequest{
		Name:     name,
		IsPublic: isPublic,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var b Board
	require.NoError(t, json.Unmarshal(decodeData(t, rec)["board"], &b))
	return &b
}

func TestHandleCreate(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(svc)
	alice := ident("Alice", "alice@example.com")

	b := createBoardHTTP(t, router, alice, "Living room", false)
	require.Equal(t, alice.UserID, b.OwnerID)
	require.Equal(t, 20, b.Settings.GridSize)

	rec := doJSON(t, router, alice, http.MethodPost, "/api/v1/boards", BoardCreateRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, identity.Identity{}, http.MethodPost, "/api/v1/boards", BoardCreateRequest{Name: "x"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleGet_Visibility(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(svc)
	alice := ident("Alice", "alice@example.com")

	private := createBoardHTTP(t, router, alice, "Private", false)
	public := createBoardHTTP(t, router, alice, "Public", true)

	rec := doJSON(t, router, identity.Identity{}, http.MethodGet, "/api/v1/boards/"+public.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, identity.Identity{}, http.MethodGet, "/api/v1/boards/"+private.ID.String(), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, ident("Eve", "eve@example.com"), http.MethodGet, "/api/v1/boards/"+private.ID.String(), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, alice, http.MethodGet, "/api/v1/boards/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, alice, http.MethodGet, "/api/v1/boards/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePlaceProduct_OverlapConflict(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(svc)
	alice := ident("Alice", "alice@example.com")
	b := createBoardHTTP(t, router, alice, "Moodboard", false)

	place := func(productID string, x, y float64) *httptest.ResponseRecorder {
		return doJSON(t, router, alice, http.MethodPost, "/api/v1/boards/"+b.ID.String()+"/elements/products", PlaceProductRequest{
			ProductID: productID,
			Position:  geometry.Point{X: x, Y: y},
			Size:      geometry.Size{Width: 100, Height: 100},
		})
	}

	rec := place("chair-1", 0, 0)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var el Element
	require.NoError(t, json.Unmarshal(decodeData(t, rec)["element"], &el))
	require.Equal(t, 1, el.ZIndex)
	require.Equal(t, "Velvet Chair", el.Product.ProductName)

	rec = place("lamp-2", 50, 50)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = place("lamp-2", 200, 0)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = place("no-such-product", 400, 0)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleElementLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(svc)
	alice := ident("Alice", "alice@example.com")
	b := createBoardHTTP(t, router, alice, "Moodboard", false)
	base := "/api/v1/boards/" + b.ID.String()

	rec := doJSON(t, router, alice, http.MethodPost, base+"/elements/texts", PlaceTextRequest{
		Kind:     TextHeading,
		Position: geometry.Point{},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var el Element
	require.NoError(t, json.Unmarshal(decodeData(t, rec)["element"], &el))
	require.Equal(t, KindText, el.Kind)

	content := "Autumn picks"
	rec = doJSON(t, router, alice, http.MethodPatch, base+"/elements/"+el.ID.String(), ElementPatch{Content: &content})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, alice, http.MethodPut, base+"/elements/"+el.ID.String()+"/layer", LayerRequest{Layer: LayerBack})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, alice, http.MethodPut, base+"/elements/"+el.ID.String()+"/layer", LayerRequest{Layer: "sideways"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, alice, http.MethodDelete, base+"/elements/"+el.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, alice, http.MethodDelete, base+"/elements/"+el.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleInviteFlow(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(svc)
	alice := ident("Alice", "alice@example.com")
	bob := ident("Bob", "bob@example.com")
	b := createBoardHTTP(t, router, alice, "Shared", false)
	base := "/api/v1/boards/" + b.ID.String()

	rec := doJSON(t, router, alice, http.MethodPost, base+"/invites", InviteCreateRequest{
		Email: "bob@example.com",
		Role:  "editor",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var inv InviteResponse
	require.NoError(t, json.Unmarshal(decodeData(t, rec)["invite"], &inv))
	require.Equal(t, "pending", string(inv.Status))

	rec = doJSON(t, router, bob, http.MethodPost, "/api/v1/invites/"+inv.ID.String()+"/respond", InviteRespondRequest{Response: "accept"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, bob, http.MethodGet, base+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Wrong invitee gets 403, bad verb 400, second accept 409.
	rec = doJSON(t, router, alice, http.MethodPost, base+"/invites", InviteCreateRequest{Email: "carol@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var inv2 InviteResponse
	require.NoError(t, json.Unmarshal(decodeData(t, rec)["invite"], &inv2))

	rec = doJSON(t, router, bob, http.MethodPost, "/api/v1/invites/"+inv2.ID.String()+"/respond", InviteRespondRequest{Response: "accept"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, bob, http.MethodPost, "/api/v1/invites/"+inv.ID.String()+"/respond", InviteRespondRequest{Response: "maybe"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, bob, http.MethodPost, "/api/v1/invites/"+inv.ID.String()+"/respond", InviteRespondRequest{Response: "accept"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleRespondInvite_ExpiredGone(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(svc)
	alice := ident("Alice", "alice@example.com")
	bob := ident("Bob", "bob@example.com")
	b := createBoardHTTP(t, router, alice, "Shared", false)

	rec := doJSON(t, router, alice, http.MethodPost, "/api/v1/boards/"+b.ID.String()+"/invites", InviteCreateRequest{
		Email: "bob@example.com",
		Role:  "editor",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var inv InviteResponse
	require.NoError(t, json.Unmarshal(decodeData(t, rec)["invite"], &inv))

	expiresAt, err := time.Parse(time.RFC3339, inv.ExpiresAt)
	require.NoError(t, err)
	svc.now = func() time.Time { return expiresAt.Add(time.Second) }

	rec = doJSON(t, router, bob, http.MethodPost, "/api/v1/invites/"+inv.ID.String()+"/respond", InviteRespondRequest{Response: "accept"})
	require.Equal(t, http.StatusGone, rec.Code)
}

func TestHandleCollaborators(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(svc)
	alice := ident("Alice", "alice@example.com")
	bob := ident("Bob", "bob@example.com")
	b := createBoardHTTP(t, router, alice, "Shared", false)
	base := "/api/v1/boards/" + b.ID.String()

	inviteAndAccept(t, svc, alice, b.ID, bob, collab.RoleEditor)

	rec := doJSON(t, router, alice, http.MethodGet, base+"/collaborators", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Editors cannot manage the roster.
	rec = doJSON(t, router, bob, http.MethodPut, fmt.Sprintf("%s/collaborators/%s", base, bob.UserID), CollaboratorRoleRequest{Role: "viewer"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, alice, http.MethodPut, fmt.Sprintf("%s/collaborators/%s", base, bob.UserID), CollaboratorRoleRequest{Role: "viewer"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Viewers may still leave on their own.
	rec = doJSON(t, router, bob, http.MethodDelete, fmt.Sprintf("%s/collaborators/%s", base, bob.UserID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, bob, http.MethodGet, base+"/", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleUpdateSettings(t *testing.T) {
	svc, _ := newTestService(t)
	router := newTestRouter(svc)
	alice := ident("Alice", "alice@example.com")
	b := createBoardHTTP(t, router, alice, "Board", false)

	grid := 40
	rec := doJSON(t, router, alice, http.MethodPut, "/api/v1/boards/"+b.ID.String()+"/settings", SettingsPatch{GridSize: &grid})
	require.Equal(t, http.StatusOK, rec.Code)

	bad := -1
	rec = doJSON(t, router, alice, http.MethodPut, "/api/v1/boards/"+b.ID.String()+"/settings", SettingsPatch{GridSize: &bad})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHeartbeat(t *testing.T) {
	svc, pres := newTestService(t)
	router := newTestRouter(svc)
	alice := ident("Alice", "alice@example.com")
	b := createBoardHTTP(t, router, alice, "Board", false)

	rec := doJSON(t, router, alice, http.MethodPost, "/api/v1/boards/"+b.ID.String()+"/presence", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	online, err := pres.Online(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{alice.UserID}, online)

	rec = doJSON(t, router, identity.Identity{}, http.MethodPost, "/api/v1/boards/"+b.ID.String()+"/presence", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
