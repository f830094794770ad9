package board

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/apperrors"
	"github.com/raibo/raiboard/internal/audit"
	"github.com/raibo/raiboard/internal/catalog"
	"github.com/raibo/raiboard/internal/collab"
	"github.com/raibo/raiboard/internal/geometry"
	"github.com/raibo/raiboard/internal/identity"
	"github.com/raibo/raiboard/internal/validation"
	"github.com/rs/zerolog/log"
)

type BoardCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type PlaceProductRequest struct {
	ProductID string         `json:"product_id"`
	Position  geometry.Point `json:"position"`
	Size      geometry.Size  `json:"size"`
}

type PlaceTextRequest struct {
	Kind     TextKind       `json:"kind"`
	Position geometry.Point `json:"position"`
}

type LayerRequest struct {
	Layer Layer `json:"layer"`
}

type CollaboratorRoleRequest struct {
	Role collab.Role `json:"role"`
}

// writeServiceError maps domain errors onto the API envelope. Unknown
// errors become a logged 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, actor identity.Identity, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		if actor.IsAnonymous() {
			apperrors.WriteUnauthorized(w, r, "Authentication required")
			return
		}
		apperrors.WriteForbidden(w, r, "Insufficient permissions")
	case errors.Is(err, ErrBoardNotFound):
		apperrors.WriteNotFound(w, r, "Board not found")
	case errors.Is(err, ErrElementNotFound):
		apperrors.WriteNotFound(w, r, "Element not found")
	case errors.Is(err, ErrInviteNotFound):
		apperrors.WriteNotFound(w, r, "Invite not found")
	case errors.Is(err, collab.ErrNotCollaborator):
		apperrors.WriteNotFound(w, r, "Collaborator not found")
	case errors.Is(err, ErrOverlap):
		apperrors.WriteConflict(w, r, "Element would overlap an existing element")
	case errors.Is(err, ErrOwnerImmutable):
		apperrors.WriteConflict(w, r, "The owner's role cannot be changed")
	case errors.Is(err, collab.ErrAlreadyCollaborator):
		apperrors.WriteConflict(w, r, "User is already a collaborator")
	case errors.Is(err, collab.ErrInvalidTransition):
		apperrors.WriteConflict(w, r, "Invite already settled")
	case errors.Is(err, collab.ErrInviteExpired):
		apperrors.WriteGone(w, r, "Invite expired")
	case errors.Is(err, collab.ErrEmailMismatch):
		apperrors.WriteForbidden(w, r, "Invite email does not match your account")
	case errors.Is(err, catalog.ErrProductNotFound):
		apperrors.WriteBadRequest(w, r, "Unknown product")
	case errors.Is(err, ErrInvalidSettings),
		errors.Is(err, ErrInvalidGeometry),
		errors.Is(err, ErrInvalidPatch),
		errors.Is(err, geometry.ErrInvalidGridSize),
		errors.Is(err, collab.ErrInvalidRole):
		apperrors.WriteBadRequest(w, r, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Board operation failed")
		apperrors.WriteInternalError(w, r, "Internal server error")
	}
}

func urlUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// HandleCreate handles POST /api/v1/boards
func HandleCreate(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		var req BoardCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if err := validation.ValidateBoardName(req.Name); err != nil {
			apperrors.WriteBadRequest(w, r, err.Error())
			return
		}

		b, err := svc.CreateBoard(ctx, actor, req.Name, req.Description, req.IsPublic)
		if err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogBoardCreated(ctx, b.ID, actor.UserID, b.Name); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"board": b,
		})
	}
}

// HandleList handles GET /api/v1/boards
func HandleList(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boards, err := svc.ListBoards(ctx, actor)
		if err != nil {
			writeServiceError(w, r, actor, err)
			return
		}
		if boards == nil {
			boards = []*Board{}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"boards": boards,
		})
	}
}

// HandleGet handles GET /api/v1/boards/{board_id}
func HandleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		b, err := svc.GetBoard(ctx, actor, boardID)
		if err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"board": b,
		})
	}
}

// HandleUpdate handles PUT /api/v1/boards/{board_id}
func HandleUpdate(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		var patch InfoPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if patch.Name != nil {
			if err := validation.ValidateBoardName(*patch.Name); err != nil {
				apperrors.WriteBadRequest(w, r, err.Error())
				return
			}
		}

		if err := svc.UpdateBoardInfo(ctx, actor, boardID, patch); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogBoardUpdated(ctx, boardID, actor.UserID); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"updated": true,
		})
	}
}

// HandleDelete handles DELETE /api/v1/boards/{board_id}
func HandleDelete(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		if err := svc.DeleteBoard(ctx, actor, boardID); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogBoardDeleted(ctx, boardID, actor.UserID); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"deleted": true,
		})
	}
}

// HandleUpdateSettings handles PUT /api/v1/boards/{board_id}/settings
func HandleUpdateSettings(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		var patch SettingsPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		if err := svc.UpdateSettings(ctx, actor, boardID, patch); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogSettingsUpdated(ctx, boardID, actor.UserID); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"updated": true,
		})
	}
}

// HandlePlaceProduct handles POST /api/v1/boards/{board_id}/elements/products
func HandlePlaceProduct(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		var req PlaceProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if req.ProductID == "" {
			apperrors.WriteBadRequest(w, r, "Product ID is required")
			return
		}

		el, err := svc.PlaceProduct(ctx, actor, boardID, req.ProductID, req.Position, req.Size)
		if err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogElementPlaced(ctx, boardID, actor.UserID, el.ID, string(KindProduct)); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"element": el,
		})
	}
}

// HandlePlaceText handles POST /api/v1/boards/{board_id}/elements/texts
func HandlePlaceText(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		var req PlaceTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		el, err := svc.PlaceText(ctx, actor, boardID, req.Kind, req.Position)
		if err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogElementPlaced(ctx, boardID, actor.UserID, el.ID, string(KindText)); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"element": el,
		})
	}
}

// HandleUpdateElement handles PATCH /api/v1/boards/{board_id}/elements/{element_id}
func HandleUpdateElement(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}
		elementID, ok := urlUUID(r, "element_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid element ID")
			return
		}

		var patch ElementPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if patch.Color != nil {
			if err := validation.ValidateHexColor(*patch.Color); err != nil {
				apperrors.WriteBadRequest(w, r, err.Error())
				return
			}
		}
		if patch.FontWeight != nil {
			if err := validation.ValidateFontWeight(*patch.FontWeight); err != nil {
				apperrors.WriteBadRequest(w, r, err.Error())
				return
			}
		}

		if err := svc.UpdateElement(ctx, actor, boardID, elementID, patch); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogElementUpdated(ctx, boardID, actor.UserID, elementID); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"updated": true,
		})
	}
}

// HandleSetElementLayer handles PUT /api/v1/boards/{board_id}/elements/{element_id}/layer
func HandleSetElementLayer(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}
		elementID, ok := urlUUID(r, "element_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid element ID")
			return
		}

		var req LayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if !req.Layer.IsValid() {
			apperrors.WriteBadRequest(w, r, "Layer must be front or back")
			return
		}

		if err := svc.SetElementLayer(ctx, actor, boardID, elementID, req.Layer); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogElementLayered(ctx, boardID, actor.UserID, elementID, string(req.Layer)); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"updated": true,
		})
	}
}

// HandleRemoveElement handles DELETE /api/v1/boards/{board_id}/elements/{element_id}
func HandleRemoveElement(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}
		elementID, ok := urlUUID(r, "element_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid element ID")
			return
		}

		if err := svc.RemoveElement(ctx, actor, boardID, elementID); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogElementRemoved(ctx, boardID, actor.UserID, elementID); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"deleted": true,
		})
	}
}

// HandleListCollaborators handles GET /api/v1/boards/{board_id}/collaborators
func HandleListCollaborators(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		roster, err := svc.ListCollaborators(ctx, actor, boardID)
		if err != nil {
			writeServiceError(w, r, actor, err)
			return
		}
		if roster == nil {
			roster = collab.Roster{}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"collaborators": roster,
		})
	}
}

// HandleSetCollaboratorRole handles PUT /api/v1/boards/{board_id}/collaborators/{user_id}
func HandleSetCollaboratorRole(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}
		targetID, ok := urlUUID(r, "user_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid user ID")
			return
		}

		var req CollaboratorRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if !req.Role.IsValid() {
			apperrors.WriteBadRequest(w, r, "Role must be editor or viewer")
			return
		}

		if err := svc.SetCollaboratorRole(ctx, actor, boardID, targetID, req.Role); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogCollaboratorRoleUpdated(ctx, boardID, actor.UserID, targetID, string(req.Role)); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"updated": true,
		})
	}
}

// HandleRemoveCollaborator handles DELETE /api/v1/boards/{board_id}/collaborators/{user_id}
func HandleRemoveCollaborator(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}
		targetID, ok := urlUUID(r, "user_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid user ID")
			return
		}

		if err := svc.RemoveCollaborator(ctx, actor, boardID, targetID); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogCollaboratorRemoved(ctx, boardID, actor.UserID, targetID); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"removed": true,
		})
	}
}

// HandleHeartbeat handles POST /api/v1/boards/{board_id}/presence
func HandleHeartbeat(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		if err := svc.Heartbeat(ctx, actor, boardID); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"online": true,
		})
	}
}

// HandleListEvents handles GET /api/v1/boards/{board_id}/events
func HandleListEvents(svc *Service, reader *audit.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		b, err := svc.GetBoard(ctx, actor, boardID)
		if err != nil {
			writeServiceError(w, r, actor, err)
			return
		}
		// The activity log is the owner's view.
		if b.OwnerID != actor.UserID {
			writeServiceError(w, r, actor, ErrForbidden)
			return
		}

		events, err := reader.ListByBoard(ctx, boardID, 50)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list board events")
			apperrors.WriteInternalError(w, r, "Failed to list board events")
			return
		}
		if events == nil {
			events = []audit.Event{}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"events": events,
		})
	}
}
