package board

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/raibo/raiboard/internal/apperrors"
	"github.com/raibo/raiboard/internal/audit"
	"github.com/raibo/raiboard/internal/collab"
	"github.com/raibo/raiboard/internal/identity"
	"github.com/rs/zerolog/log"
)

type InviteCreateRequest struct {
	Email string      `json:"email"`
	Role  collab.Role `json:"role"`
}

type InviteResponse struct {
	ID           uuid.UUID           `json:"id"`
	BoardID      uuid.UUID           `json:"board_id"`
	InviterName  string              `json:"inviter_name"`
	InviteeEmail string              `json:"invitee_email"`
	Role         collab.Role         `json:"role"`
	Status       collab.InviteStatus `json:"status"`
	CreatedAt    string              `json:"created_at"`
	ExpiresAt    string              `json:"expires_at"`
}

type InviteRespondRequest struct {
	Response string `json:"response"`
}

func inviteResponse(inv *collab.Invite) InviteResponse {
	return InviteResponse{
		ID:           inv.ID,
		BoardID:      inv.BoardID,
		InviterName:  inv.InviterName,
		InviteeEmail: inv.InviteeEmail,
		Role:         inv.Role,
		Status:       inv.Status,
		CreatedAt:    inv.CreatedAt.Format(time.RFC3339),
		ExpiresAt:    inv.ExpiresAt.Format(time.RFC3339),
	}
}

// HandleCreateInvite handles POST /api/v1/boards/{board_id}/invites
func HandleCreateInvite(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		var req InviteCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}
		if _, err := collab.NormalizeEmail(req.Email); err != nil {
			apperrors.WriteBadRequest(w, r, err.Error())
			return
		}
		if req.Role == "" {
			req.Role = collab.RoleViewer
		}
		if !req.Role.IsValid() {
			apperrors.WriteBadRequest(w, r, "Role must be editor or viewer")
			return
		}

		inv, err := svc.Invite(ctx, actor, boardID, req.Email, req.Role)
		if err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogInviteCreated(ctx, boardID, actor.UserID, inv.ID, inv.InviteeEmail, string(inv.Role)); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusCreated, map[string]any{
			"invite": inviteResponse(inv),
		})
	}
}

// HandleListInvites handles GET /api/v1/boards/{board_id}/invites
func HandleListInvites(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}

		invites, err := svc.ListInvites(ctx, actor, boardID)
		if err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		out := make([]InviteResponse, 0, len(invites))
		for i := range invites {
			out = append(out, inviteResponse(&invites[i]))
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"invites": out,
		})
	}
}

// HandleRevokeInvite handles DELETE /api/v1/boards/{board_id}/invites/{invite_id}
func HandleRevokeInvite(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		boardID, ok := urlUUID(r, "board_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid board ID")
			return
		}
		inviteID, ok := urlUUID(r, "invite_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid invite ID")
			return
		}

		if err := svc.RevokeInvite(ctx, actor, boardID, inviteID); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			if err := auditor.LogInviteRevoked(ctx, boardID, actor.UserID, inviteID); err != nil {
				log.Error().Err(err).Msg("Failed to log audit event")
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"revoked": true,
		})
	}
}

// HandleRespondInvite handles POST /api/v1/invites/{invite_id}/respond
func HandleRespondInvite(svc *Service, auditor *audit.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := identity.FromContext(ctx)

		inviteID, ok := urlUUID(r, "invite_id")
		if !ok {
			apperrors.WriteBadRequest(w, r, "Invalid invite ID")
			return
		}

		var req InviteRespondRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid request body")
			return
		}

		var accept bool
		switch req.Response {
		case "accept":
			accept = true
		case "decline":
			accept = false
		default:
			apperrors.WriteBadRequest(w, r, "Response must be accept or decline")
			return
		}

		if err := svc.RespondToInvite(ctx, actor, inviteID, accept); err != nil {
			writeServiceError(w, r, actor, err)
			return
		}

		if auditor != nil {
			inv, err := svc.store.GetInvite(ctx, inviteID)
			if err == nil {
				if err := auditor.LogInviteResponded(ctx, inv.BoardID, actor.UserID, inviteID, accept); err != nil {
					log.Error().Err(err).Msg("Failed to log audit event")
				}
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]any{
			"accepted": accept,
		})
	}
}
