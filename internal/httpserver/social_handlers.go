package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdlsagar677/Social-Media/internal/service"
)

type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// @Summary      Like a post
// @Tags         post
// @Produce      json
// @Param        id   path  string  true  "Post id"
// @Success      200  {object}  actionResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /post/{id}/like [get]
func handleLikePost(social *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := social.LikePost(r.Context(), CurrentUserID(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Post liked"})
	}
}

// @Summary      Remove a like from a post
// @Tags         post
// @Produce      json
// @Param        id   path  string  true  "Post id"
// @Success      200  {object}  actionResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /post/{id}/dislike [get]
func handleDislikePost(social *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := social.DislikePost(r.Context(), CurrentUserID(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Post disliked"})
	}
}

// @Summary      Follow or unfollow a user
// @Tags         user
// @Produce      json
// @Param        id   path  string  true  "Target user id"
// @Success      200  {object}  actionResponse
// @Failure      400  {object}  errorResponse
// @Security     BearerAuth
// @Router       /user/followorunfollow/{id} [post]
func handleFollowOrUnfollow(social *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		followed, err := social.FollowOrUnfollow(r.Context(), CurrentUserID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		msg := "Unfollowed successfully"
		if followed {
			msg = "Followed successfully"
		}
		writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: msg})
	}
}
