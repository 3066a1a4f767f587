package httpapi

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
)

// writeError maps a service error to an HTTP status and a JSON body.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrTokenExpired):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrTokenNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *HTTPServer) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.ErrValidation)
		return
	}

	id, err := s.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, identityResponse{ID: id.ID, Username: id.Username, Email: id.Email})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *HTTPServer) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.ErrValidation)
		return
	}

	id, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, identityResponse{ID: id.ID, Username: id.Username, Email: id.Email})
}

type forgotRequest struct {
	User string `json:"user"`
}

func (s *HTTPServer) RequestReset(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.ErrValidation)
		return
	}

	if err := s.auth.RequestReset(c.Request.Context(), req.User); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recovery code sent"})
}

type resetRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *HTTPServer) ApplyReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.ErrValidation)
		return
	}

	if err := s.auth.ApplyReset(c.Request.Context(), req.Username, req.Token, req.Password); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

type storeItemRequest struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Mime  string `json:"mime"`
	Data  []byte `json:"data"`
}

type itemResponse struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	Name      string `json:"name"`
	Mime      string `json:"mime"`
	Data      string `json:"data,omitempty"`
	CreatedAt string `json:"created_at"`
}

func (s *HTTPServer) StoreItem(c *gin.Context) {
	var req storeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, common.ErrValidation)
		return
	}

	item, err := s.items.Store(c.Request.Context(), req.Owner, req.Name, req.Mime, req.Data)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, itemResponse{
		ID:        item.ID,
		Owner:     item.Owner,
		Name:      item.Name,
		Mime:      item.Mime,
		CreatedAt: item.CreatedAt.Format(timeLayout),
	})
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func (s *HTTPServer) ListItems(c *gin.Context) {
	owner := c.Query("owner")

	items, err := s.items.List(c.Request.Context(), owner)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result := make([]itemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, itemResponse{
			ID:        item.ID,
			Owner:     item.Owner,
			Name:      item.Name,
			Mime:      item.Mime,
			CreatedAt: item.CreatedAt.Format(timeLayout),
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (s *HTTPServer) GetItem(c *gin.Context) {
	owner := c.Query("owner")
	name := c.Param("name")

	item, err := s.items.Get(c.Request.Context(), owner, name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, itemResponse{
		ID:        item.ID,
		Owner:     item.Owner,
		Name:      item.Name,
		Mime:      item.Mime,
		Data:      base64.StdEncoding.EncodeToString(item.Data),
		CreatedAt: item.CreatedAt.Format(timeLayout),
	})
}

func (s *HTTPServer) DeleteItem(c *gin.Context) {
	owner := c.Query("owner")
	name := c.Param("name")

	if err := s.items.Delete(c.Request.Context(), owner, name); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) Export(c *gin.Context) {
	owner := c.Query("owner")

	result, err := s.export.Export(c.Request.Context(), owner)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if result.DownloadURL != "" {
		c.JSON(http.StatusOK, gin.H{"download_url": result.DownloadURL})
		return
	}

	c.JSON(http.StatusOK, result.Snapshot)
}
