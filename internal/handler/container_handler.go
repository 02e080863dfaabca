package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hydrotrack/internal/model"
	"hydrotrack/internal/repository"
)

type ContainerHandler struct {
	repo   *repository.ContainerRepository
	logger *zap.Logger
}

func NewContainerHandler(repo *repository.ContainerRepository, logger *zap.Logger) *ContainerHandler {
	return &ContainerHandler{repo: repo, logger: logger}
}

type containerRequest struct {
	Name     string `json:"name" binding:"required"`
	VolumeML int    `json:"volume_ml" binding:"required"`
	Icon     string `json:"icon"`
}

func (h *ContainerHandler) ListContainers(c *gin.Context) {
	userID := c.GetInt("user_id")

	containers, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ListContainers: failed to fetch containers",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch containers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"containers": containers})
}

func (h *ContainerHandler) CreateContainer(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req containerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and volume_ml required"})
		return
	}
	if req.VolumeML <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "volume_ml must be positive"})
		return
	}

	container := &model.Container{
		UserID:   userID,
		Name:     req.Name,
		VolumeML: req.VolumeML,
		Icon:     req.Icon,
	}
	if _, err := h.repo.Insert(c.Request.Context(), container); err != nil {
		h.logger.Error("CreateContainer: failed to insert container",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create container"})
		return
	}

	c.JSON(http.StatusCreated, container)
}

func (h *ContainerHandler) UpdateContainer(c *gin.Context) {
	userID := c.GetInt("user_id")

	containerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid container id"})
		return
	}

	var req containerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and volume_ml required"})
		return
	}
	if req.VolumeML <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "volume_ml must be positive"})
		return
	}

	container := &model.Container{
		ID:       containerID,
		UserID:   userID,
		Name:     req.Name,
		VolumeML: req.VolumeML,
		Icon:     req.Icon,
	}
	if err := h.repo.Update(c.Request.Context(), container); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "container not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ContainerHandler) DeleteContainer(c *gin.Context) {
	userID := c.GetInt("user_id")

	containerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid container id"})
		return
	}

	deleted, err := h.repo.Delete(c.Request.Context(), userID, containerID)
	if err != nil {
		h.logger.Error("DeleteContainer: failed to delete container",
			zap.Int("user_id", userID),
			zap.Int("container_id", containerID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete container"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "container not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type reorderRequest struct {
	OrderedIDs []int `json:"ordered_ids" binding:"required"`
}

func (h *ContainerHandler) ReorderContainers(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ordered_ids required"})
		return
	}

	if err := h.repo.Reorder(c.Request.Context(), userID, req.OrderedIDs); err != nil {
		h.logger.Error("ReorderContainers: failed to reorder",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorder containers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
