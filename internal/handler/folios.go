package handler

import (
	"net/http"

	"fixflow/internal/apierror"
	"fixflow/internal/dto"
	"fixflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FoliosHandler struct{ svc service.FolioService }

func NewFoliosHandler(svc service.FolioService) *FoliosHandler {
	return &FoliosHandler{svc: svc}
}

// Preview answers the folio that would most likely be issued next. Purely
// informational: nothing is reserved, so a concurrent writer may take it.
func (h *FoliosHandler) Preview(c *gin.Context) {
	var filter dto.FolioPreviewFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	branchID, err := uuid.Parse(filter.BranchID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeBadRequest, "Invalid branch id"))
		return
	}
	folio, err := h.svc.Preview(c.Request.Context(), actorFromContext(c), filter.Prefix, branchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FolioPreviewResponse{Folio: folio})
}
