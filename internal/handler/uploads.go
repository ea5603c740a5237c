package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dev-shahrooz/Smart-Pricing/internal/apierror"
	"github.com/dev-shahrooz/Smart-Pricing/internal/dto"
	"github.com/dev-shahrooz/Smart-Pricing/internal/ingest"
	"github.com/dev-shahrooz/Smart-Pricing/internal/service"
)

// UploadsHandler receives the CSV feeds as multipart uploads. The part-price
// feed trains inline, so it needs the training service as well.
type UploadsHandler struct {
	ingest   service.IngestService
	training service.TrainingService
	maxRows  int
}

func NewUploadsHandler(ingest service.IngestService, training service.TrainingService, maxRows int) *UploadsHandler {
	return &UploadsHandler{ingest: ingest, training: training, maxRows: maxRows}
}

// PostSales handles POST /v1/uploads/sales.
func (h *UploadsHandler) PostSales(c *gin.Context) {
	h.handleUpload(c, h.ingest.ImportSales)
}

// PostFx handles POST /v1/uploads/fx.
func (h *UploadsHandler) PostFx(c *gin.Context) {
	h.handleUpload(c, h.ingest.ImportFx)
}

// PostBom handles POST /v1/uploads/bom.
func (h *UploadsHandler) PostBom(c *gin.Context) {
	h.handleUpload(c, h.ingest.ImportBom)
}

// PostParts handles POST /v1/uploads/parts: component price history in, one
// trained price-trend model per part out. Nothing is queued — the fits are
// cheap enough to run in the request.
func (h *UploadsHandler) PostParts(c *gin.Context) {
	f, ok := openCSVUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	byPart, rowErrs, err := ingest.LoadPartPrices(f, h.maxRows)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	summaries, err := h.training.TrainPartPrices(c.Request.Context(), byPart)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rows := 0
	for _, pts := range byPart {
		rows += len(pts)
	}
	rowErrStrings := make([]string, len(rowErrs))
	for i, e := range rowErrs {
		rowErrStrings[i] = e.Error()
	}
	c.JSON(http.StatusOK, dto.PartTrainSummary{
		RowsImported: rows,
		Models:       summaries,
		RowErrors:    rowErrStrings,
	})
}

func (h *UploadsHandler) handleUpload(c *gin.Context, importFn func(context.Context, io.Reader) (*dto.ImportSummary, error)) {
	f, ok := openCSVUpload(c)
	if !ok {
		return
	}
	defer f.Close()

	summary, err := importFn(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func openCSVUpload(c *gin.Context) (multipart.File, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("a CSV file is required in the 'file' field"))
		return nil, false
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, apierror.New("the uploaded file must be a .csv file"))
		return nil, false
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("could not read the uploaded file"))
		return nil, false
	}
	return f, true
}
