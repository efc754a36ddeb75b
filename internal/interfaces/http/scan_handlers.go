package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/rendicion/internal/ai"
	"github.com/garyjia/rendicion/internal/application/service"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

// maxMultipartBytes caps what is read from the image part; the scan service
// applies the configured limit.
const maxMultipartBytes = 32 << 20

// scanResponse keeps the draft at the top level, next to success
type scanResponse struct {
	Success bool   `json:"success"`
	RawText string `json:"rawText"`
	*service.ScanResult
}

// analyzeTextRequest carries text the client recognized and, optionally,
// fields an AI already guessed. The guess goes through the same repair as
// model output.
type analyzeTextRequest struct {
	Text  string          `json:"texto"`
	Guess json.RawMessage `json:"datos"`
}

// scanImageRequest is the JSON form of a scan: a data URL such as
// "data:image/jpeg;base64,..." or bare base64
type scanImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// ScanReceipt handles POST /api/ocr/scan. The image comes either as the
// multipart field "image" or as a JSON scanImageRequest.
func (h *Handlers) ScanReceipt(c *gin.Context) {
	var (
		upload service.Upload
		ok     bool
	)
	if c.ContentType() == gin.MIMEJSON {
		upload, ok = jsonUpload(c)
	} else {
		upload, ok = multipartUpload(c)
	}
	if !ok {
		return
	}

	result, err := h.services.Scanner.ScanImage(c.Request.Context(), upload)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scanResponse{Success: true, RawText: result.Draft.RawText, ScanResult: result})
}

func multipartUpload(c *gin.Context) (service.Upload, bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "No se envió imagen")
		return service.Upload{}, false
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "No se pudo leer la imagen")
		return service.Upload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxMultipartBytes+1))
	if err != nil {
		fail(c, http.StatusBadRequest, "No se pudo leer la imagen")
		return service.Upload{}, false
	}
	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func jsonUpload(c *gin.Context) (service.Upload, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartBytes/3*4+1024)

	var req scanImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "No se envió imagen")
		return service.Upload{}, false
	}
	contentType, data, err := decodeDataURL(req.Image)
	if err != nil {
		fail(c, http.StatusBadRequest, "No se pudo leer la imagen")
		return service.Upload{}, false
	}
	return service.Upload{ContentType: contentType, Data: data}, true
}

// decodeDataURL accepts "data:<mime>;base64,<payload>" or a bare base64
// payload. The declared type is informational; the scan service sniffs the
// bytes.
func decodeDataURL(s string) (string, []byte, error) {
	s = strings.TrimSpace(s)
	var contentType string
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return "", nil, errors.New("image is not a base64 data URL")
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		s = payload
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(data) == 0 {
		return "", nil, errors.New("image is empty")
	}
	return contentType, data, nil
}

// AnalyzeText handles POST /api/ocr/text
func (h *Handlers) AnalyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, msgBadBody)
		return
	}

	var guess *receipt.AIGuess
	if raw := strings.TrimSpace(string(req.Guess)); raw != "" && raw != "null" {
		g, err := ai.ParseGuess(raw)
		if err != nil {
			h.logger.Error("Ignoring client guess", "error", err)
		} else {
			guess = g
		}
	}

	result := h.services.Scanner.ScanText(c.Request.Context(), req.Text, guess)
	c.JSON(http.StatusOK, scanResponse{Success: true, RawText: result.Draft.RawText, ScanResult: result})
}

// GetReceipt handles GET /api/ocr/comprobantes/*path
func (h *Handlers) GetReceipt(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")
	data, err := h.services.Scanner.Receipt(c.Request.Context(), rel)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
