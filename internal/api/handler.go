package api

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	log "github.com/sirupsen/logrus"

	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/pipeline"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/platform/gemini"
	"github.com/AyoAyoos/Intelligent-Recipe-Generator/internal/recipe"
)

const listTimeout = 5 * time.Second

// Archived upload artifacts are downscaled to this width.
const archiveWidth = 800

// Analyzer runs the full analysis pipeline for one uploaded image.
type Analyzer interface {
	Analyze(ctx context.Context, req pipeline.Request) *pipeline.Response
}

// RecipeLister is the read side of the store used by the recipes endpoint.
type RecipeLister interface {
	ListAll(ctx context.Context) ([]*recipe.Recipe, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Pipeline  Analyzer
	Store     RecipeLister
	UploadDir string
}

// NewHandler creates a new Handler.
func NewHandler(p Analyzer, store RecipeLister, uploadDir string) *Handler {
	return &Handler{Pipeline: p, Store: store, UploadDir: uploadDir}
}

// Analyze handles image uploads: it runs the analysis pipeline and returns
// the per-stage results as JSON. The response always carries the submitted
// filename; sub-results may be absent when their stage failed.
func (h *Handler) Analyze(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		log.Warnf("api: error getting form file: %v", err)
		c.String(http.StatusBadRequest, fmt.Sprintf("get form err: %s", err.Error()))
		return
	}

	// Validate file extension
	allowedExtensions := map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
	}
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[extension] {
		c.String(http.StatusBadRequest, "Invalid file type. Only JPEG, JPG, and PNG images are allowed.")
		return
	}

	src, err := file.Open()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("open file err: %s", err.Error()))
		return
	}
	defer src.Close()

	imageData, err := io.ReadAll(src)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("read image err: %s", err.Error()))
		return
	}

	// The stored artifact gets a request-unique name, never the client
	// filename: concurrent uploads of the same name must not overwrite each
	// other.
	if path, err := h.archiveUpload(imageData, extension); err != nil {
		log.Warnf("api: failed to archive upload %s: %v", file.Filename, err)
	} else {
		log.Debugf("api: archived upload %s as %s", file.Filename, path)
	}

	resp := h.Pipeline.Analyze(c.Request.Context(), pipeline.Request{
		Filename:  file.Filename,
		ImageData: imageData,
		ImageHash: gemini.GenerateImageHash(imageData),
	})

	c.JSON(http.StatusOK, resp)
}

// ListRecipes returns every persisted recipe. An empty store is an empty JSON
// array, not an error.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), listTimeout)
	defer cancel()

	recipes, err := h.Store.ListAll(ctx)
	if err != nil {
		log.Errorf("api: failed to list recipes: %v", err)
		c.String(http.StatusInternalServerError, "database error")
		return
	}
	if recipes == nil {
		recipes = []*recipe.Recipe{}
	}

	c.JSON(http.StatusOK, recipes)
}

// archiveUpload keeps a downscaled copy of the uploaded image as a side
// artifact under the upload directory.
func (h *Handler) archiveUpload(imageData []byte, originalExtension string) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	img = resize.Resize(archiveWidth, 0, img, resize.Lanczos3)

	if err := os.MkdirAll(h.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	imagePath := filepath.Join(h.UploadDir, uuid.NewString()+originalExtension)
	out, err := os.Create(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer out.Close()

	switch originalExtension {
	case ".jpeg", ".jpg":
		err = jpeg.Encode(out, img, nil)
	case ".png":
		err = png.Encode(out, img)
	default:
		return "", fmt.Errorf("unsupported image format: %s", originalExtension)
	}

	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	return imagePath, nil
}
