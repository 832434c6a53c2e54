package adminapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/random"
	"github.com/pkg/errors"

	"github.com/modvice/shopstock/internal/webserver"
	"github.com/modvice/shopstock/pkg/common"
)

const maxUploadBatch = 6

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// registerUploadRoutes registers image upload routes
func registerUploadRoutes() {
	webserver.ApiPOST("/uploads/image", uploadImage)
	webserver.ApiPOST("/uploads/images", uploadImages)
}

func uploadDir(c echo.Context) string {
	return common.MakeWorkDir(webserver.AppCtx(c).Config().System.Workdir, "uploads")
}

func saveUpload(file *multipart.FileHeader, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		return "", errors.Errorf("unsupported file type %q", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer src.Close()

	name := random.String(16) + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.WithStack(err)
	}
	return "/uploads/" + name, nil
}

func uploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Image file is required", nil)
	}

	url, err := saveUpload(file, uploadDir(c))
	if err != nil {
		return fail(c, http.StatusBadRequest, "UPLOAD_FAILED", err.Error(), nil)
	}

	return ok(c, map[string]interface{}{"url": url})
}

func uploadImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Multipart form is required", nil)
	}

	files := form.File["images"]
	if len(files) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "At least one image is required", nil)
	}
	if len(files) > maxUploadBatch {
		return fail(c, http.StatusBadRequest, "TOO_MANY_FILES", "Too many files in one batch", nil)
	}

	dir := uploadDir(c)
	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := saveUpload(file, dir)
		if err != nil {
			return fail(c, http.StatusBadRequest, "UPLOAD_FAILED", err.Error(), nil)
		}
		urls = append(urls, url)
	}

	return ok(c, map[string]interface{}{"urls": urls})
}
