// backend/src/handlers/import_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/username/gasfluxo/backend/src/config"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/security/validation"
	"github.com/username/gasfluxo/backend/src/services"
	"github.com/username/gasfluxo/backend/src/utils"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(service services.ImportService) *ImportHandler {
	return &ImportHandler{importService: service}
}

// HandleImport receives one statement file (multipart field "file") plus the
// format hint and target account, validates the upload, and runs the import.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	unitID, ok := GetUnitIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or unit not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "unitID", unitID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Falha ao processar ou o ficheiro é demasiado grande (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	format := r.FormValue("format")
	accountID := r.FormValue("accountId")

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "unitID", unitID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "unitID", unitID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Ficheiro demasiado grande, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "unitID", unitID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("Server-side file content validation failed", "unitID", unitID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing statement import", "unitID", unitID, "filename", fileHeader.Filename, "format", format)

	result, err := h.importService.ProcessImport(file, unitID, accountID, format, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Statement import failed", "unitID", unitID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "Failed to import statement", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}
