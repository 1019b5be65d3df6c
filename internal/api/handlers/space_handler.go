package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/interviewpro/backend/internal/providers/extract"
	"github.com/interviewpro/backend/internal/services"
	"github.com/interviewpro/backend/internal/utils"
)

type SpaceHandler struct {
	svc services.SpaceService
}

func NewSpaceHandler(svc services.SpaceService) *SpaceHandler {
	return &SpaceHandler{svc: svc}
}

// Create accepts a multipart form: companyName, jobPosition, jobDescription,
// interviewRounds (JSON array of round names) and the resume file.
func (h *SpaceHandler) Create(c *gin.Context) {
	studentID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	companyName := strings.TrimSpace(c.PostForm("companyName"))
	jobPosition := strings.TrimSpace(c.PostForm("jobPosition"))
	jobDescription := c.PostForm("jobDescription")

	rounds, err := parseRounds(c.PostForm("interviewRounds"))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SpaceHandler.Create", "invalid interviewRounds", err))
		return
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SpaceHandler.Create", "missing multipart field 'resume'", err))
		return
	}

	var mimeType string
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".pdf":
		mimeType = extract.MimePDF
	case ".docx":
		mimeType = extract.MimeDOCX
	default:
		writeError(c, utils.E(utils.CodeInvalidArgument, "SpaceHandler.Create", "only PDF and DOCX files are allowed", nil))
		return
	}
	if fh.Size <= 0 || fh.Size > 10<<20 {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SpaceHandler.Create", "file too large (max 10MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "SpaceHandler.Create", "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff the magic bytes: %PDF for pdf, PK zip header for docx
	head := make([]byte, 512)
	n, _ := file.Read(head)
	head = head[:n]
	if !matchesMagic(head, mimeType) {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SpaceHandler.Create", "file content does not match its extension", nil))
		return
	}

	// stitch the sniffed head back in front of the remaining upload
	reader := io.MultiReader(bytes.NewReader(head), file)

	sp, err := h.svc.Create(c.Request.Context(), studentID, services.CreateSpaceInput{
		CompanyName:    companyName,
		JobPosition:    jobPosition,
		JobDescription: jobDescription,
		Rounds:         rounds,
		ResumeFileName: fh.Filename,
		ResumeMimeType: mimeType,
		Resume:         reader,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "space": sp})
}

func (h *SpaceHandler) List(c *gin.Context) {
	studentID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	spaces, err := h.svc.List(c.Request.Context(), studentID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "spaces": spaces})
}

func (h *SpaceHandler) Get(c *gin.Context) {
	studentID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	spaceID, ok := parseSpaceID(c, c.Param("id"))
	if !ok {
		return
	}

	sp, err := h.svc.Get(c.Request.Context(), studentID, spaceID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "space": sp})
}

// Resume streams the stored resume file back to its owner.
func (h *SpaceHandler) Resume(c *gin.Context) {
	studentID, ok := requireUniqueID(c)
	if !ok {
		return
	}

	spaceID, ok := parseSpaceID(c, c.Param("id"))
	if !ok {
		return
	}

	rc, storedPath, err := h.svc.OpenResume(c.Request.Context(), studentID, spaceID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	contentType := extract.MimePDF
	if strings.HasSuffix(strings.ToLower(storedPath), ".docx") {
		contentType = extract.MimeDOCX
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `inline; filename="`+filepath.Base(storedPath)+`"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func parseSpaceID(c *gin.Context, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SpaceHandler", "invalid space id", err))
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseRounds accepts either a JSON array of names or a comma-separated list.
func parseRounds(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

func matchesMagic(head []byte, mimeType string) bool {
	switch mimeType {
	case extract.MimePDF:
		return bytes.HasPrefix(head, []byte("%PDF"))
	case extract.MimeDOCX:
		return bytes.HasPrefix(head, []byte("PK"))
	}
	return false
}
