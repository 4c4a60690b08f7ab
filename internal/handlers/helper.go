package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// parseUploadOptions reads generation options from multipart form fields.
// Quotas are set only when at least one of mcq, true_false or fill_blank is
// present.
func parseUploadOptions(c *gin.Context) (models.GenerationOptions, error) {
	opts := models.GenerationOptions{
		Mode: models.QuizMode(strings.TrimSpace(c.PostForm("mode"))),
	}

	var err error
	if opts.Count, _, err = formInt(c, "count"); err != nil {
		return opts, err
	}

	var quotas models.Quotas
	fields := []struct {
		name string
		dest *int
	}{
		{"mcq", &quotas.MCQ},
		{"true_false", &quotas.TrueFalse},
		{"fill_blank", &quotas.FillBlank},
	}
	anySet := false
	for _, f := range fields {
		value, set, err := formInt(c, f.name)
		if err != nil {
			return opts, err
		}
		*f.dest = value
		anySet = anySet || set
	}
	if anySet {
		opts.Quotas = &quotas
	}
	return opts, nil
}

func formInt(c *gin.Context, name string) (int, bool, error) {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a whole number", name)
	}
	return value, true, nil
}

func setAttachment(c *gin.Context, fileName string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
}
