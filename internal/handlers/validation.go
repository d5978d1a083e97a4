package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/response"
	appValidator "github.com/promptdeck/promptdeck/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("요청 본문을 해석할 수 없습니다"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	if err == nil {
		return "잘못된 요청입니다"
	}

	if ve, ok := err.(appValidator.ValidationErrors); ok {
		if len(ve) == 0 {
			return "잘못된 요청입니다"
		}

		messages := make([]string, 0, len(ve))
		for _, failure := range ve {
			field := failure.Field
			switch failure.Tag {
			case "required":
				messages = append(messages, fmt.Sprintf("%s 항목은 필수입니다", field))
			case "email":
				messages = append(messages, fmt.Sprintf("%s 항목은 올바른 이메일 주소여야 합니다", field))
			case "min":
				messages = append(messages, fmt.Sprintf("%s 항목은 최소 %s자 이상이어야 합니다", field, failure.Param))
			case "max":
				messages = append(messages, fmt.Sprintf("%s 항목은 최대 %s자까지 가능합니다", field, failure.Param))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s 항목은 다음 중 하나여야 합니다: %s", field, failure.Param))
			default:
				if failure.Param != "" {
					messages = append(messages, fmt.Sprintf("%s 항목이 유효하지 않습니다 (%s=%s)", field, failure.Tag, failure.Param))
				} else {
					messages = append(messages, fmt.Sprintf("%s 항목이 유효하지 않습니다 (%s)", field, failure.Tag))
				}
			}
		}
		return strings.Join(messages, "; ")
	}

	return "잘못된 요청입니다"
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
