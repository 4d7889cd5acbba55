package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/deepseek/models"
	"github.com/kbukum/deepseek/util"
)

// JSON builds a reply with v encoded as the body.
func JSON(status int, v any) Reply {
	body, err := json.Marshal(v)
	if err != nil {
		panic("apitest: encode reply: " + err.Error())
	}
	return Reply{Status: status, Body: string(body)}
}

// Raw builds a reply with a literal body.
func Raw(status int, body string) Reply {
	return Reply{Status: status, Body: body}
}

// Status builds a reply with an empty body.
func Status(status int) Reply {
	return Reply{Status: status}
}

// Error builds a DeepSeek error envelope reply.
func Error(status int, message, errType string) Reply {
	return JSON(status, models.APIErrorResponse{Error: models.APIErrorDetail{Message: message, Type: errType}})
}

// RateLimited builds a 429 reply with a Retry-After header in seconds.
func RateLimited(retryAfter time.Duration) Reply {
	r := Error(http.StatusTooManyRequests, "Rate limit reached for requests", "rate_limit_error")
	r.Headers = map[string]string{"Retry-After": strconv.Itoa(int(retryAfter.Seconds()))}
	return r
}

// Completion builds a 200 reply answering with content.
func Completion(content string) Reply {
	return JSON(http.StatusOK, CompletionResponse(content))
}

// Reasoning builds a 200 reply in the reasoner shape: reasoning_content
// set, content absent.
func Reasoning(reasoning string) Reply {
	resp := CompletionResponse("")
	resp.Model = models.Reasoner.String()
	resp.Choices[0].Message = models.ResponseMessage{
		Role:             models.RoleAssistant,
		ReasoningContent: util.Ptr(reasoning),
	}
	resp.Usage.ReasoningTokens = util.Ptr(len(reasoning))
	return JSON(http.StatusOK, resp)
}

// CompletionResponse returns a single-choice response answering with content.
func CompletionResponse(content string) models.ChatCompletionResponse {
	stop := models.FinishReasonStop
	return models.ChatCompletionResponse{
		ID:      "cmpl-test",
		Object:  "chat.completion",
		Created: 1700000000,
		Model:   models.Chat.String(),
		Choices: []models.Choice{{
			Index:        0,
			Message:      models.ResponseMessage{Role: models.RoleAssistant, Content: util.Ptr(content)},
			FinishReason: &stop,
		}},
		Usage: &models.Usage{PromptTokens: 5, CompletionTokens: len(content), TotalTokens: 5 + len(content)},
	}
}

// DefaultModels is the GET /models reply unless SetModels overrides it.
func DefaultModels() models.ModelList {
	return models.ModelList{
		Object: "list",
		Data: []models.ModelInfo{
			{ID: models.Chat.String(), Object: "model", OwnedBy: "deepseek"},
			{ID: models.Reasoner.String(), Object: "model", OwnedBy: "deepseek"},
		},
	}
}
