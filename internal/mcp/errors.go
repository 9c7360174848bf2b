package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/repository"
	"github.com/NomuraAI/SIGADES-sub000/internal/sheet"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "record not found", RecoveryHint: "List records to find a current id"}
	case errors.Is(err, repository.ErrPermissionDenied):
		return &APIError{Code: "PERMISSION_DENIED", Message: "operation not allowed on this backend", RecoveryHint: "Clearing is only available on the local backend"}
	case errors.Is(err, dataset.ErrConfirmationRequired):
		return &APIError{Code: "CONFIRMATION_REQUIRED", Message: "operation needs explicit confirmation", RecoveryHint: "Ask the user, then retry with confirm=true"}
	case errors.Is(err, repository.ErrTransient):
		return &APIError{Code: "TRANSIENT_BACKEND", Message: "backend call failed", RecoveryHint: "Check connectivity; rerunning a smart_update import is safe"}
	case errors.Is(err, dataset.ErrInvalidMode):
		return &APIError{Code: "INVALID_MODE", Message: "unknown import mode", RecoveryHint: "Use smart_update or replace_append"}
	case errors.Is(err, sheet.ErrUnsupportedFormat), errors.Is(err, sheet.ErrNoHeader), errors.Is(err, sheet.ErrSheetNotFound):
		return &APIError{Code: "INVALID_SPREADSHEET", Message: err.Error(), RecoveryHint: "Pass an .xlsx or .csv file with a header row"}
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput), errors.Is(err, repository.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check the arguments"}
	default:
		return nil
	}
}

// errorResult renders err as a tool error. details, when non-nil, carries
// partial progress such as import counts.
func errorResult(err error, details any) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	if details != nil {
		apiErr.Details = details
	}
	data, marshalErr := json.Marshal(apiErr)
	if marshalErr != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
