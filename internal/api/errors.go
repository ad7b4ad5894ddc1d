package api

import (
	"errors"
	"net/http"
	"strings"

	"draftdesk/internal/providers"
	"draftdesk/internal/similarity"
	"draftdesk/internal/util"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "DD-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch providers.ClassifyError(err) {
		case providers.ErrorQuota, providers.ErrorRate:
			return apiError{
				Code:    "DD-LLM-5021",
				Message: "Language model quota or rate limit reached. Retry shortly.",
			}
		case providers.ErrorTransient:
			return apiError{
				Code:    "DD-LLM-5020",
				Message: "Language model provider unavailable. Retry shortly.",
			}
		case providers.ErrorSchema:
			return apiError{
				Code:    "DD-LLM-5022",
				Message: "Language model returned a malformed response. Retry the operation.",
			}
		default:
			return apiError{
				Code:    "DD-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "DD-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "DD-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "DD-API-4009"
		msg = "Another operation is already running. Retry when it finishes."
	case status == http.StatusMethodNotAllowed:
		code = "DD-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	// For 4xx, keep user-safe validation context only. Sentinels first,
	// message text for handler-local fmt.Errorf cases.
	if status >= 400 && status < 500 && err != nil {
		switch {
		case errors.Is(err, similarity.ErrDraftTooShort):
			msg = "The working draft is too short for a similarity check."
		case errors.Is(err, similarity.ErrNoDocuments), strings.Contains(raw, "no documents"):
			msg = "Upload at least one document first."
		case errors.Is(err, util.ErrEmptyInput), strings.Contains(raw, "draft is empty"):
			msg = "The working draft is empty."
		case strings.Contains(raw, "topic is required"):
			msg = "A review topic is required."
		case strings.Contains(raw, "no files provided"):
			msg = "No files were provided."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(raw, "no open suggestion"), strings.Contains(raw, "no open annotation"):
			msg = "That item is no longer open."
		case strings.Contains(raw, "empty question"):
			msg = "A question is required."
		}
	}

	return apiError{Code: code, Message: msg}
}
