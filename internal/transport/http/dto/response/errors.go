package response

// Error codes of ErrorResponse.Error.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeAuthFailed        = "authentication_failed"
	CodeNotEditor         = "not_editor"
	CodeEditorClosed      = "editor_closed"
	CodeUnsavedChanges    = "unsaved_changes"
	CodeInFlight          = "operation_in_flight"
	CodeInvalidEdit       = "invalid_edit"
	CodeUnsupportedMedia  = "unsupported_media"
	CodeAssetNotFound     = "asset_not_found"
	CodeAssetForbidden    = "asset_forbidden"
	CodeProcessingTimeout = "processing_timeout"
	CodeBackend           = "backend_unavailable"
	CodeUploadFailed      = "upload_failed"
	CodeProcessingFailed  = "processing_failed"
	CodeInternal          = "internal_error"
)

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   CodeInvalidRequest,
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  CodeAuthFailed,
	}

	ErrEditorRequired = ErrorResponse{
		Status:  "error",
		Error:   CodeNotEditor,
		Details: "Editor authentication required",
	}
)
