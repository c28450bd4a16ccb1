package middleware

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"slices"

	"github.com/go-chi/render"

	apierrors "bikedash/internal/errors"
	"bikedash/internal/validation"
)

// maxJSONBody caps JSON request bodies; uploads have their own limit
const maxJSONBody = 1 << 20

// ValidationMiddleware decodes JSON bodies and checks their validate tags
type ValidationMiddleware struct {
	validator    *validation.StructValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator:    validation.NewStructValidator(),
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
		maxBodySize:  maxJSONBody,
	}
}

// DecodeAndValidate reads a JSON body into dst and validates it. On failure
// the problem response has been written and false is returned.
func (m *ValidationMiddleware) DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, m.maxBodySize)

	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			m.errorHandler.HandleError(w, r, err)
			return false
		}
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		m.logger.DebugContext(r.Context(), "invalid JSON body", slog.String("error", err.Error()))
		m.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return false
	}

	if err := m.validator.ValidateStruct(dst); err != nil {
		m.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	return m.validator.ValidateStruct(v)
}

// ContentTypeValidator ensures requests with a body declare one of the
// allowed media types
func ContentTypeValidator(errHandler *apierrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				errHandler.HandleError(w, r, apierrors.New(
					http.StatusBadRequest,
					apierrors.CodeInvalidRequest,
					"Content-Type header is required",
				))
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || !slices.Contains(contentTypes, mediaType) {
				errHandler.HandleError(w, r, apierrors.NewWithDetails(
					http.StatusUnsupportedMediaType,
					apierrors.CodeUnsupportedMedia,
					"Unsupported content type",
					map[string]interface{}{
						"content_type": contentType,
						"allowed":      contentTypes,
					},
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
