// internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
	"github.com/ammerola/fieldstock-be/internal/handlers/middleware"
	"github.com/ammerola/fieldstock-be/internal/pkg/config"
)

const maxBodyBytes = 1 << 20

// Options tunes request limits shared by the stock handlers
type Options struct {
	MaxBatchItems        int
	DefaultPageSize      int
	MaxPageSize          int
	ExposeInternalErrors bool
}

// OptionsFromConfig derives handler options from the stock config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxBatchItems:        cfg.Stock.MaxBatchItems,
		DefaultPageSize:      cfg.Stock.DefaultPageSize,
		MaxPageSize:          cfg.Stock.MaxPageSize,
		ExposeInternalErrors: cfg.IsDevelopment(),
	}
}

func (o Options) withDefaults() Options {
	if o.MaxBatchItems <= 0 {
		o.MaxBatchItems = 100
	}
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = 20
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 100
	}
	return o
}

// Response is the JSON envelope of every API response
type Response struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Data    any                `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
	Code    domain.ErrorCode   `json:"code,omitempty"`
	Details map[string]any     `json:"details,omitempty"`
	Errors  []ports.BatchError `json:"errors,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// baseHandler holds what every stock handler needs to talk HTTP
type baseHandler struct {
	logger *slog.Logger
	opts   Options
}

func newBaseHandler(logger *slog.Logger, name string, opts Options) baseHandler {
	return baseHandler{
		logger: logger.With(slog.String("handler", name)),
		opts:   opts.withDefaults(),
	}
}

func (h *baseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *baseHandler) respondOK(w http.ResponseWriter, status int, message string, data any) {
	h.respondJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// respondError maps err onto the error taxonomy. Internal causes are only
// exposed in development.
func (h *baseHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := domain.ToAppError(err)

	body := Response{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	}

	if appErr.Code == domain.CodeInternal || appErr.HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("code", string(appErr.Code)),
			slog.String("error", err.Error()))
		if h.opts.ExposeInternalErrors && appErr.Err != nil {
			body.Details = map[string]any{"cause": appErr.Err.Error()}
		} else {
			body.Details = nil
		}
	} else {
		h.logger.DebugContext(r.Context(), "request rejected",
			slog.String("code", string(appErr.Code)),
			slog.String("error", appErr.Message))
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.respondJSON(w, status, body)
}

// respondBatch writes the partial-success envelope. A batch where every
// item failed is a 400; otherwise the succeeded items and any item errors
// are returned together with 200.
func (h *baseHandler) respondBatch(w http.ResponseWriter, r *http.Request, itemsKey string, succeeded any, succeededCount, total int, errs []ports.BatchError, extra map[string]any) {
	if total > 0 && len(errs) == total {
		h.logger.InfoContext(r.Context(), "batch failed",
			slog.Int("items", total))
		h.respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "all items failed",
			Error:   "all items failed",
			Code:    errs[0].Code,
			Errors:  errs,
		})
		return
	}

	data := map[string]any{
		itemsKey:     succeeded,
		"totalItems": total,
	}
	if len(errs) > 0 {
		data["errors"] = errs
	}
	for k, v := range extra {
		data[k] = v
	}

	message := fmt.Sprintf("%d of %d items processed", succeededCount, total)
	h.respondOK(w, http.StatusOK, message, data)
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags
func (h *baseHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("request body is required")
		}
		return domain.NewValidationError("invalid request body").Wrap(err).WithDetail("reason", err.Error())
	}

	if err := requestValidator().Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return domain.NewValidationError("request validation failed").WithDetail("fields", validationFields(verrs))
		}
		return domain.NewValidationError("request validation failed").Wrap(err)
	}
	return nil
}

func validationFields(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), strings.SplitN(e.Namespace(), ".", 2)[0]+".")
		switch e.Tag() {
		case "required":
			fields[field] = "is required"
		case "min", "gte":
			fields[field] = "must be at least " + e.Param()
		case "max", "lte":
			fields[field] = "must be at most " + e.Param()
		case "oneof":
			fields[field] = "must be one of " + e.Param()
		case "dive":
			fields[field] = "is invalid"
		default:
			fields[field] = "failed " + e.Tag() + " validation"
		}
	}
	return fields
}

// checkBatchSize rejects empty and oversized batches
func (h *baseHandler) checkBatchSize(n int) error {
	if n == 0 {
		return domain.NewValidationError("items must not be empty")
	}
	if n > h.opts.MaxBatchItems {
		return domain.NewValidationError("too many items: %d exceeds limit %d", n, h.opts.MaxBatchItems).
			WithDetail("limit", h.opts.MaxBatchItems)
	}
	return nil
}

// actor returns the caller or writes a 401
func (h *baseHandler) actor(w http.ResponseWriter, r *http.Request) (*domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "actor identity required",
			Code:    "UNAUTHENTICATED",
		})
		return nil, false
	}
	return actor, true
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid %s format", name).WithDetail(name, r.PathValue(name))
	}
	return id, nil
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.NewValidationError("invalid %s format", name).WithDetail(name, raw)
	}
	return &id, nil
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.NewValidationError("invalid %s, expected RFC 3339 or YYYY-MM-DD", name).WithDetail(name, raw)
	}
	return &t, nil
}

// parsePage reads page/limit/sort/order; limit is capped at MaxPageSize
func (h *baseHandler) parsePage(r *http.Request) ports.PageParams {
	params := ports.PageParams{
		Page:      1,
		PageSize:  h.opts.DefaultPageSize,
		SortOrder: "desc",
	}

	q := r.URL.Query()
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		params.PageSize = min(limit, h.opts.MaxPageSize)
	}
	if sortBy := q.Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := q.Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}
	return params
}
