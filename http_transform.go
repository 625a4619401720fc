package keycase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoResolver   = errors.New("a case format resolver is required")
	ErrBodyTooLarge = errors.New("request body exceeds the configured limit")
)

// CaseFormatResolver picks the case format a client speaks. Returning the
// zero format leaves the request and response untouched.
type CaseFormatResolver func(r *http.Request) (CaseFormat, error)

// HeaderResolver reads the client case format from a request header, for
// example "X-Case-Format: snake".
func HeaderResolver(header string) CaseFormatResolver {
	return func(r *http.Request) (CaseFormat, error) {
		return ParseCaseFormat(r.Header.Get(header))
	}
}

// UserAgentResolver returns the format of the first substring, in sorted
// order, contained in the User-Agent header.
func UserAgentResolver(formats map[string]CaseFormat) CaseFormatResolver {
	keys := make([]string, 0, len(formats))
	for k := range formats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return func(r *http.Request) (CaseFormat, error) {
		ua := r.Header.Get(HeaderUserAgent)
		for _, k := range keys {
			if strings.Contains(ua, k) {
				return formats[k], nil
			}
		}
		return "", nil
	}
}

// TransformBodyOpts configures the HTTP body transform.
type TransformBodyOpts struct {
	// InternalCaseFormat is the format handlers read and write.
	InternalCaseFormat CaseFormat
	// ValidateRequestBody logs the diagnostics of inbound bodies.
	ValidateRequestBody bool
	// RejectInvalidRequestBody answers 400 with the diagnostics when an
	// inbound body has any.
	RejectInvalidRequestBody bool
	// Resolver picks the client case format per request.
	Resolver CaseFormatResolver
	// Formatters are applied to outbound bodies.
	Formatters []Formatter
	Registry   *CaseRegistry
	Logger     *zap.Logger
	// MaxBodyBytes limits inbound bodies. Zero means no limit.
	MaxBodyBytes int64
}

// TransformBody converts JSON bodies between the client case format and
// the internal one: requests on the way in, responses on the way out.
type TransformBody struct {
	opts   TransformBodyOpts
	logger *zap.Logger
}

func NewTransformBody(opts TransformBodyOpts) (*TransformBody, error) {
	if opts.Resolver == nil {
		return nil, ErrNoResolver
	}

	reg := opts.Registry
	if reg == nil {
		reg = DefaultRegistry()
		opts.Registry = reg
	}
	if _, err := reg.Transformer(opts.InternalCaseFormat); err != nil {
		return nil, fmt.Errorf("invalid internal case format: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TransformBody{opts: opts, logger: logger}, nil
}

// Middleware wraps next with the inbound and outbound transforms. The
// response is buffered until next returns, so it does not suit handlers
// that stream.
func (tb *TransformBody) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		logger := tb.logger.With(zap.String("request_id", requestID))
		w.Header().Set(HeaderRequestID, requestID)

		external, err := tb.opts.Resolver(r)
		if err != nil {
			logger.Warn("failed to resolve case format", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if external.IsZero() {
			next.ServeHTTP(w, r)
			return
		}

		if isJSONContentType(r.Header.Get(HeaderContentType)) {
			result, err := tb.transformRequest(r, external, logger)
			if err != nil {
				status := http.StatusBadRequest
				if errors.Is(err, ErrBodyTooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				logger.Warn("failed to transform request body", zap.Error(err))
				http.Error(w, err.Error(), status)
				return
			}
			if tb.opts.RejectInvalidRequestBody && len(result.Errors) > 0 {
				writeErrors(w, external, result.Errors)
				return
			}
		}

		bw := &bufferedResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(bw, r.WithContext(withCaseFormat(r.Context(), external)))
		tb.flushResponse(bw, external, logger)
	})
}

///////////////////////////////////////////////////////////////////////////////
// Inbound
///////////////////////////////////////////////////////////////////////////////

// transformRequest rewrites r.Body from the client format into the
// internal one. An empty body is left alone.
func (tb *TransformBody) transformRequest(r *http.Request, external CaseFormat, logger *zap.Logger) (Result, error) {
	empty := Result{Errors: make(Errors, 0)}
	if r.Body == nil || r.Body == http.NoBody {
		return empty, nil
	}

	body, err := tb.readBody(r)
	if err != nil {
		return empty, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		r.Body = io.NopCloser(bytes.NewReader(body))
		return empty, nil
	}

	// Identical formats are still validated but keys are left as they are.
	var toCase CaseFormat
	if external != tb.opts.InternalCaseFormat {
		toCase = tb.opts.InternalCaseFormat
	}

	opts := Options{
		ToCase:   toCase,
		Registry: tb.opts.Registry,
		Logger:   logger,
	}
	if _, err := tb.opts.Registry.Validator(external); err == nil {
		opts.FromCase = external
	}

	result, err := MapJSON(body, opts)
	if err != nil {
		return empty, fmt.Errorf("failed to map request body: %w", err)
	}

	if tb.opts.ValidateRequestBody && len(result.Errors) > 0 {
		logger.Warn("invalid request body",
			zap.Stringer("case_format", external),
			zap.Int("errors", len(result.Errors)),
			zap.Strings("paths", result.Errors.Paths()),
		)
	}

	mapped, err := result.JSON()
	if err != nil {
		return empty, fmt.Errorf("failed to encode request body: %w", err)
	}

	r.Body = io.NopCloser(bytes.NewReader(mapped))
	r.ContentLength = int64(len(mapped))
	r.Header.Set("Content-Length", strconv.Itoa(len(mapped)))
	return result, nil
}

func (tb *TransformBody) readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()

	reader := io.Reader(r.Body)
	if tb.opts.MaxBodyBytes > 0 {
		reader = io.LimitReader(r.Body, tb.opts.MaxBodyBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if tb.opts.MaxBodyBytes > 0 && int64(len(body)) > tb.opts.MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

func writeErrors(w http.ResponseWriter, external CaseFormat, errs Errors) {
	w.Header().Set(HeaderContentType, ContentTypeApplicationJSON)
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(struct {
		Message string `json:"message"`
		Errors  Errors `json:"errors"`
	}{
		Message: fmt.Sprintf("request body is not valid %s", external),
		Errors:  errs,
	})
}

///////////////////////////////////////////////////////////////////////////////
// Outbound
///////////////////////////////////////////////////////////////////////////////

// bufferedResponseWriter holds the handler output until it can be
// rewritten. Nothing reaches the client before the handler returns, so
// streaming handlers are buffered in full. A Flush through
// http.ResponseController reaches the underlying writer via Unwrap and
// commits its headers early.
type bufferedResponseWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (bw *bufferedResponseWriter) WriteHeader(status int) {
	bw.status = status
}

func (bw *bufferedResponseWriter) Write(p []byte) (int, error) {
	return bw.buf.Write(p)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (bw *bufferedResponseWriter) Unwrap() http.ResponseWriter {
	return bw.ResponseWriter
}

// flushResponse writes the buffered response, mapped into the client format
// when it is a non-empty JSON body.
func (tb *TransformBody) flushResponse(bw *bufferedResponseWriter, external CaseFormat, logger *zap.Logger) {
	w := bw.ResponseWriter
	body := bw.buf.Bytes()

	if len(bytes.TrimSpace(body)) > 0 && isJSONContentType(w.Header().Get(HeaderContentType)) {
		mapped, err := tb.transformResponse(body, external, logger)
		if err != nil {
			logger.Warn("failed to transform response body", zap.Error(err))
		} else {
			body = mapped
		}
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(bw.status)
	if _, err := w.Write(body); err != nil {
		logger.Debug("failed to write response body", zap.Error(err))
	}
}

func (tb *TransformBody) transformResponse(body []byte, external CaseFormat, logger *zap.Logger) ([]byte, error) {
	opts := Options{
		ToCase:     external,
		Formatters: tb.opts.Formatters,
		Registry:   tb.opts.Registry,
		Logger:     logger,
	}
	if _, err := tb.opts.Registry.Validator(tb.opts.InternalCaseFormat); err == nil {
		opts.FromCase = tb.opts.InternalCaseFormat
	}

	result, err := MapJSON(body, opts)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		logger.Debug("response body mapped with errors", zap.Strings("paths", result.Errors.Paths()))
	}
	return result.JSON()
}

///////////////////////////////////////////////////////////////////////////////
// Helpers
///////////////////////////////////////////////////////////////////////////////

func isJSONContentType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ContentTypeDelimiter)
	return strings.EqualFold(strings.TrimSpace(mediaType), ContentTypeApplicationJSON)
}

type caseFormatKey struct{}

func withCaseFormat(ctx context.Context, f CaseFormat) context.Context {
	return context.WithValue(ctx, caseFormatKey{}, f)
}

// CaseFormatFromContext returns the client case format resolved by
// TransformBody for the current request.
func CaseFormatFromContext(ctx context.Context) (CaseFormat, bool) {
	f, ok := ctx.Value(caseFormatKey{}).(CaseFormat)
	return f, ok
}
